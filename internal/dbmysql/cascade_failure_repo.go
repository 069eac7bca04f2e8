package dbmysql

import (
	"context"

	"gorm.io/gorm"
)

type CascadeFailureRepository interface {
	Record(ctx context.Context, f *CascadeFailure) error
	Pending(ctx context.Context, maxAttempts, limit int) ([]CascadeFailure, error)
	MarkResolved(ctx context.Context, id uint) error
	IncrementAttempt(ctx context.Context, id uint, lastErr string) error
}

type cascadeFailureRepository struct {
	db *gorm.DB
}

func NewCascadeFailureRepository(db *gorm.DB) CascadeFailureRepository {
	return &cascadeFailureRepository{db: db}
}

func (r *cascadeFailureRepository) Record(ctx context.Context, f *CascadeFailure) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// Pending returns unresolved failures that still have attempts left, oldest first.
func (r *cascadeFailureRepository) Pending(ctx context.Context, maxAttempts, limit int) ([]CascadeFailure, error) {
	var failures []CascadeFailure
	err := r.db.WithContext(ctx).
		Where("resolved = ? AND attempts < ?", false, maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&failures).Error
	return failures, err
}

func (r *cascadeFailureRepository) MarkResolved(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&CascadeFailure{}).
		Where("id = ?", id).
		Update("resolved", true).Error
}

func (r *cascadeFailureRepository) IncrementAttempt(ctx context.Context, id uint, lastErr string) error {
	return r.db.WithContext(ctx).
		Model(&CascadeFailure{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": lastErr,
		}).Error
}
