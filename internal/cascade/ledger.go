package cascade

import (
	"context"

	"gotube/internal/dbmysql"
)

//go:generate mockgen -destination=mock_ledger.go -package=cascade gotube/internal/cascade Ledger

// Ledger keeps the cascade steps that failed so they can be finished later.
// dbmysql.CascadeFailureRepository satisfies it.
type Ledger interface {
	Record(ctx context.Context, f *dbmysql.CascadeFailure) error
	Pending(ctx context.Context, maxAttempts, limit int) ([]dbmysql.CascadeFailure, error)
	MarkResolved(ctx context.Context, id uint) error
	IncrementAttempt(ctx context.Context, id uint, lastErr string) error
}

// NopLedger drops everything. Used when the MySQL ledger is disabled.
type NopLedger struct{}

func (NopLedger) Record(context.Context, *dbmysql.CascadeFailure) error { return nil }

func (NopLedger) Pending(context.Context, int, int) ([]dbmysql.CascadeFailure, error) {
	return nil, nil
}

func (NopLedger) MarkResolved(context.Context, uint) error { return nil }

func (NopLedger) IncrementAttempt(context.Context, uint, string) error { return nil }
