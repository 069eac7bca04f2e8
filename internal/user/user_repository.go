package user

import (
	"context"
	"strings"

	"gotube/internal/model"
	"gotube/internal/store"
)

//go:generate mockgen -destination=mock_user_repository.go -package=user gotube/internal/user UserRepository

// UserRepository holds the user document reads and writes. Errors are the
// store's own (store.ErrNotFound, store.ErrDuplicate); the service maps them.
type UserRepository interface {
	Create(ctx context.Context, user store.Document) (store.Document, error)
	GetByID(ctx context.Context, userID string) (store.Document, error)
	// FindByUsernameOrEmail matches either field; blank arguments are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (store.Document, error)
	Update(ctx context.Context, userID string, u store.Update) error
}

type userRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) Create(ctx context.Context, user store.Document) (store.Document, error) {
	return r.store.Insert(ctx, model.Users, user)
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (store.Document, error) {
	return r.store.Get(ctx, model.Users, userID)
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (store.Document, error) {
	var alternatives []store.Filter
	if username = strings.TrimSpace(username); username != "" {
		alternatives = append(alternatives, store.Where(store.Eq(model.FieldUsername, username)))
	}
	if email = strings.TrimSpace(email); email != "" {
		alternatives = append(alternatives, store.Where(store.Eq(model.FieldEmail, email)))
	}
	if len(alternatives) == 0 {
		return nil, store.ErrNotFound
	}
	users, err := r.store.Find(ctx, model.Users, store.Query{Filter: store.Where(store.Or(alternatives...))})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, store.ErrNotFound
	}
	return users[0], nil
}

func (r *userRepository) Update(ctx context.Context, userID string, u store.Update) error {
	return r.store.Update(ctx, model.Users, userID, u)
}
