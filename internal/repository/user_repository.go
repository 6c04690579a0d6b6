package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/persistence"
)

// UserRepository mirrors the account collection under KeyUsers.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) error
}

type userRepository struct {
	kv persistence.KV
}

// NewUserRepository returns a KV-backed implementation.
func NewUserRepository(kv persistence.KV) UserRepository {
	return &userRepository{kv: kv}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := loadJSON(ctx, r.kv, KeyUsers, &users); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return []domain.User{}, nil
		}
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// GetByEmail matches email exactly, case included. The first match wins.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Create appends user to the collection. Uniqueness is checked by the caller.
func (r *userRepository) Create(ctx context.Context, user domain.User) error {
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	users = append(users, user)
	return saveJSON(ctx, r.kv, KeyUsers, users)
}
