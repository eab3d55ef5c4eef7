package ports

import (
	"context"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// CreateUserInput carries the data needed to create a user.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *string
}

// UserService defines use-case operations for users.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	// Update applies input on behalf of actor. Non-admin actors may only
	// update themselves and may not change roles.
	Update(ctx context.Context, actor domain.Claims, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
