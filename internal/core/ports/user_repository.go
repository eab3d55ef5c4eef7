package ports

import (
	"context"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations enforce email
// uniqueness and return domain.ErrUserExists on a duplicate and
// domain.ErrUserNotFound on a lookup miss.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
