package ports

import (
	"context"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
// Lookups by id return domain.ErrProductNotFound on a miss.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
