package ports

import (
	"context"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// CreateProductInput carries the data needed to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	OwnerID     string
}

// UpdateProductInput is a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Quantity    *int
}

// ProductService defines use-case operations for products.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}
