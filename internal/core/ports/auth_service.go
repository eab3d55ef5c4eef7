package ports

import (
	"context"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// RegisterInput carries the registration payload. Password is plaintext and
// must never be logged.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	IP        string
}

// LoginInput carries the login payload. Role is the role claimed by the
// client.
type LoginInput struct {
	Email    string
	Password string
	Role     string
	IP       string
}

// LoginResult is the authenticated user plus a freshly issued access token.
type LoginResult struct {
	User  *domain.User
	Token *domain.AccessToken
}

// AuthService implements the login and registration use cases.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}
