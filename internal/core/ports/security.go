package ports

import "github.com/99minutos/user-product-api/internal/core/domain"

// PasswordHasher produces and checks one-way salted password digests.
// Verify returns (false, nil) on a mismatch and a non-nil error only when the
// digest itself cannot be processed.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity) (*domain.AccessToken, error)
}

// TokenVerifier checks signature and expiry of an access token. Errors are
// domain.ErrTokenMalformed, domain.ErrTokenExpired or
// domain.ErrTokenInvalidSignature.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
