package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// DefaultTokenTTL is the access token lifetime used when none is configured.
const DefaultTokenTTL = time.Hour

// accessClaims is the JWT payload of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithIssuer sets the iss claim written and required on verification.
func WithIssuer(issuer string) TokenOption {
	return func(m *TokenManager) { m.issuer = issuer }
}

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager returns a TokenManager signing with secret. The secret is
// required; a non-positive ttl falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token manager: signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	m := &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs a token for identity that expires ttl after now.
func (m *TokenManager) Issue(identity domain.Identity) (*domain.AccessToken, error) {
	now := m.now()
	expiresAt := jwt.NewNumericDate(now.Add(m.ttl))
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
		Email: identity.Email,
		Role:  identity.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &domain.AccessToken{Value: signed, ExpiresAt: expiresAt.Time}, nil
}

// Verify parses token, checks its signature and expiry, and returns the
// claims. A token is valid strictly before its exp instant.
func (m *TokenManager) Verify(token string) (*domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.Claims{
		TokenID: claims.ID,
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
}
