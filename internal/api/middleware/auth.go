package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-product-api/internal/api/metrics"
	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"
)

// Auth verifies the bearer token and stores its claims on the context.
// Every failure is answered with the same 401 body; the reason only reaches
// metrics and the internal error.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthenticated("missing_header", domain.ErrUnauthenticated)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return unauthenticated("malformed", domain.ErrTokenMalformed)
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return unauthenticated(rejectionReason(err), err)
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.Subject)
			c.Set(EmailKey, claims.Email)
			c.Set(RoleKey, string(claims.Role))

			return next(c)
		}
	}
}

func unauthenticated(reason string, cause error) error {
	metrics.GuardRejectionsTotal.WithLabelValues("auth", reason).Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error()).SetInternal(cause)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
