package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/infrastructure/security"
)

const testSecret = "secret"

func newTokenManager(t *testing.T, opts ...security.TokenOption) *security.TokenManager {
	t.Helper()
	m, err := security.NewTokenManager(testSecret, time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func issue(t *testing.T, m *security.TokenManager, role domain.Role) string {
	t.Helper()
	tok, err := m.Issue(domain.Identity{UserID: "u-1", Email: "alice@x.com", Role: role})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok.Value
}

// runAuth passes a request with the given Authorization header through Auth
// and returns the recorder plus whether next was reached.
func runAuth(t *testing.T, header string, next echo.HandlerFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newTokenManager(t))(func(c echo.Context) error {
		called = true
		if next != nil {
			return next(c)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := issue(t, newTokenManager(t), domain.RoleAdmin)

	rec, called := runAuth(t, "Bearer "+token, func(c echo.Context) error {
		claims, ok := c.Get(ClaimsKey).(*domain.Claims)
		if !ok || claims.Email != "alice@x.com" {
			t.Fatalf("claims not set: %#v", c.Get(ClaimsKey))
		}
		if c.Get(RoleKey) != "admin" {
			t.Fatalf("role not set")
		}
		if c.Get(UserIDKey) != "u-1" {
			t.Fatalf("user_id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	token := issue(t, newTokenManager(t), domain.RoleUser)
	if _, called := runAuth(t, "bearer "+token, nil); !called {
		t.Fatalf("lower-case scheme should be accepted")
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	valid := issue(t, newTokenManager(t), domain.RoleUser)
	expired := issue(t, newTokenManager(t, security.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	})), domain.RoleUser)
	other, err := security.NewTokenManager("another-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	foreign := issue(t, other, domain.RoleUser)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token " + valid},
		{"no token", "Bearer "},
		{"garbage token", "Bearer not-a-token"},
		{"expired token", "Bearer " + expired},
		{"foreign signature", "Bearer " + foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runAuth(t, tt.header, nil)
			if called {
				t.Fatalf("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
