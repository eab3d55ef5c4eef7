package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

func runRBAC(t *testing.T, role string, allowed ...domain.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(RoleKey, role)
	}

	called := false
	handler := RBAC(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestRBAC_Allows(t *testing.T) {
	rec, called := runRBAC(t, "admin", domain.RoleAdmin)
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []domain.Role
	}{
		{"user on admin route", "user", []domain.Role{domain.RoleAdmin}},
		{"admin on user route", "admin", []domain.Role{domain.RoleUser}},
		{"no role", "", []domain.Role{domain.RoleAdmin, domain.RoleUser}},
		{"case differs", "Admin", []domain.Role{domain.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runRBAC(t, tt.role, tt.allowed...)
			if called {
				t.Fatalf("should not reach next handler")
			}
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
		})
	}
}
