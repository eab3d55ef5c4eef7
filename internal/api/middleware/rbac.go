package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-product-api/internal/api/metrics"
	"github.com/99minutos/user-product-api/internal/core/domain"
)

// RBAC admits requests whose role claim is exactly one of allowedRoles.
// There is no hierarchy: admin does not imply user. Mount it after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			if _, ok := allowed[role]; !ok {
				metrics.GuardRejectionsTotal.WithLabelValues("role", "role_mismatch").Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
