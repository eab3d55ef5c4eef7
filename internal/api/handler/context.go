package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-product-api/internal/api/middleware"
	"github.com/99minutos/user-product-api/internal/core/domain"
)

// ctxClaims returns the claims stored by the Auth middleware. A missing value
// means the route was mounted without Auth, which is answered with 401.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := c.Get(middleware.ClaimsKey).(*domain.Claims)
	if !ok || claims == nil || claims.Subject == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}

// bindAndValidate decodes the JSON body into req and runs the registered
// validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
