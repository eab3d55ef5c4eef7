package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/user-product-api/docs"
	"github.com/99minutos/user-product-api/internal/api/handler"
	"github.com/99minutos/user-product-api/internal/api/middleware"
	"github.com/99minutos/user-product-api/internal/core/domain"
	"github.com/99minutos/user-product-api/internal/core/ports"
)

// Dependencies is everything the router needs. main builds it once.
type Dependencies struct {
	Logger         zerolog.Logger
	AuthService    ports.AuthService
	UserService    ports.UserService
	ProductService ports.ProductService
	TokenVerifier  ports.TokenVerifier

	// RateLimitStore throttles /auth. Required.
	RateLimitStore echomiddleware.RateLimiterStore

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handler.Pinger

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	authGuard := middleware.Auth(deps.TokenVerifier)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes (rate limited per client IP) ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	auth := e.Group("/auth", middleware.RateLimit(deps.RateLimitStore, deps.Logger))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Users ---
	userHandler := handler.NewUserHandler(deps.UserService)
	users := e.Group("/users", authGuard)
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Products ---
	productHandler := handler.NewProductHandler(deps.ProductService)
	products := e.Group("/products", authGuard)
	products.POST("", productHandler.Create)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete, adminOnly)

	// --- Operations (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
