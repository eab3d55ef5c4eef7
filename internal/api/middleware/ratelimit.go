package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/99minutos/user-product-api/internal/api/metrics"
)

// NewMemoryRateLimitStore keeps per-IP buckets in process. A bucket holds
// points tokens and refills at points/window, so a client may burst the full
// allowance once per window.
func NewMemoryRateLimitStore(points int, window time.Duration) echomw.RateLimiterStore {
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(points) / window.Seconds()),
		Burst:     points,
		ExpiresIn: window,
	})
}

// RateLimit throttles by client IP using store. Store failures fail closed
// with 503 so an outage is not reported as throttling.
func RateLimit(store echomw.RateLimiterStore, log zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				metrics.RateLimitStoreErrorsTotal.Inc()
				log.Error().Err(err).Str("ip", identifier).Msg("rate limit store unavailable")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable").SetInternal(err)
			}
			metrics.RateLimitedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
