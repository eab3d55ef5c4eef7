package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-product-api/internal/api/metrics"
)

func TestRateLimit_PerIP(t *testing.T) {
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(NewMemoryRateLimitStore(2, time.Minute), zerolog.Nop()))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("192.0.2.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := send("192.0.2.1:1001"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the allowance is spent, got %d", code)
	}
	if code := send("192.0.2.2:1000"); code != http.StatusOK {
		t.Fatalf("another client must have its own allowance, got %d", code)
	}
}

type failingStore struct{ err error }

func (s failingStore) Allow(string) (bool, error) { return false, s.err }

func TestRateLimit_StoreFailure(t *testing.T) {
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(failingStore{err: errors.New("redis: connection refused")}, zerolog.Nop()))

	denied := testutil.ToFloat64(metrics.RateLimitedTotal)
	failed := testutil.ToFloat64(metrics.RateLimitStoreErrorsTotal)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on store failure, got %d", rec.Code)
	}
	if got := testutil.ToFloat64(metrics.RateLimitedTotal); got != denied {
		t.Fatalf("store failure must not count as a denial")
	}
	if got := testutil.ToFloat64(metrics.RateLimitStoreErrorsTotal); got != failed+1 {
		t.Fatalf("expected store error counter to grow by 1, got %v -> %v", failed, got)
	}
}
