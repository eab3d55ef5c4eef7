package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Readiness(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		deps       map[string]Pinger
		wantStatus int
		wantBody   string
	}{
		{"all up", map[string]Pinger{"store": up, "redis": up}, http.StatusOK, "ok"},
		{"one down", map[string]Pinger{"store": up, "redis": down}, http.StatusServiceUnavailable, "degraded"},
		{"optional dependency absent", map[string]Pinger{"store": up, "redis": nil}, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			c, rec := jsonRequest(e, http.MethodGet, "/health/ready", "")

			if err := NewHealthHandler(tt.deps).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Fatalf("expected status %q, got %q", tt.wantBody, resp.Status)
			}
			if _, ok := resp.Dependencies["redis"]; ok && tt.deps["redis"] == nil {
				t.Fatalf("absent dependency must not be reported")
			}
		})
	}
}
