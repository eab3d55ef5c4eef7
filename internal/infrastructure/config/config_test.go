package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{"JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "8080" || cfg.StorageDriver != DriverMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.TrustClientRole {
		t.Fatalf("client role must not be trusted by default")
	}
	if cfg.RateLimit.Points != 10 || cfg.RateLimit.Duration != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis must be opt-in, got %q", cfg.Redis.Addr)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	if _, err := load(t, map[string]string{}); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"JWT_SECRET":             "s3cret",
		"STORAGE_DRIVER":         "postgres",
		"DATABASE_URL":           "postgres://localhost/app?sslmode=disable",
		"TOKEN_TTL":              "15m",
		"AUTH_TRUST_CLIENT_ROLE": "true",
		"RATE_LIMIT_POINTS":      "3",
		"RATE_LIMIT_DURATION":    "10s",
	})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.StorageDriver != DriverPostgres || cfg.Auth.TokenTTL != 15*time.Minute || !cfg.Auth.TrustClientRole {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RateLimit.Points != 3 || cfg.RateLimit.Duration != 10*time.Second {
		t.Fatalf("rate limit overrides not applied: %+v", cfg.RateLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}, "unknown STORAGE_DRIVER"},
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"bcrypt cost too low", map[string]string{"BCRYPT_COST": "2"}, "BCRYPT_COST"},
		{"zero rate limit", map[string]string{"RATE_LIMIT_POINTS": "0"}, "RATE_LIMIT_POINTS"},
		{"no audit workers", map[string]string{"AUDIT_WORKERS": "0"}, "AUDIT_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["JWT_SECRET"] = "s3cret"
			_, err := load(t, tt.env)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
