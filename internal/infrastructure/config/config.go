package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port          string `env:"PORT,           default=8080"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Mongo     MongoConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET, required"`
	JWTIssuer       string        `env:"JWT_ISSUER,             default=user-product-api"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,              default=1h"`
	BcryptCost      int           `env:"BCRYPT_COST,            default=10"`
	TrustClientRole bool          `env:"AUTH_TRUST_CLIENT_ROLE, default=false"`
}

// RateLimitConfig bounds login and registration to Points requests per
// Duration for each client IP.
type RateLimitConfig struct {
	Points   int           `env:"RATE_LIMIT_POINTS,   default=10"`
	Duration time.Duration `env:"RATE_LIMIT_DURATION, default=60s"`
}

type AuditConfig struct {
	Workers   int `env:"AUDIT_WORKERS,    default=4"`
	QueueSize int `env:"AUDIT_QUEUE_SIZE, default=256"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=user_product"`
}

type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

// RedisConfig is optional. An empty Addr keeps rate-limit state in process.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RateLimit.Points <= 0 || c.RateLimit.Duration <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_POINTS and RATE_LIMIT_DURATION must be positive"))
	}
	if c.Audit.Workers <= 0 || c.Audit.QueueSize <= 0 {
		errs = append(errs, errors.New("AUDIT_WORKERS and AUDIT_QUEUE_SIZE must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
