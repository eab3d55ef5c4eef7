// @title                       User/Product API
// @version                     1.0
// @description                 User and product management with JWT authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/user-product-api/internal/api"
	"github.com/99minutos/user-product-api/internal/api/handler"
	"github.com/99minutos/user-product-api/internal/api/middleware"
	"github.com/99minutos/user-product-api/internal/core/ports"
	"github.com/99minutos/user-product-api/internal/core/service"
	"github.com/99minutos/user-product-api/internal/infrastructure/config"
	"github.com/99minutos/user-product-api/internal/infrastructure/db/memory"
	"github.com/99minutos/user-product-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/user-product-api/internal/infrastructure/db/postgres"
	"github.com/99minutos/user-product-api/internal/infrastructure/db/redis"
	"github.com/99minutos/user-product-api/internal/infrastructure/queue"
	"github.com/99minutos/user-product-api/internal/infrastructure/security"
	"github.com/99minutos/user-product-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// repositories is the storage selected by STORAGE_DRIVER.
type repositories struct {
	users    ports.UserRepository
	products ports.ProductRepository
	audit    ports.AuditRepository
	ping     handler.Pinger
	close    func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Pretty: true})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-product-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("failed to close storage")
		}
	}()

	checks := map[string]handler.Pinger{cfg.StorageDriver: repos.ping}
	rateStore := middleware.NewMemoryRateLimitStore(cfg.RateLimit.Points, cfg.RateLimit.Duration)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		rateStore = redisRateStore(rdb, cfg)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate limiting backed by redis")
	}

	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, security.WithIssuer(cfg.Auth.JWTIssuer))
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.QueueSize, repos.audit, log)
	dispatcher.Start()

	if cfg.Auth.TrustClientRole {
		log.Warn().Msg("AUTH_TRUST_CLIENT_ROLE is on: login issues the role requested by the client")
	}

	users := service.NewUserService(repos.users, hasher, log)
	products := service.NewProductService(repos.products, log)
	auth := service.NewAuthService(users, repos.users, hasher, tokens, dispatcher,
		service.AuthOptions{TrustClientRole: cfg.Auth.TrustClientRole}, log)

	e := api.NewRouter(api.Dependencies{
		Logger:         log,
		AuthService:    auth,
		UserService:    users,
		ProductService: products,
		TokenVerifier:  tokens,
		RateLimitStore: rateStore,
		HealthChecks:   checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}
	return nil
}

func redisRateStore(rdb *goredis.Client, cfg *config.Config) echomiddleware.RateLimiterStore {
	return redis.NewRateLimitStore(rdb, cfg.RateLimit.Points, cfg.RateLimit.Duration).WithPrefix("ratelimit:auth")
}

func openRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		if err := postgres.RunMigrations(cfg.Postgres.URL); err != nil {
			return nil, err
		}
		db, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &repositories{
			users:    postgres.NewUserRepository(db),
			products: postgres.NewProductRepository(db),
			audit:    postgres.NewAuditRepository(db),
			ping:     handler.PingFunc(db.PingContext),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &repositories{
			users:    memory.NewUserRepository(),
			products: memory.NewProductRepository(),
			audit:    memory.NewAuditRepository(),
			ping:     handler.PingFunc(func(context.Context) error { return nil }),
			close:    func(context.Context) error { return nil },
		}, nil

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &repositories{
			users:    mongo.NewUserRepository(db),
			products: mongo.NewProductRepository(db),
			audit:    mongo.NewAuditRepository(db),
			ping:     mongoPinger(client),
			close:    client.Disconnect,
		}, nil
	}
}

func mongoPinger(client *mongodriver.Client) handler.Pinger {
	return handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })
}
