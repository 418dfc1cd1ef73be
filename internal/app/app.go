// Package app wires configuration, storage, services and the HTTP router
// together and runs the server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/api"
	"github.com/recordhub/records-api/internal/api/handler"
	"github.com/recordhub/records-api/internal/core/auth"
	"github.com/recordhub/records-api/internal/core/lifecycle"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/internal/core/service"
	"github.com/recordhub/records-api/internal/core/validation"
	"github.com/recordhub/records-api/internal/infrastructure/config"
	"github.com/recordhub/records-api/internal/infrastructure/db/memory"
	"github.com/recordhub/records-api/internal/infrastructure/db/mongo"
	"github.com/recordhub/records-api/internal/infrastructure/db/postgres"
	"github.com/recordhub/records-api/internal/infrastructure/db/redis"
	"github.com/recordhub/records-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg   *config.Config
	log   zerolog.Logger
	store ports.Store
	redis *goredis.Client
	echo  *echo.Echo
}

// New opens the configured store and Redis, then builds every service and
// the router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Get()

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, auth.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	checks := []handler.DependencyCheck{{Name: cfg.Store.Driver, Ping: store.Ping}}

	// Idempotency stays disabled without Redis; creation still works.
	var idem ports.IdempotencyStore
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		idem = redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		checks = append(checks, handler.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	} else {
		log.Warn().Msg("REDIS_ADDR empty, Idempotency-Key support disabled")
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	resolver := auth.NewResolver(tokens, store.Accounts, cfg.Auth.CookieName, logger.Component("resolver"))

	validator := validation.NewEngine(store.Exists, logger.Component("validation"))
	lm := lifecycle.NewManager(store, logger.Component("lifecycle"))

	authSvc := service.NewAuthService(store.Accounts, validator, hasher, tokens, logger.Component("auth"))
	accountSvc := service.NewAccountService(store.Accounts, validator, lm, logger.Component("accounts"))
	adminSvc := service.NewAdminService(store.Accounts, lm, logger.Component("admin"))
	postSvc := service.NewPostService(store.Posts, validator, idem, logger.Component("posts"))
	itemSvc := service.NewItemService(store.Items, validator, idem, logger.Component("items"))

	e := api.NewRouter(api.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:     cfg.Auth.CookieName,
			Secure:   cfg.Auth.CookieSecure,
			TokenTTL: cfg.Auth.TokenTTL,
		}),
		Accounts:  handler.NewAccountHandler(accountSvc, postSvc, itemSvc),
		Admin:     handler.NewAdminHandler(adminSvc),
		Posts:     handler.NewPostHandler(postSvc),
		Items:     handler.NewItemHandler(itemSvc),
		Health:    handler.NewHealthHandler(),
		Readiness: handler.NewReadinessHandler(checks...),
	}, resolver, api.Options{AllowOrigins: cfg.CORSOrigins}, logger.Component("http"))

	return &App{cfg: cfg, log: log, store: store, redis: rdb, echo: e}, nil
}

// openStore connects the backend selected by STORE_DRIVER and prepares its
// schema.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "records-api"})
		if err != nil {
			return ports.Store{}, err
		}
		if ok, err := mongo.SupportsTransactions(ctx, db); err != nil || !ok {
			log.Warn().Err(err).Msg("mongo deployment is not a replica set, account deletion will fail")
		}
		st := mongo.NewStore(client, db)
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return ports.Store{}, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return st.Ports(), nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return ports.Store{}, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return ports.Store{}, err
		}
		log.Info().Msg("postgres store ready")
		return postgres.NewStore(db).Ports(), nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.New().Ports(), nil
	}
	return ports.Store{}, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests and
// closes the backends.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Msg("http server listening")
		if err := a.echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error().Err(err).Msg("redis close")
		}
	}
	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("store close")
	}

	a.log.Info().Msg("shutdown complete")
	return runErr
}
