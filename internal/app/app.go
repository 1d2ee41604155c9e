// Package app builds the HTTP application from configuration. The long-running
// server and the serverless function share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/habitus/habit-api/internal/api"
	"github.com/habitus/habit-api/internal/api/handler"
	"github.com/habitus/habit-api/internal/core/ports"
	"github.com/habitus/habit-api/internal/core/service"
	"github.com/habitus/habit-api/internal/infrastructure/db/memory"
	mongostore "github.com/habitus/habit-api/internal/infrastructure/db/mongo"
	redisstore "github.com/habitus/habit-api/internal/infrastructure/db/redis"
	"github.com/habitus/habit-api/internal/pkg/config"
	"github.com/habitus/habit-api/internal/pkg/i18n"
	"github.com/habitus/habit-api/pkg/logger"
)

// devJWTSecret signs tokens in development when JWT_SECRET is unset.
const devJWTSecret = "habit-api-development-secret"

type App struct {
	cfg       *config.Config
	log       zerolog.Logger
	router    *echo.Echo
	connector *mongostore.Connector
	closers   []func(context.Context) error
}

// New wires repositories, services and the router. It never dials MongoDB;
// the first request or Warmup does.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "habit-api",
		Env:     cfg.Env,
	})

	tr, err := i18n.New(cfg.Locale)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checks := make(map[string]handler.Checker)

	var (
		habitRepo ports.HabitRepository
		authRepo  ports.AuthRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		habitRepo = memory.NewHabitRepository()
		authRepo = memory.NewAuthRepository()
	default:
		a.connector = mongostore.NewConnector(mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		}, log.With().Str("component", "mongo").Logger())
		a.connector.OnConnect(mongostore.EnsureSchema)
		a.closers = append(a.closers, a.connector.Disconnect)
		checks["mongodb"] = a.connector.Ping

		habitRepo = mongostore.NewHabitRepository(a.connector)
		authRepo = mongostore.NewAuthRepository(a.connector)
	}

	idem := a.idempotencyStore(ctx, checks)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		jwtSecret = devJWTSecret
	}

	deps := api.Deps{
		HabitService: service.NewHabitService(habitRepo, idem, tr, log.With().Str("component", "habit_service").Logger()),
		AuthService:  service.NewAuthService(authRepo, jwtSecret, cfg.JWTTTL),
		Translator:   tr,
		Logger:       log,
		JWTSecret:    jwtSecret,
		Registry:     reg,
		HealthChecks: checks,
	}
	if a.connector != nil {
		deps.Connector = a.connector
	}
	a.router = api.NewRouter(deps)

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("locale", tr.Tag().String()).
		Bool("idempotency", idem != nil).
		Msg("application ready")

	return a, nil
}

// idempotencyStore connects to Redis when configured. Redis being down only
// disables the feature.
func (a *App) idempotencyStore(ctx context.Context, checks map[string]handler.Checker) ports.IdempotencyStore {
	if a.cfg.Redis.Addr == "" {
		return nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{Addr: a.cfg.Redis.Addr, DB: a.cfg.Redis.DB})
	if err != nil {
		a.log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		return nil
	}

	store := redisstore.NewIdempotencyStore(client, a.cfg.Redis.IdempotencyTTL)
	checks["redis"] = store.Ping
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	return store
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.log
}

// Warmup attempts the database connection ahead of the first request.
// Failures are logged; requests retry on their own.
func (a *App) Warmup(ctx context.Context) {
	if a.connector == nil {
		return
	}
	if err := a.connector.Connect(ctx); err != nil {
		a.log.Warn().Err(err).Msg("database warmup failed")
	}
}

// Close releases connections in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("app close: %w", err)
	}
	return nil
}
