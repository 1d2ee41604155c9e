package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/habitus/habit-api/docs"
	"github.com/habitus/habit-api/internal/api/handler"
	"github.com/habitus/habit-api/internal/api/metrics"
	"github.com/habitus/habit-api/internal/api/middleware"
	"github.com/habitus/habit-api/internal/core/ports"
	"github.com/habitus/habit-api/internal/pkg/i18n"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	HabitService ports.HabitService
	AuthService  ports.AuthService
	Translator   i18n.Translator
	Logger       zerolog.Logger
	JWTSecret    string

	// Registry receives the HTTP and habit metrics and backs /metrics.
	Registry *prometheus.Registry

	// Connector, when set, is warmed up before habit and auth requests.
	Connector middleware.Connector

	// HealthChecks are the dependencies probed by /health/ready.
	HealthChecks map[string]handler.Checker
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.Translator)

	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "habit",
		Subsystem:  "http",
		Registerer: d.Registry,
	}))
	// Inside the metrics middleware so the recorded status is the rendered one.
	e.Use(requestLogger(d.Logger))

	// --- Dependencies ---
	habitHandler := handler.NewHabitHandler(d.HabitService, d.Translator, metrics.New(d.Registry))
	authHandler := handler.NewAuthHandler(d.AuthService)
	authMiddleware := middleware.Auth(d.JWTSecret, d.Translator)

	apiGroup := e.Group("/api")
	if d.Connector != nil {
		apiGroup.Use(middleware.EnsureConnection(d.Connector, d.Logger))
	}

	// --- Auth routes ---
	apiGroup.POST("/auth/register", authHandler.Register)
	apiGroup.POST("/auth/login", authHandler.Login)

	// --- Habit routes ---
	habits := apiGroup.Group("/habits", authMiddleware)
	habits.POST("", habitHandler.Create)
	habits.GET("", habitHandler.List)
	habits.GET("/:id", habitHandler.Get)
	habits.PUT("/:id", habitHandler.Update)
	habits.PATCH("/:id", habitHandler.Patch)
	habits.DELETE("/:id", habitHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
