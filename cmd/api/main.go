package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/itemstore/docs/swagger"
	"github.com/ghuser/itemstore/pkg/app"
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/httpx"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/pkg/telemetry"
	itemApi "github.com/ghuser/itemstore/services/item/application/api"
)

// @title			Item Store API
// @version		1.0
// @description	CRUD service for catalogue items backed by PostgreSQL, SQLite or Redis.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional; log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	application, err := app.Open(ctx, cfg, log, app.OpenOptions{
		Migrate:   cfg.AutoMigrate,
		Events:    true,
		Forwarder: true,
	})
	if err != nil {
		log.Error("failed to open item store", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer application.Close() //nolint:errcheck

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			BodyLimitBytes:     cfg.MaxBodyBytes,
			HandlerTimeout:     cfg.RequestTimeout,
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(log, "/health", "/metrics"),
		},
	)

	checks := httpx.HealthChecks{Backend: string(application.Backend)}
	if err := registerRoutes(r, application, &checks); err != nil {
		log.Error("failed to register routes", "error", err)
		os.Exit(1)
	}
	r.Get("/", httpx.WelcomeHandler)
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "backend", application.Backend)
	if err := httpx.Serve(sigCtx, srv, 30*time.Second); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes at the root and fills in the
// health probes they expose. Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application, checks *httpx.HealthChecks) error {
	store, err := itemApi.ItemRoutes(r, a)
	if err != nil {
		return err
	}
	checks.Store = store
	if a.EventBus != nil {
		checks.EventBus = a.EventBus
	}
	return nil
}
