package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/itemstore/pkg/app"
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/pkg/telemetry"
	"github.com/ghuser/itemstore/services/item/application/subscribers"
	itemEvents "github.com/ghuser/itemstore/services/item/domain/events"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	application, err := app.Open(ctx, cfg, log, app.OpenOptions{
		Events:        true,
		ConsumerGroup: cfg.ServiceName + "-consumer",
	})
	if err != nil {
		log.Error("failed to open infrastructure", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer application.Close() //nolint:errcheck

	if application.EventBus == nil {
		log.Error("worker needs the event bus: use a postgres DATABASE_URL with EVENTS_ENABLED=true",
			"backend", application.Backend, "events_enabled", cfg.EventsEnabled)
		os.Exit(1) //nolint:gocritic
	}

	registerSubscribers(application)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.EventBus.Run(sigCtx); err != nil {
		log.Error("event router stopped", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers. Failing messages are
// retried, then moved to the poison topic.
func registerSubscribers(a *app.Application) {
	audit := subscribers.NewAudit(a.Logger)
	for _, topic := range itemEvents.Topics {
		a.EventBus.Handle("audit."+topic, topic, audit.Handler(topic))
	}
	a.Logger.Info("event subscribers registered", "topics", itemEvents.Topics, "poison_topic", itemEvents.TopicItemPoison)
}
