package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghuser/itemstore/migrations/item"
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/pkg/events"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/pkg/redisx"
	domainevents "github.com/ghuser/itemstore/services/item/domain/events"
)

// OpenOptions selects which optional infrastructure Open starts.
type OpenOptions struct {
	// Migrate applies pending SQL migrations after connecting.
	Migrate bool
	// Events opens the event bus when cfg.EventsEnabled and the backend is postgres.
	Events bool
	// Forwarder routes published events through the durable forwarder queue.
	Forwarder bool
	// ConsumerGroup names the subscriber group; empty means broadcast.
	ConsumerGroup string
}

// Open connects the store selected by cfg.DatabaseURL and, on request, the
// event bus. Application.Close releases everything Open acquired.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger, opts OpenOptions) (*Application, error) {
	backend, err := database.BackendFor(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &Application{Config: cfg, Backend: backend, Logger: log}

	switch backend {
	case database.BackendRedis:
		a.Redis, err = redisx.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("item store connected", "backend", backend)
		return a, nil
	default:
		a.Db, err = database.NewPool(ctx, cfg.DatabaseURL, log, database.WithQueryLog(cfg.DatabaseLogQueries))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Info("item store connected", "backend", backend)
	}

	if opts.Migrate {
		applied, err := item.Up(ctx, a.Db)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied", "count", len(applied))
	}

	if opts.Events && cfg.EventsEnabled && backend == database.BackendPostgres {
		a.EventBus, err = events.NewEventBus(events.Options{
			DatabaseURL:   cfg.DatabaseURL,
			ConsumerGroup: opts.ConsumerGroup,
			Forwarder:     opts.Forwarder,
			PoisonTopic:   domainevents.TopicItemPoison,
		}, log)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("event bus: %w", err)
		}
		if err := a.EventBus.EnsureTopics(domainevents.Topics...); err != nil {
			_ = a.Close()
			return nil, err
		}
		if opts.Forwarder {
			if err := a.EventBus.StartForwarder(ctx); err != nil {
				_ = a.Close()
				return nil, err
			}
		}
		log.Info("event bus started", "forwarder", opts.Forwarder)
	}

	return a, nil
}

// Close releases the event bus and store connections.
func (a *Application) Close() error {
	var errs []error
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.Db != nil {
		errs = append(errs, a.Db.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
