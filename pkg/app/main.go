package app

import (
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/pkg/events"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/pkg/redisx"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to ItemRoutes during server initialization.
//
// Exactly one store handle is set, chosen by Backend: Db for postgres and
// sqlite, Redis for redis. EventBus is nil unless the backend is postgres and
// events are enabled.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "item created", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Backend  database.Backend
	Db       *database.Database
	Redis    *redisx.Client
	Logger   logger.Logger
	EventBus *events.EventBus
}

// IsProduction reports whether 5xx details must be hidden from clients.
func (a *Application) IsProduction() bool {
	return a.Config != nil && a.Config.Environment == config.EnvProduction
}
