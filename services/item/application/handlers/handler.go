// Package handlers implements the item REST endpoints.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/itemstore/pkg/errhttp"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/pkg/telemetry"
	appsvcs "github.com/ghuser/itemstore/services/item/application/services"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// Deps is what every item handler needs.
type Deps struct {
	Services     *appsvcs.Services
	Logger       logger.Logger
	IsProduction bool
}

// writeError maps err to a response. Unexpected errors are logged and sent
// to Sentry before the client sees an opaque 500.
func (d Deps) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errhttp.StatusFor(err) >= http.StatusInternalServerError {
		if d.Logger != nil {
			d.Logger.ErrorContext(r.Context(), "item request failed",
				"method", r.Method, "path", r.URL.Path, "error", err)
		}
		telemetry.CaptureError(r.Context(), err)
	}
	errhttp.Write(w, err, d.IsProduction)
}

// itemID parses the {id} path parameter. A malformed id names no item, so it
// is reported as not found.
func itemID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, itemdomain.ErrItemNotFound
	}
	return id, nil
}
