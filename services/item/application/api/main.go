package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/itemstore/pkg/app"
	"github.com/ghuser/itemstore/pkg/httpx"
	"github.com/ghuser/itemstore/services/item/application/handlers"
	appsvcs "github.com/ghuser/itemstore/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router and returns
// the store probe for /health. Both /items and /items/ reach the collection handlers.
func ItemRoutes(r chi.Router, a *app.Application) (httpx.HealthChecker, error) {
	svcs, err := appsvcs.New(a)
	if err != nil {
		return nil, err
	}
	Mount(r, handlers.Deps{
		Services:     svcs,
		Logger:       a.Logger,
		IsProduction: a.IsProduction(),
	})
	return svcs.Item, nil
}

// Mount registers the item endpoints for already-wired dependencies.
func Mount(r chi.Router, d handlers.Deps) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", handlers.NewPostItemHandler(d).Execute)
		r.Get("/", handlers.NewGetItemsHandler(d).Execute)
		r.Get("/{id}", handlers.NewGetItemHandler(d).Execute)
		r.Put("/{id}", handlers.NewPutItemHandler(d).Execute)
		r.Delete("/{id}", handlers.NewDeleteItemHandler(d).Execute)
	})
}
