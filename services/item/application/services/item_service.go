package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/itemstore/services/item/domain/models"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemstore/services/item/domain/services"
)

const instrumentationName = "github.com/ghuser/itemstore/services/item"

// CreateItemInput carries the raw fields of a new item.
type CreateItemInput struct {
	Name        string
	Description *string
	Price       float64
	Available   bool
}

// ItemService orchestrates item use cases over a store adapter.
// Lookups that miss return (nil, nil); deciding that a miss is a 404 is the
// caller's job. Event publishing, when enabled, happens inside the adapter.
type ItemService struct {
	repo   repositories.ItemRepository
	tracer trace.Tracer
	ops    metric.Int64Counter
}

// NewItemService returns an ItemService backed by repo.
func NewItemService(repo repositories.ItemRepository) *ItemService {
	ops, err := otel.Meter(instrumentationName).Int64Counter("items.operations",
		metric.WithDescription("Item store operations by name and outcome"))
	if err != nil {
		otel.Handle(err)
	}
	return &ItemService{
		repo:   repo,
		tracer: otel.Tracer(instrumentationName),
		ops:    ops,
	}
}

// Create validates the input, assigns a new id and creation time, and persists it.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (item *models.Item, err error) {
	ctx, end := s.start(ctx, "Create")
	defer func() { end(err) }()

	name, err := models.NewItemName(in.Name)
	if err != nil {
		return nil, err
	}
	var desc *models.Description
	if in.Description != nil {
		d, err := models.NewDescription(*in.Description)
		if err != nil {
			return nil, err
		}
		desc = &d
	}
	price, err := models.NewPrice(in.Price)
	if err != nil {
		return nil, err
	}

	item = models.NewItem(name, desc, price, in.Available)
	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, err
	}

	saved, err := s.repo.Insert(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("item.id", saved.ID.String()))
	return saved, nil
}

// List returns one page in insertion order. A negative skip becomes 0, a
// non-positive limit becomes DefaultListLimit and limits above MaxListLimit
// are capped.
func (s *ItemService) List(ctx context.Context, skip, limit int) (items []*models.Item, err error) {
	ctx, end := s.start(ctx, "List")
	defer func() { end(err) }()

	opts := repositories.QueryOpts{Offset: skip, Limit: limit}.Normalize()
	items, err = s.repo.FindAll(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// GetByID returns (nil, nil) when the item does not exist.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (item *models.Item, err error) {
	ctx, end := s.start(ctx, "GetByID", attribute.String("item.id", id.String()))
	defer func() { end(err) }()

	item, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update applies patch in one atomic store call and returns the post-update
// record, or nil when the item does not exist. An empty patch writes nothing
// and returns the current record.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (item *models.Item, err error) {
	ctx, end := s.start(ctx, "Update", attribute.String("item.id", id.String()))
	defer func() { end(err) }()

	if patch.IsEmpty() {
		item, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get item: %w", err)
		}
		return item, nil
	}

	item, err = s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Delete removes the item in one atomic store call and returns what was
// removed, or nil when nothing matched.
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) (item *models.Item, err error) {
	ctx, end := s.start(ctx, "Delete", attribute.String("item.id", id.String()))
	defer func() { end(err) }()

	item, err = s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return item, nil
}

// Ping checks the underlying store.
func (s *ItemService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ItemService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "ItemService."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if s.ops != nil {
			s.ops.Add(ctx, 1, metric.WithAttributes(
				attribute.String("operation", op),
				attribute.String("outcome", outcome),
			))
		}
		span.End()
	}
}
