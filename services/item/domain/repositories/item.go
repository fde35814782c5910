package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/itemstore/services/item/domain/models"
)

const (
	// DefaultListLimit is applied when a caller does not pass a positive limit.
	DefaultListLimit = 10
	// MaxListLimit bounds every list read.
	MaxListLimit = 100
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// Normalize clamps Offset to >= 0 and Limit to [1, MaxListLimit],
// substituting DefaultListLimit for non-positive limits.
func (o QueryOpts) Normalize() QueryOpts {
	if o.Offset < 0 {
		o.Offset = 0
	}
	switch {
	case o.Limit <= 0:
		o.Limit = DefaultListLimit
	case o.Limit > MaxListLimit:
		o.Limit = MaxListLimit
	}
	return o
}

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Lookups keyed by id return (nil, nil) when no item matches. Errors are
// reserved for persistence failures and ErrItemAlreadyExists.
type ItemRepository interface {
	// Insert persists a new Item and returns the stored record.
	Insert(ctx context.Context, item *models.Item) (*models.Item, error)

	// FindAll returns items in insertion order. Implementations must cap
	// opts.Limit at MaxListLimit.
	FindAll(ctx context.Context, opts QueryOpts) ([]*models.Item, error)

	// FindByID retrieves an item by its public id.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// UpdateByID applies only the fields present in patch in a single atomic
	// operation and returns the post-update record.
	UpdateByID(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error)

	// DeleteByID removes an item in a single atomic operation and returns
	// the removed record.
	DeleteByID(ctx context.Context, id uuid.UUID) (*models.Item, error)

	// Ping checks the underlying store.
	Ping(ctx context.Context) error
}
