package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/pkg/events"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	domainevents "github.com/ghuser/itemstore/services/item/domain/events"
	"github.com/ghuser/itemstore/services/item/domain/models"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/sqlstore"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	q   *sqlstore.Queries
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given connection pool.
// When bus is non-nil every write publishes its domain event in the same
// transaction as the row change.
func NewItemRepository(db *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{
		db:  db,
		q:   sqlstore.New(db.Conn(), database.BackendPostgres),
		bus: bus,
	}
}

// Insert persists a new Item and publishes an ItemCreatedEvent within the same transaction.
// Returns ErrItemAlreadyExists on unique constraint violations.
func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	var saved *models.Item
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		saved, err = r.q.WithTx(r.db.Trace(tx)).InsertItem(ctx, item)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return itemdomain.ErrItemAlreadyExists
			}
			return fmt.Errorf("insert item: %w", err)
		}
		return r.publish(ctx, tx, domainevents.TopicItemCreated, domainevents.ItemCreatedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     saved.ID,
			Name:       saved.Name.String(),
			Price:      saved.Price.Float64(),
			Available:  saved.Available,
			OccurredAt: saved.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// FindAll returns a page of items in insertion order.
func (r *ItemRepository) FindAll(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, error) {
	opts = opts.Normalize()
	items, err := r.q.ListItems(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

// FindByID returns (nil, nil) when the item does not exist.
func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := r.q.GetItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// UpdateByID runs a single UPDATE ... RETURNING over the supplied columns and
// publishes an ItemUpdatedEvent when a row matched.
func (r *ItemRepository) UpdateByID(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	fields := patch.Fields()
	var updated *models.Item
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		updated, err = r.q.WithTx(r.db.Trace(tx)).UpdateItem(ctx, id, fields)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		if updated == nil {
			return nil
		}
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = string(f.Field)
		}
		return r.publish(ctx, tx, domainevents.TopicItemUpdated, domainevents.ItemUpdatedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     id,
			Fields:     names,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID runs a single DELETE ... RETURNING and publishes an
// ItemDeletedEvent when a row was removed.
func (r *ItemRepository) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var deleted *models.Item
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = r.q.WithTx(r.db.Trace(tx)).DeleteItem(ctx, id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if deleted == nil {
			return nil
		}
		return r.publish(ctx, tx, domainevents.TopicItemDeleted, domainevents.ItemDeletedEvent{
			EventID:    uuid.New(),
			Version:    1,
			ItemID:     id,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Ping checks the database connection health.
func (r *ItemRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *ItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, event any) error {
	if r.bus == nil {
		return nil
	}
	if err := r.bus.PublishTx(ctx, tx, topic, event); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
