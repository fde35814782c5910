// Package sqlite stores items in a local SQLite file through the pure-Go
// modernc driver. It is the zero-config default backend.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ghuser/itemstore/pkg/database"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	"github.com/ghuser/itemstore/services/item/domain/models"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/sqlstore"
)

// ItemRepository implements repositories.ItemRepository against SQLite.
type ItemRepository struct {
	db *database.Database
	q  *sqlstore.Queries
}

func NewItemRepository(db *database.Database) *ItemRepository {
	return &ItemRepository{db: db, q: sqlstore.New(db.Conn(), database.BackendSQLite)}
}

func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	saved, err := r.q.InsertItem(ctx, item)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, itemdomain.ErrItemAlreadyExists
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return saved, nil
}

func (r *ItemRepository) FindAll(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, error) {
	opts = opts.Normalize()
	items, err := r.q.ListItems(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := r.q.GetItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) UpdateByID(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	item, err := r.q.UpdateItem(ctx, id, patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := r.q.DeleteItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
