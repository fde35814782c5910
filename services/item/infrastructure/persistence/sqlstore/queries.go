// Package sqlstore holds the item queries shared by the PostgreSQL and SQLite
// adapters. Both engines accept $N placeholders and RETURNING, so one set of
// statements serves both; only timestamp encoding differs.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/services/item/domain/models"
)

const itemColumns = "id, name, description, price, available, created_at"

const insertItem = `INSERT INTO items (id, name, description, price, available, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + itemColumns

const listItems = `SELECT ` + itemColumns + `
FROM items
ORDER BY pk
LIMIT $1 OFFSET $2`

const getItemByID = `SELECT ` + itemColumns + `
FROM items
WHERE id = $1`

const deleteItem = `DELETE FROM items
WHERE id = $1
RETURNING ` + itemColumns

// Queries runs item statements against a pool or a transaction.
type Queries struct {
	db       database.DBTX
	textTime bool
}

// New returns Queries for db. SQLite stores created_at as RFC 3339 text.
func New(db database.DBTX, backend database.Backend) *Queries {
	return &Queries{db: db, textTime: backend == database.BackendSQLite}
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx database.DBTX) *Queries {
	return &Queries{db: tx, textTime: q.textTime}
}

// InsertItem writes item and returns the stored row.
func (q *Queries) InsertItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	var desc sql.NullString
	if d, ok := item.DescriptionString(); ok {
		desc = sql.NullString{String: d, Valid: true}
	}
	row := q.db.QueryRowContext(ctx, insertItem,
		item.ID,
		item.Name.String(),
		desc,
		item.Price.Float64(),
		item.Available,
		q.encodeTime(item.CreatedAt),
	)
	return scanItem(row)
}

// ListItems returns one page in insertion order.
func (q *Queries) ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	rows, err := q.db.QueryContext(ctx, listItems, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*models.Item, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemByID returns (nil, nil) when no row matches.
func (q *Queries) GetItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return noRowsIsNil(scanItem(q.db.QueryRowContext(ctx, getItemByID, id)))
}

// UpdateItem sets only the given columns in one statement and returns the
// updated row, or (nil, nil) when no row matches. fields must be non-empty.
func (q *Queries) UpdateItem(ctx context.Context, id uuid.UUID, fields []models.FieldValue) (*models.Item, error) {
	if len(fields) == 0 {
		return nil, errors.New("update item: no fields")
	}
	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for i, f := range fields {
		column, err := columnFor(f.Field)
		if err != nil {
			return nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, f.Value)
	}
	args = append(args, id)

	stmt := fmt.Sprintf("UPDATE items SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), itemColumns)
	return noRowsIsNil(scanItem(q.db.QueryRowContext(ctx, stmt, args...)))
}

// DeleteItem removes the row and returns it, or (nil, nil) when no row matches.
func (q *Queries) DeleteItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return noRowsIsNil(scanItem(q.db.QueryRowContext(ctx, deleteItem, id)))
}

// columnFor whitelists patchable columns; nothing else reaches the SQL text.
func columnFor(f models.Field) (string, error) {
	switch f {
	case models.FieldName, models.FieldDescription, models.FieldPrice, models.FieldAvailable:
		return string(f), nil
	default:
		return "", fmt.Errorf("update item: unknown field %q", f)
	}
}

func (q *Queries) encodeTime(t time.Time) any {
	if q.textTime {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item      models.Item
		name      string
		desc      sql.NullString
		price     float64
		createdAt timestamp
	)
	if err := row.Scan(&item.ID, &name, &desc, &price, &item.Available, &createdAt); err != nil {
		return nil, err
	}
	item.Name = models.ItemName(name)
	if desc.Valid {
		d := models.Description(desc.String)
		item.Description = &d
	}
	item.Price = models.Price(price)
	item.CreatedAt = createdAt.Time
	return &item, nil
}

func noRowsIsNil(item *models.Item, err error) (*models.Item, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// timestamp scans native TIMESTAMPTZ values and RFC 3339 text alike.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (t *timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("scan timestamp: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}
