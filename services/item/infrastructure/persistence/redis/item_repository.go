// Package redis stores items as Redis hashes. Insertion order is kept in a
// sorted set scored by a monotonic counter, and every write that must check
// existence runs as a Lua script so it is atomic on the server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ghuser/itemstore/pkg/redisx"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	"github.com/ghuser/itemstore/services/item/domain/models"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
)

const (
	hashID          = "id"
	hashName        = "name"
	hashDescription = "description"
	hashPrice       = "price"
	hashAvailable   = "available"
	hashCreatedAt   = "created_at"
)

// KEYS: item hash, order zset, sequence counter. ARGV: id, then field/value pairs.
var insertScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
local seq = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[1], unpack(ARGV, 2))
redis.call('ZADD', KEYS[2], seq, ARGV[1])
return 1
`)

// KEYS: item hash. ARGV: pair count n, n field/value pairs, then fields to clear.
var updateScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
local n = tonumber(ARGV[1])
if n > 0 then
  redis.call('HSET', KEYS[1], unpack(ARGV, 2, 1 + 2 * n))
end
for i = 2 + 2 * n, #ARGV do
  redis.call('HDEL', KEYS[1], ARGV[i])
end
return redis.call('HGETALL', KEYS[1])
`)

// KEYS: item hash, order zset. ARGV: id.
var deleteScript = goredis.NewScript(`
local h = redis.call('HGETALL', KEYS[1])
if #h == 0 then
  return false
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[1])
return h
`)

// ItemRepository implements repositories.ItemRepository against Redis.
type ItemRepository struct {
	client *redisx.Client
	prefix string
}

// NewItemRepository returns a repository whose keys all start with prefix.
// An empty prefix is valid.
func NewItemRepository(client *redisx.Client, prefix string) *ItemRepository {
	return &ItemRepository{client: client, prefix: prefix}
}

func (r *ItemRepository) itemKey(id uuid.UUID) string { return r.prefix + "item:" + id.String() }
func (r *ItemRepository) orderKey() string            { return r.prefix + "items:order" }
func (r *ItemRepository) seqKey() string              { return r.prefix + "items:seq" }

// Insert stores item unless its id is already taken.
func (r *ItemRepository) Insert(ctx context.Context, item *models.Item) (*models.Item, error) {
	args := []any{item.ID.String(),
		hashID, item.ID.String(),
		hashName, item.Name.String(),
		hashPrice, formatPrice(item.Price.Float64()),
		hashAvailable, formatBool(item.Available),
		hashCreatedAt, item.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if d, ok := item.DescriptionString(); ok {
		args = append(args, hashDescription, d)
	}

	keys := []string{r.itemKey(item.ID), r.orderKey(), r.seqKey()}
	created, err := insertScript.Run(ctx, r.client.Redis(), keys, args...).Int()
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	if created == 0 {
		return nil, itemdomain.ErrItemAlreadyExists
	}
	return item.Clone(), nil
}

// FindAll reads one page of ids from the order set, then the hashes in a pipeline.
func (r *ItemRepository) FindAll(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, error) {
	opts = opts.Normalize()
	rdb := r.client.Redis()

	start := int64(opts.Offset)
	stop := start + int64(opts.Limit) - 1
	ids, err := rdb.ZRange(ctx, r.orderKey(), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("query item order: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}

	cmds := make([]*goredis.MapStringStringCmd, len(ids))
	_, err = rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, r.prefix+"item:"+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]*models.Item, 0, len(ids))
	for _, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			// deleted between ZRANGE and HGETALL
			continue
		}
		item, err := decodeItem(h)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FindByID returns (nil, nil) when the hash does not exist.
func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	h, err := r.client.Redis().HGetAll(ctx, r.itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	if len(h) == 0 {
		return nil, nil
	}
	return decodeItem(h)
}

// UpdateByID sets the supplied fields and clears nulls in one script run.
func (r *ItemRepository) UpdateByID(ctx context.Context, id uuid.UUID, patch models.ItemPatch) (*models.Item, error) {
	var (
		pairs   []any
		cleared []any
	)
	for _, f := range patch.Fields() {
		switch v := f.Value.(type) {
		case nil:
			cleared = append(cleared, string(f.Field))
		case string:
			pairs = append(pairs, string(f.Field), v)
		case float64:
			pairs = append(pairs, string(f.Field), formatPrice(v))
		case bool:
			pairs = append(pairs, string(f.Field), formatBool(v))
		default:
			return nil, fmt.Errorf("update item: unsupported value %T for %s", v, f.Field)
		}
	}
	args := make([]any, 0, 1+len(pairs)+len(cleared))
	args = append(args, len(pairs)/2)
	args = append(args, pairs...)
	args = append(args, cleared...)

	res, err := updateScript.Run(ctx, r.client.Redis(), []string{r.itemKey(id)}, args...).Slice()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return decodeItem(pairsToMap(res))
}

// DeleteByID removes the hash and its order entry, returning the old record.
func (r *ItemRepository) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	keys := []string{r.itemKey(id), r.orderKey()}
	res, err := deleteScript.Run(ctx, r.client.Redis(), keys, id.String()).Slice()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	return decodeItem(pairsToMap(res))
}

func (r *ItemRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func pairsToMap(flat []any) map[string]string {
	m := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		k, _ := flat[i].(string)
		v, _ := flat[i+1].(string)
		m[k] = v
	}
	return m
}

func decodeItem(h map[string]string) (*models.Item, error) {
	id, err := uuid.Parse(h[hashID])
	if err != nil {
		return nil, fmt.Errorf("decode item id: %w", err)
	}
	price, err := strconv.ParseFloat(h[hashPrice], 64)
	if err != nil {
		return nil, fmt.Errorf("decode item %s price: %w", id, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, h[hashCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("decode item %s created_at: %w", id, err)
	}

	item := &models.Item{
		ID:        id,
		Name:      models.ItemName(h[hashName]),
		Price:     models.Price(price),
		Available: h[hashAvailable] == "1",
		CreatedAt: createdAt.UTC(),
	}
	if d, ok := h[hashDescription]; ok {
		desc := models.Description(d)
		item.Description = &desc
	}
	return item, nil
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
