package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemstore/pkg/redisx"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/redis"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/storetest"
)

// Integration tests, skipped unless REDIS_URL is set. Each subtest gets its
// own key prefix so runs never collide.
func TestItemRepository_Contract(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	ctx := context.Background()
	client, err := redisx.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storetest.Run(t, func(t *testing.T) repositories.ItemRepository {
		prefix := "itemstore-test:" + uuid.NewString() + ":"
		t.Cleanup(func() {
			keys, err := client.Redis().Keys(ctx, prefix+"*").Result()
			if err == nil && len(keys) > 0 {
				_ = client.Redis().Del(ctx, keys...).Err()
			}
		})
		return redis.NewItemRepository(client, prefix)
	})
}
