package services

import (
	"fmt"

	"github.com/ghuser/itemstore/pkg/app"
	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/postgres"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/redis"
	"github.com/ghuser/itemstore/services/item/infrastructure/persistence/sqlite"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with the store adapter matching a.Backend.
func New(a *app.Application) (*Services, error) {
	repo, err := NewRepository(a)
	if err != nil {
		return nil, err
	}
	return &Services{Item: NewItemService(repo)}, nil
}

// NewRepository picks the store adapter for a.Backend.
func NewRepository(a *app.Application) (repositories.ItemRepository, error) {
	switch a.Backend {
	case database.BackendPostgres:
		if a.Db == nil {
			return nil, fmt.Errorf("postgres backend without a database pool")
		}
		return postgres.NewItemRepository(a.Db, a.EventBus), nil
	case database.BackendSQLite:
		if a.Db == nil {
			return nil, fmt.Errorf("sqlite backend without a database pool")
		}
		return sqlite.NewItemRepository(a.Db), nil
	case database.BackendRedis:
		if a.Redis == nil {
			return nil, fmt.Errorf("redis backend without a redis client")
		}
		return redis.NewItemRepository(a.Redis, ""), nil
	default:
		return nil, fmt.Errorf("unknown item store backend %q", a.Backend)
	}
}
