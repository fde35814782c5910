// Package storetest is a behavioural test suite every item store adapter must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemstore/pkg/optional"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	"github.com/ghuser/itemstore/services/item/domain/models"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) repositories.ItemRepository

// Run executes the suite against repositories produced by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Run("InsertThenFind", func(t *testing.T) { testInsertThenFind(t, newRepo(t)) })
	t.Run("InsertDuplicateID", func(t *testing.T) { testInsertDuplicateID(t, newRepo(t)) })
	t.Run("FindUnknown", func(t *testing.T) { testFindUnknown(t, newRepo(t)) })
	t.Run("FindAllOrderAndPaging", func(t *testing.T) { testFindAllOrderAndPaging(t, newRepo(t)) })
	t.Run("FindAllDefaultLimit", func(t *testing.T) { testFindAllDefaultLimit(t, newRepo(t)) })
	t.Run("UpdatePartial", func(t *testing.T) { testUpdatePartial(t, newRepo(t)) })
	t.Run("UpdateClearsDescription", func(t *testing.T) { testUpdateClearsDescription(t, newRepo(t)) })
	t.Run("UpdateUnknown", func(t *testing.T) { testUpdateUnknown(t, newRepo(t)) })
	t.Run("DeleteTwice", func(t *testing.T) { testDeleteTwice(t, newRepo(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newRepo(t).Ping(context.Background())) })
}

// NewItem builds a valid item named name with a description.
func NewItem(t *testing.T, name string, price float64) *models.Item {
	t.Helper()
	n, err := models.NewItemName(name)
	require.NoError(t, err)
	d, err := models.NewDescription(name + " description")
	require.NoError(t, err)
	p, err := models.NewPrice(price)
	require.NoError(t, err)
	return models.NewItem(n, &d, p, true)
}

func requireSameItem(t *testing.T, want, got *models.Item) {
	t.Helper()
	require.NotNil(t, got)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Description, got.Description)
	require.Equal(t, want.Price, got.Price)
	require.Equal(t, want.Available, got.Available)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", want.CreatedAt, got.CreatedAt)
}

func testInsertThenFind(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	item := NewItem(t, "Minecraft", 450)

	saved, err := repo.Insert(ctx, item)
	require.NoError(t, err)
	require.Equal(t, item.ID, saved.ID)
	require.EqualValues(t, 450, saved.Price)

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	requireSameItem(t, saved, found)
}

func testInsertDuplicateID(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	item := NewItem(t, "Tetris", 10)
	_, err := repo.Insert(ctx, item)
	require.NoError(t, err)

	dup := NewItem(t, "Other", 20)
	dup.ID = item.ID
	_, err = repo.Insert(ctx, dup)
	require.ErrorIs(t, err, itemdomain.ErrItemAlreadyExists)

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, models.ItemName("Tetris"), found.Name)
}

func testFindUnknown(t *testing.T, repo repositories.ItemRepository) {
	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, found)
}

func testFindAllOrderAndPaging(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		saved, err := repo.Insert(ctx, NewItem(t, fmt.Sprintf("item-%d", i), float64(i+1)))
		require.NoError(t, err)
		ids[i] = saved.ID
	}

	all, err := repo.FindAll(ctx, repositories.QueryOpts{Limit: 100})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, item := range all {
		require.Equal(t, ids[i], item.ID, "position %d", i)
	}

	page, err := repo.FindAll(ctx, repositories.QueryOpts{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, ids[1], page[0].ID)
	require.Equal(t, ids[2], page[1].ID)

	past, err := repo.FindAll(ctx, repositories.QueryOpts{Offset: 10, Limit: 2})
	require.NoError(t, err)
	require.Empty(t, past)
}

func testFindAllDefaultLimit(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	for i := range repositories.DefaultListLimit + 2 {
		_, err := repo.Insert(ctx, NewItem(t, fmt.Sprintf("bulk-%d", i), 1))
		require.NoError(t, err)
	}
	items, err := repo.FindAll(ctx, repositories.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, items, repositories.DefaultListLimit)
}

func testUpdatePartial(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	saved, err := repo.Insert(ctx, NewItem(t, "Minecraft", 450))
	require.NoError(t, err)

	patch, err := models.NewItemPatch(
		optional.Value[string]{}, optional.Value[string]{},
		optional.Of(500.0), optional.Value[bool]{},
	)
	require.NoError(t, err)

	updated, err := repo.UpdateByID(ctx, saved.ID, patch)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.EqualValues(t, 500, updated.Price)
	require.Equal(t, saved.Name, updated.Name)
	require.Equal(t, saved.Description, updated.Description)
	require.Equal(t, saved.Available, updated.Available)
	require.True(t, saved.CreatedAt.Equal(updated.CreatedAt))

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	requireSameItem(t, updated, found)
}

func testUpdateClearsDescription(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	saved, err := repo.Insert(ctx, NewItem(t, "Portal", 20))
	require.NoError(t, err)

	patch, err := models.NewItemPatch(
		optional.Of("Portal 2"), optional.Null[string](),
		optional.Value[float64]{}, optional.Of(false),
	)
	require.NoError(t, err)

	updated, err := repo.UpdateByID(ctx, saved.ID, patch)
	require.NoError(t, err)
	require.Equal(t, models.ItemName("Portal 2"), updated.Name)
	require.Nil(t, updated.Description)
	require.False(t, updated.Available)
	require.Equal(t, saved.Price, updated.Price)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Nil(t, found.Description)
}

func testUpdateUnknown(t *testing.T, repo repositories.ItemRepository) {
	patch, err := models.NewItemPatch(
		optional.Of("ghost"), optional.Value[string]{},
		optional.Value[float64]{}, optional.Value[bool]{},
	)
	require.NoError(t, err)

	updated, err := repo.UpdateByID(context.Background(), uuid.New(), patch)
	require.NoError(t, err)
	require.Nil(t, updated)
}

func testDeleteTwice(t *testing.T, repo repositories.ItemRepository) {
	ctx := context.Background()
	keep, err := repo.Insert(ctx, NewItem(t, "keep", 1))
	require.NoError(t, err)
	saved, err := repo.Insert(ctx, NewItem(t, "drop", 2))
	require.NoError(t, err)

	deleted, err := repo.DeleteByID(ctx, saved.ID)
	require.NoError(t, err)
	requireSameItem(t, saved, deleted)

	again, err := repo.DeleteByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Nil(t, again)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Nil(t, found)

	all, err := repo.FindAll(ctx, repositories.QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, keep.ID, all[0].ID)
}
