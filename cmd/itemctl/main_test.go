package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemstore/pkg/config"

	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// run executes itemctl against dbURL and returns stdout.
func run(t *testing.T, dbURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(testConfig)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--database-url", dbURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func testConfig() (*config.Config, error) {
	return &config.Config{
		AutoMigrate: true,
		Environment: config.EnvTesting,
		LogLevel:    "warn",
		ServiceName: "itemctl-test",
	}, nil
}

func tempDB(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "items.db")
}

func TestMigrate_UpStatusDown(t *testing.T) {
	db := tempDB(t)

	out, err := run(t, db, "migrate", "status")
	require.NoError(t, err)
	require.Contains(t, out, "pending")

	out, err = run(t, db, "migrate", "up")
	require.NoError(t, err)
	require.Contains(t, out, "applied 00001_create_items.sql")

	out, err = run(t, db, "migrate", "up")
	require.NoError(t, err)
	require.Contains(t, out, "no pending migrations")

	out, err = run(t, db, "migrate", "status")
	require.NoError(t, err)
	require.Contains(t, out, "applied")
	require.NotContains(t, out, "pending")

	out, err = run(t, db, "migrate", "down")
	require.NoError(t, err)
	require.Contains(t, out, "rolled back")
}

func TestItemCommands_Lifecycle(t *testing.T) {
	db := tempDB(t)

	out, err := run(t, db, "--json", "create", "Minecraft", "--price", "450", "--description", "Best selling game")
	require.NoError(t, err)
	var created itemView
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Equal(t, "Minecraft", created.Name)
	require.Equal(t, 450.0, created.Price)
	require.True(t, created.Available)
	require.NotNil(t, created.Description)

	_, err = run(t, db, "create", "Tetris", "--price", "9.99", "--available=false")
	require.NoError(t, err)

	out, err = run(t, db, "--json", "list", "--limit", "1", "--skip", "1")
	require.NoError(t, err)
	var page []itemView
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page, 1)
	require.Equal(t, "Tetris", page[0].Name)
	require.False(t, page[0].Available)

	out, err = run(t, db, "get", created.ID)
	require.NoError(t, err)
	require.Contains(t, out, "Minecraft")
	require.Contains(t, out, "Best selling game")

	_, err = run(t, db, "delete", created.ID)
	require.NoError(t, err)

	_, err = run(t, db, "get", created.ID)
	require.ErrorIs(t, err, itemdomain.ErrItemNotFound)
}

func TestItemCommands_InvalidInput(t *testing.T) {
	db := tempDB(t)

	_, err := run(t, db, "create", "Minecraft", "--price", "0")
	require.ErrorIs(t, err, itemdomain.ErrInvalidItemPrice)

	_, err = run(t, db, "create", "Minecraft")
	require.Error(t, err)

	_, err = run(t, db, "get", "not-a-uuid")
	require.ErrorContains(t, err, "invalid item id")

	_, err = run(t, db, "list", "--limit", "0")
	require.NoError(t, err)
}

func TestMigrate_RejectsRedis(t *testing.T) {
	_, err := run(t, "redis://127.0.0.1:1/0", "migrate", "up")
	require.Error(t, err)
}
