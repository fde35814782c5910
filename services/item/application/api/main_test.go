package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemstore/migrations/item"
	"github.com/ghuser/itemstore/pkg/app"
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/services/item/application/api"
)

type itemJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	CreatedAt   string  `json:"created_at"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewPool(ctx, "sqlite://:memory:", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = item.Up(ctx, db)
	require.NoError(t, err)

	r := chi.NewRouter()
	store, err := api.ItemRoutes(r, &app.Application{
		Config:  &config.Config{Environment: config.EnvTesting},
		Backend: database.BackendSQLite,
		Db:      db,
		Logger:  logger.Discard(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func create(t *testing.T, h http.Handler, body string) itemJSON {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/items", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[itemJSON](t, rr)
}

const minecraft = `{"name":"Minecraft","description":"Best selling game","price":450,"available":true}`

func TestCreateItem(t *testing.T) {
	h := newRouter(t)
	rr := do(t, h, http.MethodPost, "/items", minecraft)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	got := decode[itemJSON](t, rr)
	require.Equal(t, "/items/"+got.ID, rr.Header().Get("Location"))

	_, err := uuid.Parse(got.ID)
	require.NoError(t, err)
	require.Equal(t, "Minecraft", got.Name)
	require.EqualValues(t, 450, got.Price)
	require.True(t, got.Available)
	require.NotNil(t, got.Description)
	require.Equal(t, "Best selling game", *got.Description)
	require.NotEmpty(t, got.CreatedAt)
}

func TestCreateItem_TrailingSlashAndDefaults(t *testing.T) {
	h := newRouter(t)
	rr := do(t, h, http.MethodPost, "/items/", `{"name":"Tetris","description":"Falling blocks","price":5}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	got := decode[itemJSON](t, rr)
	require.True(t, got.Available)
	require.NotNil(t, got.Description)
}

func TestCreateItem_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"negative price", `{"name":"x","description":"d","price":-5}`, http.StatusUnprocessableEntity},
		{"zero price", `{"name":"x","description":"d","price":0}`, http.StatusUnprocessableEntity},
		{"missing price", `{"name":"x","description":"d"}`, http.StatusUnprocessableEntity},
		{"missing name", `{"description":"d","price":1}`, http.StatusUnprocessableEntity},
		{"blank name", `{"name":"   ","description":"d","price":1}`, http.StatusUnprocessableEntity},
		{"name too long", fmt.Sprintf(`{"name":%q,"description":"d","price":1}`, strings.Repeat("a", 129)), http.StatusUnprocessableEntity},
		{"missing description", `{"name":"x","price":1}`, http.StatusUnprocessableEntity},
		{"null description", `{"name":"x","description":null,"price":1}`, http.StatusUnprocessableEntity},
		{"empty description", `{"name":"x","description":"","price":1}`, http.StatusUnprocessableEntity},
		{"description too long", fmt.Sprintf(`{"name":"x","description":%q,"price":1}`, strings.Repeat("d", 257)), http.StatusUnprocessableEntity},
		{"price as string", `{"name":"x","description":"d","price":"cheap"}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(t)
			rr := do(t, h, http.MethodPost, "/items", tt.body)
			require.Equal(t, tt.code, rr.Code, rr.Body.String())

			list := do(t, h, http.MethodGet, "/items", "")
			require.Equal(t, http.StatusOK, list.Code)
			require.Empty(t, decode[[]itemJSON](t, list), "rejected create must not persist")
		})
	}
}

func TestGetItem(t *testing.T) {
	h := newRouter(t)
	created := create(t, h, minecraft)

	rr := do(t, h, http.MethodGet, "/items/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, created, decode[itemJSON](t, rr))

	rr = do(t, h, http.MethodGet, "/items/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "item not found", decode[map[string]string](t, rr)["error"])

	rr = do(t, h, http.MethodGet, "/items/not-a-uuid", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListItems(t *testing.T) {
	h := newRouter(t)
	var ids []string
	for i := range 12 {
		ids = append(ids, create(t, h, fmt.Sprintf(`{"name":"item-%d","description":"d","price":%d}`, i, i+1)).ID)
	}

	rr := do(t, h, http.MethodGet, "/items", "")
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[[]itemJSON](t, rr)
	require.Len(t, page, 10)
	require.Equal(t, ids[0], page[0].ID)

	rr = do(t, h, http.MethodGet, "/items?skip=10&limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[[]itemJSON](t, rr)
	require.Len(t, page, 2)
	require.Equal(t, ids[10], page[0].ID)
	require.Equal(t, ids[11], page[1].ID)

	rr = do(t, h, http.MethodGet, "/items?limit=100", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[[]itemJSON](t, rr), 12)
}

func TestListItems_BadQuery(t *testing.T) {
	h := newRouter(t)
	for _, q := range []string{"limit=0", "limit=101", "skip=-1", "limit=abc", "skip=1.5"} {
		rr := do(t, h, http.MethodGet, "/items?"+q, "")
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, q)
	}
}

func TestUpdateItem_Partial(t *testing.T) {
	h := newRouter(t)
	created := create(t, h, minecraft)

	rr := do(t, h, http.MethodPut, "/items/"+created.ID, `{"price":500}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[itemJSON](t, rr)
	require.EqualValues(t, 500, updated.Price)
	require.Equal(t, "Minecraft", updated.Name)
	require.Equal(t, created.Description, updated.Description)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)

	rr = do(t, h, http.MethodGet, "/items/"+created.ID, "")
	require.Equal(t, updated, decode[itemJSON](t, rr))
}

func TestUpdateItem_ClearDescription(t *testing.T) {
	h := newRouter(t)
	created := create(t, h, minecraft)

	rr := do(t, h, http.MethodPut, "/items/"+created.ID, `{"description":null,"available":false}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[itemJSON](t, rr)
	require.Nil(t, updated.Description)
	require.False(t, updated.Available)
	require.EqualValues(t, 450, updated.Price)
}

func TestUpdateItem_EmptyBodyUnchanged(t *testing.T) {
	h := newRouter(t)
	created := create(t, h, minecraft)

	rr := do(t, h, http.MethodPut, "/items/"+created.ID, `{}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, created, decode[itemJSON](t, rr))
}

func TestUpdateItem_Invalid(t *testing.T) {
	h := newRouter(t)
	created := create(t, h, minecraft)

	for _, body := range []string{`{"name":null}`, `{"price":null}`, `{"price":-1}`, `{"price":0}`, `{"name":""}`, `{"available":null}`} {
		rr := do(t, h, http.MethodPut, "/items/"+created.ID, body)
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, body)
	}

	rr := do(t, h, http.MethodGet, "/items/"+created.ID, "")
	require.Equal(t, created, decode[itemJSON](t, rr), "rejected updates must not change the item")
}

func TestUpdateItem_NotFound(t *testing.T) {
	h := newRouter(t)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/items/"+uuid.NewString(), `{"price":1}`).Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/items/"+uuid.NewString(), `{}`).Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/items/bogus", `{"price":1}`).Code)
}

func TestDeleteItem(t *testing.T) {
	h := newRouter(t)
	created := create(t, h, minecraft)

	rr := do(t, h, http.MethodDelete, "/items/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, rr.Body.String())

	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/items/"+created.ID, "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/items/"+created.ID, "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/items/bogus", "").Code)
}
