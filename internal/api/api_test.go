package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/model"
	"taskdesk/internal/ordering"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
)

type testApp struct {
	t       *testing.T
	handler http.Handler
	user    *model.User
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	activity := service.NewActivityService(repository.NewActivityRepository(db))
	locks := ordering.NewScopeLock()

	todos := service.NewTodoService(todoRepo, categoryRepo, activity, locks)
	categories := service.NewCategoryService(categoryRepo, activity, locks)

	user, err := users.UpsertByEmail(context.Background(), "api@example.com", "API Test")
	require.NoError(t, err)

	return &testApp{
		t:       t,
		handler: NewHandler(users, todos, categories).Routes(),
		user:    user,
	}
}

func (a *testApp) request(method, path string, body any, userID string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	res := httptest.NewRecorder()
	a.handler.ServeHTTP(res, req)
	return res
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	return a.request(method, path, body, fmt.Sprint(a.user.ID))
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

func TestAPI_RequiresUser(t *testing.T) {
	app := newTestApp(t)

	res := app.request(http.MethodGet, "/api/todos", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = app.request(http.MethodGet, "/api/todos", nil, "99999")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestAPI_TodoLifecycle(t *testing.T) {
	app := newTestApp(t)

	res := app.json(http.MethodPost, "/api/todos", map[string]any{
		"title":          "water plants",
		"dueDate":        "2026-01-15T00:00:00Z",
		"recurrenceRule": "FREQ=DAILY",
	})
	require.Equal(t, http.StatusCreated, res.Code)
	created := decodeBody[TodoResponse](t, res)
	assert.Equal(t, "Daily", created.RecurrenceLabel)
	assert.Equal(t, 0, created.SortOrder)

	res = app.json(http.MethodPost, fmt.Sprintf("/api/todos/%d/complete", created.ID), nil)
	require.Equal(t, http.StatusOK, res.Code)
	completion := decodeBody[map[string]TodoResponse](t, res)
	assert.True(t, completion["todo"].Completed)

	successor, ok := completion["successor"]
	require.True(t, ok, "completing a recurring todo must return the successor")
	assert.False(t, successor.Completed)
	require.NotNil(t, successor.DueDate)
	assert.Equal(t, "2026-01-16", successor.DueDate.Format("2006-01-02"))
	assert.Equal(t, "FREQ=DAILY", successor.RecurrenceRule)
}

func TestAPI_MoveTodo(t *testing.T) {
	app := newTestApp(t)

	var ids []uint
	for _, title := range []string{"a", "b", "c"} {
		res := app.json(http.MethodPost, "/api/todos", map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, res.Code)
		ids = append(ids, decodeBody[TodoResponse](t, res).ID)
	}

	res := app.json(http.MethodPost, fmt.Sprintf("/api/todos/%d/move", ids[0]), map[string]any{"index": 2})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 2, decodeBody[TodoResponse](t, res).SortOrder)

	res = app.json(http.MethodGet, "/api/todos?category=none", nil)
	require.Equal(t, http.StatusOK, res.Code)
	listing := decodeBody[[]TodoResponse](t, res)
	require.Len(t, listing, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{listing[0].Title, listing[1].Title, listing[2].Title})
}

func TestAPI_MoveTodoValidation(t *testing.T) {
	app := newTestApp(t)

	res := app.json(http.MethodPost, "/api/todos", map[string]any{"title": "a"})
	require.Equal(t, http.StatusCreated, res.Code)
	id := decodeBody[TodoResponse](t, res).ID

	// Missing index is rejected before anything runs.
	res = app.json(http.MethodPost, fmt.Sprintf("/api/todos/%d/move", id), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = app.json(http.MethodPost, fmt.Sprintf("/api/todos/%d/move", id), map[string]any{"index": -1})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = app.json(http.MethodPost, "/api/todos/9999/move", map[string]any{"index": 0})
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestAPI_ForeignTodoIsNotFound(t *testing.T) {
	app := newTestApp(t)

	res := app.json(http.MethodPost, "/api/todos", map[string]any{"title": "mine"})
	require.Equal(t, http.StatusCreated, res.Code)
	id := decodeBody[TodoResponse](t, res).ID

	other := app.request(http.MethodPost, fmt.Sprintf("/api/todos/%d/complete", id), nil, "2")
	// User 2 does not exist in this fixture.
	assert.Equal(t, http.StatusUnauthorized, other.Code)
}

func TestAPI_CategoryLifecycle(t *testing.T) {
	app := newTestApp(t)

	for _, name := range []string{"first", "second"} {
		res := app.json(http.MethodPost, "/api/categories", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, res.Code)
		assert.Equal(t, 0, decodeBody[CategoryResponse](t, res).SortOrder)
	}

	res := app.json(http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, res.Code)
	listing := decodeBody[[]CategoryResponse](t, res)
	require.Len(t, listing, 2)
	assert.Equal(t, "second", listing[0].Name)
	assert.Equal(t, "first", listing[1].Name)

	res = app.json(http.MethodPost, fmt.Sprintf("/api/categories/%d/move", listing[1].ID), map[string]any{"index": 0})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 0, decodeBody[CategoryResponse](t, res).SortOrder)
}

func TestAPI_HealthAndRequestID(t *testing.T) {
	app := newTestApp(t)

	res := app.request(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.Header().Get("X-Request-ID"))
}
