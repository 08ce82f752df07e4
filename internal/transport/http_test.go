package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/sqlite"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	return NewServer(
		sqlite.NewActivityRepository(db),
		sqlite.NewMarketRepository(db),
		sqlite.NewUserRepository(db),
		nil,
	)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

type envelope struct {
	Records    []map[string]any `json:"records"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func createTestActivity(t *testing.T, router http.Handler, name string) map[string]any {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/activities", map[string]any{
		"name":          name,
		"scheduledTime": time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
		"frequency":     "Weekly",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var act map[string]any
	decode(t, rec, &act)
	require.NotEmpty(t, act["id"])
	return act
}

func TestActivityLifecycle(t *testing.T) {
	router := newTestRouter(t)

	act := createTestActivity(t, router, "Clean Stalls")
	require.Equal(t, "Planned", act["status"])
	id := act["id"].(string)

	rec := doJSON(t, router, http.MethodGet, "/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	require.Equal(t, 1, env.Total)
	require.Equal(t, 1, env.Page)
	require.Equal(t, 20, env.Limit)
	require.Equal(t, 1, env.TotalPages)
	require.Len(t, env.Records, 1)

	rec = doJSON(t, router, http.MethodPut, "/activities/"+id, map[string]any{"name": "Clean All Stalls"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated map[string]any
	decode(t, rec, &updated)
	require.Equal(t, "Clean All Stalls", updated["name"])

	rec = doJSON(t, router, http.MethodPatch, "/activities/"+id+"/status", map[string]any{"status": "In Progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &updated)
	require.Equal(t, "In Progress", updated["status"])

	rec = doJSON(t, router, http.MethodPatch, "/activities/"+id+"/complete", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &updated)
	require.Equal(t, "Completed", updated["status"])
	require.NotEmpty(t, updated["lastCompleted"])

	rec = doJSON(t, router, http.MethodDelete, "/activities/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msg map[string]string
	decode(t, rec, &msg)
	require.Equal(t, "activity deleted", msg["message"])

	rec = doJSON(t, router, http.MethodGet, "/activities/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActivityNotFoundBody(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/activities/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var msg map[string]string
	decode(t, rec, &msg)
	require.Equal(t, "activity not found", msg["message"])
}

func TestActivityValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/activities", map[string]any{"name": "No Schedule"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/activities", map[string]any{
		"name":          "Bad Frequency",
		"scheduledTime": time.Now().UTC().Format(time.RFC3339),
		"frequency":     "Fortnightly",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	act := createTestActivity(t, router, "Clean Stalls")
	id := act["id"].(string)
	rec = doJSON(t, router, http.MethodPatch, "/activities/"+id+"/status", map[string]any{"status": "Done"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var msg map[string]string
	decode(t, rec, &msg)
	require.Equal(t, "invalid status", msg["message"])
}

func TestActivityBadDateParam(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/activities?startDate=notadate", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityBulkStatus(t *testing.T) {
	router := newTestRouter(t)
	a := createTestActivity(t, router, "Clean Stalls")
	b := createTestActivity(t, router, "Fix Roof")

	rec := doJSON(t, router, http.MethodPatch, "/activities/bulk/status", map[string]any{
		"ids":    []string{a["id"].(string), "missing", b["id"].(string)},
		"status": "In Progress",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Updated int              `json:"updated"`
		Records []map[string]any `json:"records"`
	}
	decode(t, rec, &result)
	require.Equal(t, 2, result.Updated)
	require.Len(t, result.Records, 2)

	rec = doJSON(t, router, http.MethodPatch, "/activities/bulk/status", map[string]any{
		"ids": []string{}, "status": "In Progress",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	createTestActivity(t, router, "Clean Stalls")
	createTestActivity(t, router, "Fix Roof")

	rec := doJSON(t, router, http.MethodGet, "/activities/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	decode(t, rec, &stats)
	require.EqualValues(t, 2, stats["total"])
	require.EqualValues(t, 2, stats["planned"])
}

func TestActivityListPaging(t *testing.T) {
	router := newTestRouter(t)
	for i := 0; i < 5; i++ {
		createTestActivity(t, router, fmt.Sprintf("Task %d", i))
	}

	rec := doJSON(t, router, http.MethodGet, "/activities?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	require.Equal(t, 5, env.Total)
	require.Equal(t, 2, env.Page)
	require.Equal(t, 2, env.Limit)
	require.Equal(t, 3, env.TotalPages)
	require.Len(t, env.Records, 2)
}

func TestMarketEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/properties/markets", map[string]any{
		"name": "Central Market",
		"address": map[string]any{
			"streetAddress": "1 Market Road",
			"town":          "Ikeja",
			"state":         "Lagos",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var m map[string]any
	decode(t, rec, &m)
	id := m["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/properties/markets", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/properties/markets?search=Lagos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	require.Equal(t, 1, env.Total)

	rec = doJSON(t, router, http.MethodGet, "/properties/markets/"+id+"/activities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &env)
	require.Zero(t, env.Total)

	rec = doJSON(t, router, http.MethodDelete, "/properties/markets/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/properties/markets/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var msg map[string]string
	decode(t, rec, &msg)
	require.Equal(t, "market not found", msg["message"])
}

func TestUserEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users", map[string]any{
		"email": "ada@example.com",
		"role":  "manager",
		"info":  map[string]any{"firstName": "Ada", "lastName": "Obi"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var u map[string]any
	decode(t, rec, &u)
	require.Equal(t, "active", u["status"])
	id := u["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/users", map[string]any{
		"email": "ada@example.com",
		"role":  "staff",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var msg map[string]string
	decode(t, rec, &msg)
	require.Equal(t, "email already registered", msg["message"])

	rec = doJSON(t, router, http.MethodPost, "/users", map[string]any{"role": "staff"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/users/"+id+"/status", map[string]any{"status": "suspended"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &u)
	require.Equal(t, "suspended", u["status"])

	rec = doJSON(t, router, http.MethodPatch, "/users/"+id+"/status", map[string]any{"status": "banned"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/users?status=suspended", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	decode(t, rec, &env)
	require.Equal(t, 1, env.Total)
}

func TestPagingClampsLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/activities?limit=500&page=0", nil)
	page, limit := paging(req)
	require.Equal(t, 1, page)
	require.Equal(t, maxLimit, limit)
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 3, totalPages(41, 20))
	require.Equal(t, 1, totalPages(1, 20))
	require.Equal(t, 0, totalPages(0, 20))
	require.Equal(t, 0, totalPages(10, 0))
}
