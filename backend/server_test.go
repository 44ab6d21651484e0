package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/progression/backend"
	"github.com/ellavondegurechaff/progression/backend/handlers"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
	"github.com/ellavondegurechaff/progression/internal/gateways/memory"
)

type noProfiles struct{}

func (noProfiles) Profile(context.Context, snowflake.ID) (rewards.Profile, error) {
	return rewards.Profile{}, nil
}

type zeroRand struct{}

func (zeroRand) Float64() float64 { return 0 }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	now := func() time.Time { return time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC) }
	engine, err := rewards.NewEngine(memory.New(now), rewards.DefaultCatalog(), noProfiles{},
		rewards.WithClock(now),
		rewards.WithRand(zeroRand{}),
	)
	require.NoError(t, err)

	return backend.NewApp(&handlers.WebApp{Engine: engine, Version: "test"}, backend.Options{
		Gatherer: prometheus.NewRegistry(),
	})
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestUserLifecycle(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/users/42/summary", "")
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _ = do(t, app, http.MethodPost, "/api/v1/users/42", "")
	require.Equal(t, http.StatusOK, status)

	status, env = do(t, app, http.MethodPost, "/api/v1/users/42/events", `{"quest_type":"post_created"}`)
	require.Equal(t, http.StatusOK, status)
	var outcomes []rewards.QuestOutcome
	require.NoError(t, json.Unmarshal(env.Data, &outcomes))
	completed := 0
	for _, o := range outcomes {
		if o.Completed {
			completed++
			assert.Equal(t, "first_post", o.Quest.ID)
		}
	}
	assert.Equal(t, 1, completed)

	status, _ = do(t, app, http.MethodPost, "/api/v1/users/42/daily", "")
	require.Equal(t, http.StatusCreated, status)

	status, env = do(t, app, http.MethodPost, "/api/v1/users/42/daily", "")
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_CLAIMED", env.Error.Code)
	assert.Equal(t, "2024-03-11T00:00:00Z", env.Error.Details["next_available_at"])

	status, _ = do(t, app, http.MethodPost, "/api/v1/users/42/spin", "")
	require.Equal(t, http.StatusCreated, status)

	status, env = do(t, app, http.MethodPost, "/api/v1/users/42/spin", "")
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_SPUN", env.Error.Code)
	assert.NotEmpty(t, env.Error.Details["next_available_at"])

	// 10 from first_post, 5 from day one, 5 from the pebble segment
	status, env = do(t, app, http.MethodGet, "/api/v1/users/42/summary", "")
	require.Equal(t, http.StatusOK, status)
	var summary rewards.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, int64(20), summary.CoinBalance)
	assert.Equal(t, int64(110), summary.TotalXP)

	status, env = do(t, app, http.MethodPost, "/api/v1/users/42/purchases", `{"item_id":"badge:gold","price":100}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", env.Error.Code)

	status, _ = do(t, app, http.MethodPost, "/api/v1/users/42/purchases", `{"item_id":"badge:gold","price":15}`)
	require.Equal(t, http.StatusCreated, status)

	status, env = do(t, app, http.MethodGet, "/api/v1/users/42/ledger?limit=2", "")
	require.Equal(t, http.StatusOK, status)
	var entries []rewards.LedgerEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, rewards.EntryPurchase, entries[0].Type)

	status, env = do(t, app, http.MethodGet, "/api/v1/users/42/reconcile", "")
	require.Equal(t, http.StatusOK, status)
	var rec rewards.Reconciliation
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.True(t, rec.Balanced)
	assert.Equal(t, int64(5), rec.State.CoinBalance)
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "bad user id", method: http.MethodPost, path: "/api/v1/users/abc", status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "missing quest type", method: http.MethodPost, path: "/api/v1/users/42/events", body: `{"delta":2}`, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
		{name: "negative delta", method: http.MethodPost, path: "/api/v1/users/42/events", body: `{"quest_type":"post_created","delta":-1}`, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
		{name: "zero price", method: http.MethodPost, path: "/api/v1/users/42/purchases", body: `{"item_id":"hat","price":0}`, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
		{name: "malformed body", method: http.MethodPost, path: "/api/v1/users/42/purchases", body: `{"item_id":`, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "leaderboard disabled", method: http.MethodGet, path: "/api/v1/leaderboard", status: http.StatusServiceUnavailable, code: "LEADERBOARD_DISABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestCatalogAndHealth(t *testing.T) {
	app := newTestApp(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, status)
	var catalog rewards.Catalog
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	assert.Len(t, catalog.DailyRewards, rewards.StreakCycleLength)

	status, env = do(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
