package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladpavlovski/phm-sub006/internal/cache"
	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/graph/memstore"
)

type failingPing struct{ graph.Store }

func (failingPing) Ping(context.Context) error { return errors.New("bolt: connection refused") }

func newTestRouter(t *testing.T, store graph.Store) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := New(store, nil, cache.New(ctx, true), catalog.Hockey())
	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Get("/health/db", h.HealthCheckDB)
	r.Get("/health/cache", h.HealthCheckCache)
	r.Get("/api/v1/catalog", h.GetCatalog)
	r.Get("/api/v1/{entity}/{id}/relations", h.GetRelations)
	r.Post("/api/v1/{entity}/{id}/relations", h.PostRelations)
	return r
}

func seededStore(t *testing.T) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	s := memstore.New(catalog.Hockey())
	_, err := s.Save(ctx, "Player", "p1", map[string]any{"firstName": "Jaromir", "lastName": "Jagr"})
	require.NoError(t, err)
	_, err = s.Save(ctx, "Team", "t1", map[string]any{"name": "Kladno"})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthDB(t *testing.T) {
	rec := do(t, newTestRouter(t, seededStore(t)), http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"graph":"connected"`)

	rec = do(t, newTestRouter(t, failingPing{seededStore(t)}), http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"graph":"disconnected"`)
}

func TestCatalogIsCachedWithETag(t *testing.T) {
	r := newTestRouter(t, seededStore(t))

	first := do(t, r, http.MethodGet, "/api/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var body CatalogResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	require.NotEmpty(t, body.Entities)
	var player *EntityDescriptor
	for i := range body.Entities {
		if body.Entities[i].Name == "Player" {
			player = &body.Entities[i]
		}
	}
	require.NotNil(t, player)
	assert.Equal(t, "playerId", player.IDField)
	assert.Contains(t, first.Body.String(), `"relationName":"teams"`)

	second := do(t, r, http.MethodGet, "/api/v1/catalog", "", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, etag, second.Header().Get("ETag"))

	notModified := do(t, r, http.MethodGet, "/api/v1/catalog", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Empty(t, notModified.Body.String())
}

func TestGetRelations(t *testing.T) {
	store := seededStore(t)
	require.NoError(t, store.Connect(context.Background(), "Player", "p1", "teams", "t1", map[string]any{"jersey": 68}))
	r := newTestRouter(t, store)

	rec := do(t, r, http.MethodGet, "/api/v1/players/p1/relations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PanelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Player", resp.Entity)
	def, _ := catalog.Hockey().Entity("Player")
	require.Len(t, resp.SubPanels, len(def.Relations))
	for _, sp := range resp.SubPanels {
		if sp.Relation.Name == "teams" {
			require.Len(t, sp.Items, 1)
			assert.Equal(t, "t1", sp.Items[0].ID)
			assert.Equal(t, "Kladno", sp.Items[0].Title)
		}
	}

	byName := do(t, r, http.MethodGet, "/api/v1/Player/p1/relations", "", nil)
	assert.Equal(t, http.StatusOK, byName.Code)
}

func TestGetRelationsNotFound(t *testing.T) {
	r := newTestRouter(t, seededStore(t))

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/players/nobody/relations", "", nil).Code)
	rec := do(t, r, http.MethodGet, "/api/v1/spaceships/p1/relations", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_ENTITY")
}

func TestPostRelationsIsolatesFailures(t *testing.T) {
	store := seededStore(t)
	r := newTestRouter(t, store)

	body := `{"mutations":[
		{"relation":"teams","action":"connect","targetId":"t1","attributes":{"jersey":"68","position":"RW"}},
		{"relation":"positions","action":"connect","targetId":""}
	]}`
	rec := do(t, r, http.MethodPost, "/api/v1/players/p1/relations", body, map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MutationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)

	teams := resp.Results[0]
	assert.Equal(t, "teams", teams.Relation)
	assert.Equal(t, 1, teams.Applied)
	assert.Empty(t, teams.Error)
	require.NotNil(t, teams.SubPanel)
	require.Len(t, teams.SubPanel.Items, 1)
	assert.Equal(t, "Teams updated", teams.SubPanel.Notice)
	assert.EqualValues(t, 68, teams.SubPanel.Items[0].Attributes["jersey"])

	positions := resp.Results[1]
	assert.Equal(t, "positions", positions.Relation)
	assert.Equal(t, 0, positions.Applied)
	assert.NotEmpty(t, positions.Error)

	edges, err := store.Related(context.Background(), "Player", "p1", "teams")
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestPostRelationsBadBody(t *testing.T) {
	r := newTestRouter(t, seededStore(t))

	rec := do(t, r, http.MethodPost, "/api/v1/players/p1/relations", "{", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_BODY")

	rec = do(t, r, http.MethodPost, "/api/v1/players/p1/relations", `{"mutations":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_MUTATIONS")
}
