// Package handler provides the JSON endpoints of the API: service metadata,
// health checks, the relation catalogue and relation panels. The GraphQL,
// upload and admin surfaces are mounted by the router from their own
// packages.
package handler

import (
	"net/http"
	"time"

	"github.com/vladpavlovski/phm-sub006/internal/api/respond"
	"github.com/vladpavlovski/phm-sub006/internal/cache"
	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/panel"
	"github.com/vladpavlovski/phm-sub006/internal/prefs"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store  graph.Store
	prefs  prefs.Store
	cache  *cache.Cache
	cat    *catalog.Catalog
	engine *panel.Engine
}

// New creates a Handler with shared dependencies. prefs may be nil, in which
// case /health/db reports only the graph store.
func New(store graph.Store, p prefs.Store, c *cache.Cache, cat *catalog.Catalog) *Handler {
	return &Handler{
		store:  store,
		prefs:  p,
		cache:  c,
		cat:    cat,
		engine: panel.New(store, cat),
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and the mounted surfaces.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Hockey League Manager API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"surfaces": map[string]string{
			"graphql": "/graphql",
			"upload":  "/upload",
			"admin":   "/admin",
			"catalog": "/api/v1/catalog",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies graph database and preference store connectivity.
// @Summary Database health check
// @Description Verifies Neo4j connectivity and the client preference store.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	body := map[string]interface{}{
		"status":    "healthy",
		"graph":     "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.store.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["graph"] = "disconnected"
	}
	if h.prefs != nil {
		body["prefs"] = "connected"
		if err := h.prefs.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["prefs"] = "disconnected"
		}
	}
	respond.WriteJSONObject(w, status, body)
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics (active keys, expired keys).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
