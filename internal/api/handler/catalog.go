package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vladpavlovski/phm-sub006/internal/api/respond"
	"github.com/vladpavlovski/phm-sub006/internal/cache"
)

const catalogCacheKey = "catalog"

// CatalogResponse is the relation descriptor table.
type CatalogResponse struct {
	Entities []EntityDescriptor `json:"entities"`
}

// EntityDescriptor describes one entity type and its relations.
type EntityDescriptor struct {
	Name      string      `json:"name"`
	Plural    string      `json:"plural"`
	Path      string      `json:"path"`
	IDField   string      `json:"idField"`
	Fields    interface{} `json:"fields"`
	Relations interface{} `json:"relations"`
}

// GetCatalog returns the entity and relation catalogue.
// The table only changes on deploy, so it is cached for a day.
// @Summary Get relation catalogue
// @Description Returns every entity type with its scalar fields and declared relations (relation name, edge type, direction, target, cardinality, edge attributes).
// @Tags catalog
// @Produce json
// @Success 200 {object} CatalogResponse
// @Success 304 "Not modified"
// @Router /api/v1/catalog [get]
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ttl := cache.TTLCatalog

	if data, etag, ok := h.cache.Get(catalogCacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	resp := CatalogResponse{}
	for _, e := range h.cat.Entities() {
		resp.Entities = append(resp.Entities, EntityDescriptor{
			Name:      e.Name,
			Plural:    e.Plural,
			Path:      e.Path,
			IDField:   e.IDField(),
			Fields:    e.Fields,
			Relations: e.Relations,
		})
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Could not encode catalogue")
		return
	}

	etag := h.cache.Set(catalogCacheKey, raw, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, raw, etag, ttl, false)
}
