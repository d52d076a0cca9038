package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladpavlovski/phm-sub006/internal/api/respond"
	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/panel"
)

// SubPanelJSON is one relation of a panel. Error is set when the relation
// failed to load or mutate; siblings are unaffected.
type SubPanelJSON struct {
	Relation catalog.Relation `json:"relation"`
	Items    []panel.Item     `json:"items"`
	Notice   string           `json:"notice,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// PanelResponse is the relation panel of one entity instance.
type PanelResponse struct {
	Entity    string         `json:"entity"`
	ID        string         `json:"id"`
	SubPanels []SubPanelJSON `json:"subPanels"`
}

// MutationsRequest is the body of a batch relation update.
type MutationsRequest struct {
	Mutations []panel.Mutation `json:"mutations"`
}

// ResultJSON is the outcome of the mutations of one relation.
type ResultJSON struct {
	Relation string        `json:"relation"`
	Applied  int           `json:"applied"`
	Error    string        `json:"error,omitempty"`
	SubPanel *SubPanelJSON `json:"subPanel,omitempty"`
}

// MutationsResponse lists per-relation results in request order.
type MutationsResponse struct {
	Entity  string       `json:"entity"`
	ID      string       `json:"id"`
	Results []ResultJSON `json:"results"`
}

// GetRelations returns the relation panel of an entity instance.
// @Summary Get relation panel
// @Description Returns one sub-panel per declared relation. A relation that fails to load carries its own error.
// @Tags relations
// @Produce json
// @Param entity path string true "Entity path or name" example(players)
// @Param id path string true "Entity id"
// @Success 200 {object} PanelResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/{entity}/{id}/relations [get]
func (h *Handler) GetRelations(w http.ResponseWriter, r *http.Request) {
	def, id, ok := h.resolveNode(w, r)
	if !ok {
		return
	}
	p, err := h.engine.Load(r.Context(), def.Name, id, nil)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	resp := PanelResponse{Entity: def.Name, ID: id, SubPanels: make([]SubPanelJSON, 0, len(p.SubPanels))}
	for _, sp := range p.SubPanels {
		resp.SubPanels = append(resp.SubPanels, subPanelJSON(sp))
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// PostRelations applies a batch of relation mutations.
// Mutations are grouped by relation; a failing group stops at its first
// error and does not affect the others, so the status is 200 whenever the
// entity exists.
// @Summary Update relations
// @Description Applies connect, disconnect and edge mutations grouped by relation and returns each relation's refreshed sub-panel.
// @Tags relations
// @Accept json
// @Produce json
// @Param entity path string true "Entity path or name" example(players)
// @Param id path string true "Entity id"
// @Param body body MutationsRequest true "Mutations"
// @Success 200 {object} MutationsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/{entity}/{id}/relations [post]
func (h *Handler) PostRelations(w http.ResponseWriter, r *http.Request) {
	def, id, ok := h.resolveNode(w, r)
	if !ok {
		return
	}
	var req MutationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON", err.Error())
		return
	}
	if len(req.Mutations) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "NO_MUTATIONS", "mutations must not be empty")
		return
	}

	results, err := h.engine.Apply(r.Context(), def.Name, id, req.Mutations)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	resp := MutationsResponse{Entity: def.Name, ID: id, Results: make([]ResultJSON, 0, len(results))}
	for _, res := range results {
		out := ResultJSON{Relation: res.Relation, Applied: res.Applied}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if res.SubPanel != nil {
			sp := subPanelJSON(res.SubPanel)
			out.SubPanel = &sp
		}
		resp.Results = append(resp.Results, out)
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// resolveNode maps the {entity} segment (URL path or type name) to its
// definition and checks that the instance exists.
func (h *Handler) resolveNode(w http.ResponseWriter, r *http.Request) (*catalog.Entity, string, bool) {
	name, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	def, ok := h.cat.ByPath(name)
	if !ok {
		def, ok = h.cat.Entity(name)
	}
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "UNKNOWN_ENTITY", "Unknown entity type: "+name)
		return nil, "", false
	}
	if _, err := h.store.Get(r.Context(), def.Name, id); err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", def.Name+" "+id+" not found")
			return nil, "", false
		}
		respond.WriteStoreError(w, err)
		return nil, "", false
	}
	return def, id, true
}

func subPanelJSON(sp *panel.SubPanel) SubPanelJSON {
	return SubPanelJSON{
		Relation: sp.Relation,
		Items:    sp.Items,
		Notice:   sp.Notice,
		Error:    sp.Error(),
	}
}
