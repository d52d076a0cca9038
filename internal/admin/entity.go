package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/form"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
	"github.com/vladpavlovski/phm-sub006/internal/panel"
	"github.com/vladpavlovski/phm-sub006/internal/routes"
	"github.com/vladpavlovski/phm-sub006/internal/uistate"
)

const listLimit = 200

// --------------------------------------------------------------------------
// Dashboard & lists
// --------------------------------------------------------------------------

type link struct {
	Label string
	URL   string
}

type dashboardPage struct {
	page
	Sections []link
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	p := dashboardPage{page: h.newPage(r, org)}
	if name := h.organizationName(r.Context(), org); name != "" {
		p.Title = name
	}
	for _, def := range h.cat.Entities() {
		p.Sections = append(p.Sections, link{Label: def.Name, URL: routes.EntityList(org, def.Path)})
	}
	h.render(w, r, http.StatusOK, "dashboard", p)
}

// organizationName resolves an organization by its URL slug. The slug is
// only a display concern; pages work for unknown slugs.
func (h *Handler) organizationName(ctx context.Context, slug string) string {
	orgs, err := h.store.List(ctx, "Organization", graph.Filter{})
	if err != nil {
		h.logger.Warn("Organization lookup failed", "slug", slug, "error", err)
		return ""
	}
	def, _ := h.cat.Entity("Organization")
	for _, o := range orgs {
		if o.Props["urlSlug"] == slug {
			return def.Title(o.Props)
		}
	}
	return ""
}

type listPage struct {
	page
	Entity   *catalog.Entity
	Items    []link
	Action   string
	Controls []form.Control
	Error    string
}

func (h *Handler) entityFromPath(w http.ResponseWriter, r *http.Request) (*catalog.Entity, bool) {
	def, ok := h.cat.ByPath(chi.URLParam(r, "entity"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return def, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	def, ok := h.entityFromPath(w, r)
	if !ok {
		return
	}
	h.renderList(w, r, def, http.StatusOK, form.Controls(def.Fields, nil, nil), "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, def *catalog.Entity, status int, controls []form.Control, errText string) {
	org := chi.URLParam(r, "org")
	p := listPage{
		page:     h.newPage(r, def.Name),
		Entity:   def,
		Action:   routes.EntityList(org, def.Path),
		Controls: controls,
		Error:    errText,
	}
	nodes, err := h.store.List(r.Context(), def.Name, graph.Filter{Limit: listLimit})
	if err != nil {
		h.logger.Error("List failed", "entity", def.Name, "error", err)
		p.Error = "Could not load " + def.Plural + ": " + err.Error()
		status = statusFor(err)
	}
	for _, n := range nodes {
		p.Items = append(p.Items, link{Label: def.Title(n.Props), URL: routes.EntityDetail(org, def.Path, n.ID)})
	}
	h.render(w, r, status, "list", p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	def, ok := h.entityFromPath(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	res := (&form.Controller{Fields: def.Fields}).Parse(r.PostForm)
	if !res.Valid() {
		h.renderList(w, r, def, http.StatusUnprocessableEntity, form.Controls(def.Fields, nil, res), "")
		return
	}
	id := uuid.NewString()
	if _, err := h.store.Save(r.Context(), def.Name, id, res.Values); err != nil {
		h.logger.Error("Create failed", "entity", def.Name, "error", err)
		h.renderList(w, r, def, statusFor(err), form.Controls(def.Fields, nil, res), err.Error())
		return
	}
	h.logger.Info("Entity created", "entity", def.Name, "id", id)
	redirect(w, r, routes.EntityDetail(chi.URLParam(r, "org"), def.Path, id))
}

// --------------------------------------------------------------------------
// Entity page
// --------------------------------------------------------------------------

type description struct {
	Label string
	Value string
}

type entityPage struct {
	page
	Entity       *catalog.Entity
	ID           string
	Action       string
	DeleteAction string
	DeleteOpen   bool
	DeleteLink   string
	CloseLink    string
	PlayLink     string
	Controls     []form.Control
	FormError    string
	Descriptions []description
	SubPanels    []subPanelView
}

type subPanelView struct {
	*panel.SubPanel
	AddLink       string
	ConnectOpen   bool
	ConnectAction string
	Candidates    []link // Label is the title, URL the id
	AttrControls  []form.Control
	Rows          []rowView
}

type rowView struct {
	panel.Item
	Link       string
	Attributes []description
	EditLink   string
	RemoveLink string
	// Set when this row is staged for an edge edit or removal.
	EditOpen     bool
	RemoveOpen   bool
	EditAction   string
	RemoveAction string
	EditControls []form.Control
}

// pageState is what a handler knows beyond the stored data when it renders
// an entity page: submitted values and errors to show.
type pageState struct {
	ui        *uistate.State
	scalars   *form.Result
	formError string
	// failed replaces the loaded sub-panel of the same relation.
	failed *panel.SubPanel
	// attrErr is the field error of a failed edge attribute submission.
	attrErr error
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	def, ok := h.entityFromPath(w, r)
	if !ok {
		return
	}
	st := pageState{ui: uistate.FromQuery(r.URL.Query())}
	h.renderEntity(w, r, def, chi.URLParam(r, "id"), http.StatusOK, st)
}

func (h *Handler) renderEntity(w http.ResponseWriter, r *http.Request, def *catalog.Entity, id string, status int, st pageState) {
	ctx := r.Context()
	org := chi.URLParam(r, "org")
	self := routes.EntityDetail(org, def.Path, id)

	node, err := h.store.Get(ctx, def.Name, id)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Load failed", "entity", def.Name, "id", id, "error", err)
		status = statusFor(err)
		node = &graph.Node{Entity: def.Name, ID: id, Props: map[string]any{}}
		st.formError = "Could not load " + def.Name + ": " + err.Error()
	}

	pnl, err := h.engine.Load(ctx, def.Name, id, nil)
	if err != nil {
		h.logger.Error("Panel load failed", "entity", def.Name, "error", err)
		pnl = &panel.Panel{Entity: def, ID: id}
	}
	if st.failed != nil {
		for i, sp := range pnl.SubPanels {
			if sp.Relation.Name == st.failed.Relation.Name {
				pnl.SubPanels[i] = st.failed
			}
		}
	}
	if updated := r.URL.Query().Get("updated"); updated != "" && st.failed == nil {
		if sp := pnl.SubPanel(updated); sp != nil && sp.Err == nil {
			sp.Notice = sp.Relation.Label + " updated"
		}
	}

	p := entityPage{
		page:         h.newPage(r, def.Name+": "+def.Title(node.Props)),
		Entity:       def,
		ID:           id,
		Action:       self,
		DeleteAction: self + "/delete",
		DeleteOpen:   st.ui.Dialog(uistate.DialogDelete),
		DeleteLink:   routes.WithQuery(self, uistate.Default().With(uistate.DialogDelete, nil).Query()),
		CloseLink:    self,
		Controls:     form.Controls(def.Fields, node.Props, st.scalars),
		FormError:    st.formError,
	}
	if def.Name == "Game" {
		p.PlayLink = routes.GamePlay(org, id)
	}
	for _, f := range def.Fields {
		if v, ok := node.Props[f.Name].(string); ok && f.Kind == catalog.KindText && v != "" {
			p.Descriptions = append(p.Descriptions, description{Label: f.Label, Value: v})
		}
	}
	for _, sp := range pnl.SubPanels {
		p.SubPanels = append(p.SubPanels, h.subPanelView(ctx, org, def, id, sp, st))
	}
	h.render(w, r, status, "entity", p)
}

func (h *Handler) subPanelView(ctx context.Context, org string, def *catalog.Entity, id string, sp *panel.SubPanel, st pageState) subPanelView {
	self := routes.EntityDetail(org, def.Path, id)
	rel := sp.Relation
	staged, hasStaged := st.ui.StagedRecord()
	mine := hasStaged && staged.Relation == rel.Name

	v := subPanelView{
		SubPanel:      sp,
		AddLink:       routes.WithQuery(self, uistate.Default().With(uistate.DialogConnect, &uistate.Staged{Relation: rel.Name}).Query()),
		ConnectOpen:   mine && st.ui.Dialog(uistate.DialogConnect),
		ConnectAction: routes.RelationAction(org, def.Path, id, rel.Name, string(panel.ActionConnect)),
	}
	if v.ConnectOpen {
		v.AttrControls = attrControls(rel, staged.Attributes, st.attrErr)
		v.Candidates = h.candidates(ctx, sp)
	}

	for _, item := range sp.Items {
		row := rowView{Item: item}
		if sp.Target != nil {
			row.Link = routes.EntityDetail(org, sp.Target.Path, item.ID)
		}
		raw := map[string]string{}
		for _, a := range rel.Attributes {
			value := form.FormatValue(a, item.Attributes[a.Name])
			raw[a.Name] = value
			if value != "" {
				row.Attributes = append(row.Attributes, description{Label: a.Label, Value: value})
			}
		}
		target := &uistate.Staged{Relation: rel.Name, TargetID: item.ID, Attributes: raw}
		if len(rel.Attributes) > 0 {
			row.EditLink = routes.WithQuery(self, uistate.Default().With(uistate.DialogEdgeEdit, target).Query())
		}
		row.RemoveLink = routes.WithQuery(self, uistate.Default().With(uistate.DialogDisconnect, target).Query())

		if st.ui.IsStaged(rel.Name, item.ID) {
			row.EditOpen = st.ui.Dialog(uistate.DialogEdgeEdit) && len(rel.Attributes) > 0
			row.RemoveOpen = st.ui.Dialog(uistate.DialogDisconnect)
			row.EditAction = routes.RelationAction(org, def.Path, id, rel.Name, string(panel.ActionEdge))
			row.RemoveAction = routes.RelationAction(org, def.Path, id, rel.Name, string(panel.ActionDisconnect))
			values := raw
			if len(staged.Attributes) > 0 {
				values = staged.Attributes
			}
			row.EditControls = attrControls(rel, values, st.attrErr)
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// candidates lists targets that are not yet connected.
func (h *Handler) candidates(ctx context.Context, sp *panel.SubPanel) []link {
	if sp.Target == nil {
		return nil
	}
	nodes, err := h.store.List(ctx, sp.Target.Name, graph.Filter{Limit: listLimit})
	if err != nil {
		h.logger.Warn("Candidate lookup failed", "entity", sp.Target.Name, "error", err)
		return nil
	}
	var out []link
	for _, n := range nodes {
		if slices.ContainsFunc(sp.Items, func(it panel.Item) bool { return it.ID == n.ID }) {
			continue
		}
		out = append(out, link{Label: sp.Target.Title(n.Props), URL: n.ID})
	}
	return out
}

// attrControls binds edge attribute inputs to raw values; a field error is
// shown under the attribute it names.
func attrControls(rel catalog.Relation, raw map[string]string, err error) []form.Control {
	var fe *form.FieldError
	errors.As(err, &fe)
	out := make([]form.Control, 0, len(rel.Attributes))
	for _, a := range rel.Attributes {
		var fieldErr error
		if fe != nil && fe.Field == a.Name {
			fieldErr = fe
		}
		var rawValue *string
		if v, ok := raw[a.Name]; ok {
			rawValue = &v
		}
		out = append(out, form.Bind(a, rawValue, fieldErr, nil))
	}
	return out
}

// --------------------------------------------------------------------------
// Entity mutations
// --------------------------------------------------------------------------

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	def, ok := h.entityFromPath(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	// Updates never create; new entities go through create.
	if _, err := h.store.Get(r.Context(), def.Name, id); err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Update lookup failed", "entity", def.Name, "id", id, "error", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	res := (&form.Controller{Fields: def.Fields}).Parse(r.PostForm)
	st := pageState{ui: uistate.Default(), scalars: res}
	if !res.Valid() {
		h.renderEntity(w, r, def, id, http.StatusUnprocessableEntity, st)
		return
	}
	if _, err := h.store.Save(r.Context(), def.Name, id, res.Values); err != nil {
		h.logger.Error("Update failed", "entity", def.Name, "id", id, "error", err)
		st.formError = err.Error()
		h.renderEntity(w, r, def, id, statusFor(err), st)
		return
	}
	redirect(w, r, routes.EntityDetail(chi.URLParam(r, "org"), def.Path, id))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	def, ok := h.entityFromPath(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	info, err := h.store.Delete(r.Context(), def.Name, id)
	if err != nil {
		h.logger.Error("Delete failed", "entity", def.Name, "id", id, "error", err)
		h.renderEntity(w, r, def, id, statusFor(err), pageState{ui: uistate.Default(), formError: err.Error()})
		return
	}
	h.logger.Info("Entity deleted", "entity", def.Name, "id", id, "relationships", info.RelationshipsDeleted)
	redirect(w, r, routes.EntityList(chi.URLParam(r, "org"), def.Path))
}

// relationAction applies one sub-panel action. On failure the page is
// rendered again with the error in that sub-panel only and the dialog still
// open with the submitted values.
func (h *Handler) relationAction(w http.ResponseWriter, r *http.Request) {
	def, ok := h.entityFromPath(w, r)
	if !ok {
		return
	}
	org, id := chi.URLParam(r, "org"), chi.URLParam(r, "id")
	rel, ok := def.Relation(chi.URLParam(r, "relation"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	m := panel.Mutation{
		Relation:   rel.Name,
		Action:     panel.Action(chi.URLParam(r, "action")),
		TargetID:   r.PostForm.Get("target"),
		Attributes: submittedAttributes(rel, r.PostForm),
	}

	sp, err := h.engine.Mutate(r.Context(), def.Name, id, m)
	if err == nil {
		q := url.Values{"updated": {rel.Name}}
		redirect(w, r, routes.WithQuery(routes.EntityDetail(org, def.Path, id), q))
		return
	}

	h.logger.Warn("Relation action failed", "entity", def.Name, "id", id,
		"relation", rel.Name, "action", m.Action, "error", err)
	ui := uistate.Default()
	switch m.Action {
	case panel.ActionConnect:
		ui.SetDialog(uistate.DialogConnect, true)
	case panel.ActionEdge:
		ui.SetDialog(uistate.DialogEdgeEdit, true)
	}
	ui.Stage(uistate.Staged{Relation: rel.Name, TargetID: m.TargetID, Attributes: m.Attributes})
	h.renderEntity(w, r, def, id, statusFor(err), pageState{ui: ui, failed: sp, attrErr: err})
}

// submittedAttributes collects edge attribute values from a form. An
// unchecked checkbox is not submitted at all, so booleans are always read.
func submittedAttributes(rel catalog.Relation, values url.Values) map[string]string {
	out := map[string]string{}
	for _, a := range rel.Attributes {
		if a.Kind == catalog.KindBool {
			out[a.Name] = values.Get(a.Name)
			continue
		}
		if _, ok := values[a.Name]; ok {
			out[a.Name] = values.Get(a.Name)
		}
	}
	return out
}
