// Package panel is the relation panel engine. For any entity in the
// catalogue it builds one sub-panel per declared relation, and applies
// connect/disconnect/edge-edit mutations per sub-panel. Sub-panels load and
// mutate independently: a failure is recorded on the sub-panel that owns it
// and never reaches its siblings.
package panel

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/form"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

// Item is one related entity as shown in a sub-panel.
type Item struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// SubPanel is the view of one relation of the page entity.
type SubPanel struct {
	Relation catalog.Relation `json:"relation"`
	Target   *catalog.Entity  `json:"-"`
	Items    []Item           `json:"items"`
	Err      error            `json:"-"`
	Notice   string           `json:"notice,omitempty"`
}

// Empty reports whether the relation has no targets.
func (s *SubPanel) Empty() bool { return len(s.Items) == 0 }

// CanAdd reports whether the add affordance is offered. A single-cardinality
// relation offers it only while empty; connecting replaces, so the add
// control doubles as "change" once filled.
func (s *SubPanel) CanAdd() bool { return s.Relation.IsMany() || s.Empty() }

// HasAttributes reports whether edges of this relation carry attributes.
func (s *SubPanel) HasAttributes() bool { return len(s.Relation.Attributes) > 0 }

// Error returns the sub-panel's error text, if any.
func (s *SubPanel) Error() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Panel groups the sub-panels of one entity instance, in catalogue order.
type Panel struct {
	Entity    *catalog.Entity `json:"-"`
	ID        string          `json:"id"`
	SubPanels []*SubPanel     `json:"subPanels"`
}

// SubPanel returns the sub-panel of the named relation, or nil.
func (p *Panel) SubPanel(relation string) *SubPanel {
	for _, s := range p.SubPanels {
		if s.Relation.Name == relation {
			return s
		}
	}
	return nil
}

// Engine builds and mutates panels against a graph store.
type Engine struct {
	store graph.Store
	cat   *catalog.Catalog
	limit int
}

// New creates an engine. At most four sub-panels hit the store at once.
func New(store graph.Store, cat *catalog.Catalog) *Engine {
	return &Engine{store: store, cat: cat, limit: 4}
}

// Load builds the panel of one entity instance. Relations found in preloaded
// are used as given; the rest are fetched concurrently. Only an unknown
// entity type fails the whole panel.
func (e *Engine) Load(ctx context.Context, entity, id string, preloaded map[string][]graph.Edge) (*Panel, error) {
	def, ok := e.cat.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrUnknownEntity, entity)
	}
	p := &Panel{Entity: def, ID: id, SubPanels: make([]*SubPanel, len(def.Relations))}

	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, rel := range def.Relations {
		target, _ := e.cat.Entity(rel.Target)
		sp := &SubPanel{Relation: rel, Target: target, Items: []Item{}}
		p.SubPanels[i] = sp
		if edges, ok := preloaded[rel.Name]; ok {
			sp.Items = items(target, edges)
			continue
		}
		g.Go(func() error {
			e.reload(ctx, def, id, sp)
			return nil
		})
	}
	_ = g.Wait()
	return p, nil
}

func (e *Engine) reload(ctx context.Context, def *catalog.Entity, id string, sp *SubPanel) {
	edges, err := e.store.Related(ctx, def.Name, id, sp.Relation.Name)
	if err != nil {
		sp.Err = fmt.Errorf("load %s: %w", sp.Relation.Label, err)
		return
	}
	sp.Items = items(sp.Target, edges)
}

func items(target *catalog.Entity, edges []graph.Edge) []Item {
	out := make([]Item, 0, len(edges))
	for _, edge := range edges {
		out = append(out, Item{
			ID:         edge.Node.ID,
			Title:      target.Title(edge.Node.Props),
			Attributes: edge.Props,
		})
	}
	return out
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// Action is a sub-panel capability.
type Action string

const (
	ActionConnect    Action = "connect"
	ActionDisconnect Action = "disconnect"
	ActionEdge       Action = "edge"
)

// Mutation is one change requested on a sub-panel. Attributes are raw form
// values of the relation's edge attributes.
type Mutation struct {
	Relation   string            `json:"relation"`
	Action     Action            `json:"action"`
	TargetID   string            `json:"targetId"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Result is the outcome of the mutations of one relation.
type Result struct {
	Relation string    `json:"relation"`
	Applied  int       `json:"applied"`
	Err      error     `json:"-"`
	SubPanel *SubPanel `json:"subPanel,omitempty"`
}

var (
	ErrMissingTarget = errors.New("missing target id")
	ErrNotConnected  = errors.New("target is not connected")
	ErrUnknownAction = errors.New("unknown action")
)

// Apply runs mutations grouped by relation. Groups run concurrently;
// mutations within a group run in order and stop at the first failure. Each
// group then re-reads only its own relation. Results follow the order in
// which relations first appear in muts.
func (e *Engine) Apply(ctx context.Context, entity, id string, muts []Mutation) ([]Result, error) {
	def, ok := e.cat.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrUnknownEntity, entity)
	}

	var order []string
	groups := map[string][]Mutation{}
	for _, m := range muts {
		if _, seen := groups[m.Relation]; !seen {
			order = append(order, m.Relation)
		}
		groups[m.Relation] = append(groups[m.Relation], m)
	}

	results := make([]Result, len(order))
	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, name := range order {
		results[i].Relation = name
		g.Go(func() error {
			results[i] = e.applyGroup(ctx, def, id, name, groups[name])
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// Mutate applies a single mutation and returns the refreshed sub-panel with
// the mutation error, if any, recorded on it.
func (e *Engine) Mutate(ctx context.Context, entity, id string, m Mutation) (*SubPanel, error) {
	results, err := e.Apply(ctx, entity, id, []Mutation{m})
	if err != nil {
		return nil, err
	}
	return results[0].SubPanel, results[0].Err
}

func (e *Engine) applyGroup(ctx context.Context, def *catalog.Entity, id, relation string, muts []Mutation) Result {
	res := Result{Relation: relation}
	rel, ok := def.Relation(relation)
	if !ok {
		res.Err = fmt.Errorf("%w: %s.%s", graph.ErrUnknownRelation, def.Name, relation)
		return res
	}
	target, _ := e.cat.Entity(rel.Target)

	for _, m := range muts {
		if err := e.applyOne(ctx, def, id, rel, m); err != nil {
			res.Err = err
			break
		}
		res.Applied++
	}

	sp := &SubPanel{Relation: rel, Target: target, Items: []Item{}}
	e.reload(ctx, def, id, sp)
	if res.Err != nil {
		sp.Err = res.Err
	} else if res.Applied > 0 {
		sp.Notice = fmt.Sprintf("%s updated", rel.Label)
	}
	res.SubPanel = sp
	return res
}

func (e *Engine) applyOne(ctx context.Context, def *catalog.Entity, id string, rel catalog.Relation, m Mutation) error {
	if m.TargetID == "" {
		return ErrMissingTarget
	}
	switch m.Action {
	case ActionConnect:
		attrs, err := parseAttributes(rel, m.Attributes)
		if err != nil {
			return err
		}
		return e.store.Connect(ctx, def.Name, id, rel.Name, m.TargetID, attrs)
	case ActionDisconnect:
		return e.store.Disconnect(ctx, def.Name, id, rel.Name, m.TargetID)
	case ActionEdge:
		attrs, err := parseAttributes(rel, m.Attributes)
		if err != nil {
			return err
		}
		edges, err := e.store.Related(ctx, def.Name, id, rel.Name)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if edge.Node.ID == m.TargetID {
				return e.store.Connect(ctx, def.Name, id, rel.Name, m.TargetID, attrs)
			}
		}
		return fmt.Errorf("%s %s: %w", rel.Label, m.TargetID, ErrNotConnected)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, m.Action)
	}
}

// parseAttributes validates raw edge attribute values. Attributes that were
// not submitted are left untouched on the edge.
func parseAttributes(rel catalog.Relation, raw map[string]string) (map[string]any, error) {
	values := url.Values{}
	for k, v := range raw {
		values.Set(k, v)
	}
	c := &form.Controller{Fields: rel.Attributes, Partial: true}
	res := c.Parse(values)
	if !res.Valid() {
		return nil, res.Err(rel.Attributes)
	}
	return res.Values, nil
}
