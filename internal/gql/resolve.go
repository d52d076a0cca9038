package gql

import (
	"context"
	"fmt"
	"slices"

	"github.com/graphql-go/graphql"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/form"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

func (b *builder) resolveList(def *catalog.Entity) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		nodes, err := b.match(p.Context, def, p.Args["where"])
		if err != nil {
			return nil, err
		}
		return propsOf(nodes), nil
	}
}

func (b *builder) resolveRelation(def *catalog.Entity, rel catalog.Relation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		edges, err := b.store.Related(p.Context, def.Name, sourceID(def, p.Source), rel.Name)
		if err != nil {
			return nil, err
		}
		if !rel.IsMany() {
			if len(edges) == 0 {
				return nil, nil
			}
			return edges[0].Node.Props, nil
		}
		out := make([]map[string]any, 0, len(edges))
		for _, e := range edges {
			out = append(out, e.Node.Props)
		}
		return out, nil
	}
}

func (b *builder) resolveConnection(def *catalog.Entity, rel catalog.Relation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		edges, err := b.store.Related(p.Context, def.Name, sourceID(def, p.Source), rel.Name)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(edges))
		for _, e := range edges {
			m := make(map[string]any, len(e.Props)+1)
			for _, a := range rel.Attributes {
				if v, ok := e.Props[a.Name]; ok {
					m[a.Name] = v
				}
			}
			m["node"] = e.Node.Props
			out = append(out, m)
		}
		return map[string]any{"edges": out, "totalCount": len(out)}, nil
	}
}

func sourceID(def *catalog.Entity, src any) string {
	if m, ok := src.(map[string]any); ok {
		if v, ok := m[def.IDField()]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// match lists the nodes selected by a where argument. A missing where
// selects every node of the entity.
func (b *builder) match(ctx context.Context, def *catalog.Entity, where any) ([]*graph.Node, error) {
	ids, all := whereIDs(def, where)
	if !all && len(ids) == 0 {
		return nil, nil
	}
	return b.store.List(ctx, def.Name, graph.Filter{IDs: ids})
}

// whereIDs reads {<id>, <id>_IN} from a where input. all is true when the
// input places no constraint. When both keys are set the id must also be
// listed in _IN.
func whereIDs(def *catalog.Entity, where any) (ids []string, all bool) {
	w, _ := where.(map[string]any)
	key := def.IDField()
	one, hasOne := w[key]
	in, hasIn := w[key+"_IN"].([]any)
	hasOne = hasOne && one != nil

	var inIDs []string
	for _, v := range in {
		inIDs = append(inIDs, fmt.Sprint(v))
	}
	switch {
	case hasOne && hasIn:
		if id := fmt.Sprint(one); slices.Contains(inIDs, id) {
			return []string{id}, false
		}
		return nil, false
	case hasOne:
		return []string{fmt.Sprint(one)}, false
	case hasIn:
		return inIDs, false
	default:
		return nil, true
	}
}

func propsOf(nodes []*graph.Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Props)
	}
	return out
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

func (b *builder) resolveCreate(def *catalog.Entity) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		inputs, _ := p.Args["input"].([]any)
		created := make([]map[string]any, 0, len(inputs))
		for _, raw := range inputs {
			in, _ := raw.(map[string]any)
			id := b.newID()
			if v, ok := in[def.IDField()]; ok && v != nil && fmt.Sprint(v) != "" {
				id = fmt.Sprint(v)
			}
			props, err := coerceAll(def.Fields, in)
			if err != nil {
				return nil, err
			}
			n, err := b.store.Save(p.Context, def.Name, id, props)
			if err != nil {
				return nil, fmt.Errorf("create %s: %w", def.Name, err)
			}
			created = append(created, n.Props)
		}
		return map[string]any{def.Plural: created}, nil
	}
}

// resolveUpdate applies update, then disconnect, then connect to every
// matched node. Disconnecting before connecting lets one call move an edge.
func (b *builder) resolveUpdate(def *catalog.Entity) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		ctx := p.Context
		nodes, err := b.match(ctx, def, p.Args["where"])
		if err != nil {
			return nil, err
		}
		update, _ := p.Args["update"].(map[string]any)
		props, err := coerceAll(def.Fields, update)
		if err != nil {
			return nil, err
		}
		disconnect, _ := p.Args["disconnect"].(map[string]any)
		connect, _ := p.Args["connect"].(map[string]any)

		ids := make([]string, 0, len(nodes))
		for _, n := range nodes {
			if len(props) > 0 {
				if _, err := b.store.Save(ctx, def.Name, n.ID, props); err != nil {
					return nil, fmt.Errorf("update %s %s: %w", def.Name, n.ID, err)
				}
			}
			if err := b.disconnect(ctx, def, n.ID, disconnect); err != nil {
				return nil, err
			}
			if err := b.connect(ctx, def, n.ID, connect); err != nil {
				return nil, err
			}
			ids = append(ids, n.ID)
		}

		if len(ids) == 0 {
			return map[string]any{def.Plural: []map[string]any{}}, nil
		}
		updated, err := b.store.List(ctx, def.Name, graph.Filter{IDs: ids})
		if err != nil {
			return nil, err
		}
		return map[string]any{def.Plural: propsOf(updated)}, nil
	}
}

func (b *builder) connect(ctx context.Context, def *catalog.Entity, id string, arg map[string]any) error {
	for _, rel := range def.Relations {
		items, _ := arg[rel.Name].([]any)
		target, _ := b.cat.Entity(rel.Target)
		for _, raw := range items {
			item, _ := raw.(map[string]any)
			targets, err := connectTargets(target, item)
			if err != nil {
				return fmt.Errorf("connect %s: %w", rel.Name, err)
			}
			edge, _ := item["edge"].(map[string]any)
			attrs, err := coerceAll(rel.Attributes, edge)
			if err != nil {
				return err
			}
			for _, tid := range targets {
				if err := b.store.Connect(ctx, def.Name, id, rel.Name, tid, attrs); err != nil {
					return fmt.Errorf("connect %s %s: %w", rel.Name, tid, err)
				}
			}
		}
	}
	return nil
}

func (b *builder) disconnect(ctx context.Context, def *catalog.Entity, id string, arg map[string]any) error {
	for _, rel := range def.Relations {
		items, _ := arg[rel.Name].([]any)
		target, _ := b.cat.Entity(rel.Target)
		for _, raw := range items {
			item, _ := raw.(map[string]any)
			targets, err := connectTargets(target, item)
			if err != nil {
				return fmt.Errorf("disconnect %s: %w", rel.Name, err)
			}
			for _, tid := range targets {
				if err := b.store.Disconnect(ctx, def.Name, id, rel.Name, tid); err != nil {
					return fmt.Errorf("disconnect %s %s: %w", rel.Name, tid, err)
				}
			}
		}
	}
	return nil
}

// connectTargets reads where.node of a connect or disconnect item. Edges are
// only ever made to explicitly named targets.
func connectTargets(target *catalog.Entity, item map[string]any) ([]string, error) {
	where, _ := item["where"].(map[string]any)
	ids, all := whereIDs(target, where["node"])
	if all {
		return nil, fmt.Errorf("where.node.%s is required", target.IDField())
	}
	return ids, nil
}

func (b *builder) resolveDelete(def *catalog.Entity) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		nodes, err := b.match(p.Context, def, p.Args["where"])
		if err != nil {
			return nil, err
		}
		var total graph.DeleteInfo
		for _, n := range nodes {
			info, err := b.store.Delete(p.Context, def.Name, n.ID)
			if err != nil {
				return nil, fmt.Errorf("delete %s %s: %w", def.Name, n.ID, err)
			}
			total.NodesDeleted += info.NodesDeleted
			total.RelationshipsDeleted += info.RelationshipsDeleted
		}
		return map[string]any{
			"nodesDeleted":         total.NodesDeleted,
			"relationshipsDeleted": total.RelationshipsDeleted,
		}, nil
	}
}

// coerceAll keeps the submitted values of fields and normalises temporal and
// select values the same way the admin forms do. Keys not in fields are
// dropped.
func coerceAll(fields []catalog.Field, in map[string]any) (map[string]any, error) {
	out := map[string]any{}
	for _, f := range fields {
		v, ok := in[f.Name]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if v == nil || !isString || (!f.IsTemporal() && f.Kind != catalog.KindSelect) {
			out[f.Name] = v
			continue
		}
		parsed, err := form.ParseValue(f, s)
		if err != nil {
			return nil, err
		}
		out[f.Name] = parsed
	}
	return out, nil
}
