package neostore

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

// Store is a graph.Store backed by Neo4j.
type Store struct {
	runner Runner
	cat    *catalog.Catalog
	verify func(context.Context) error
}

var _ graph.Store = (*Store)(nil)

// New creates a store. When runner is an *Executor, Ping verifies the driver
// connectivity; otherwise Ping runs a trivial statement.
func New(runner Runner, cat *catalog.Catalog) *Store {
	s := &Store{runner: runner, cat: cat}
	if ex, ok := runner.(*Executor); ok {
		s.verify = ex.Verify
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	if s.verify != nil {
		return s.verify(ctx)
	}
	_, err := s.runner.Run(ctx, "RETURN 1", nil)
	return err
}

// --------------------------------------------------------------------------
// Nodes
// --------------------------------------------------------------------------

func (s *Store) Get(ctx context.Context, entity, id string) (*graph.Node, error) {
	def, _, err := graph.Lookup(s.cat, entity, "")
	if err != nil {
		return nil, err
	}
	query, params, err := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", def.Name).WithProperties(map[string]interface{}{def.IDField(): id})).
		Return("n").
		Build()
	if err != nil {
		return nil, fmt.Errorf("build get %s: %w", entity, err)
	}
	res, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, graph.ErrNotFound
	}
	if len(res.Records) > 1 {
		return nil, fmt.Errorf("get %s %s: expected 1 record but found %d", entity, id, len(res.Records))
	}
	return nodeFromRecord(def, res.Records[0], "n")
}

func (s *Store) List(ctx context.Context, entity string, f graph.Filter) ([]*graph.Node, error) {
	def, _, err := graph.Lookup(s.cat, entity, "")
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("MATCH (n:%s)", def.Name)
	params := map[string]any{}
	if len(f.IDs) > 0 {
		query += fmt.Sprintf(" WHERE n.%s IN $ids", def.IDField())
		params["ids"] = f.IDs
	}
	query += fmt.Sprintf(" RETURN n ORDER BY n.%s", def.IDField())
	if f.Limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = f.Limit
	}

	res, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	out := make([]*graph.Node, 0, len(res.Records))
	for _, rec := range res.Records {
		n, err := nodeFromRecord(def, rec, "n")
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, entity, id string, props map[string]any) (*graph.Node, error) {
	def, _, err := graph.Lookup(s.cat, entity, "")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("save %s: empty id", entity)
	}

	setProps := map[string]interface{}{"n." + def.IDField(): id}
	for k, v := range props {
		if k != def.IDField() {
			setProps["n."+k] = v
		}
	}
	query, params, err := gocypher.NewQueryBuilder().
		Merge(gocypher.N("n", def.Name).WithProperties(map[string]interface{}{def.IDField(): id})).
		Set(setProps).
		Return("n").
		Build()
	if err != nil {
		return nil, fmt.Errorf("build save %s: %w", entity, err)
	}
	res, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("save %s %s: no record returned", entity, id)
	}
	return nodeFromRecord(def, res.Records[0], "n")
}

func (s *Store) Delete(ctx context.Context, entity, id string) (graph.DeleteInfo, error) {
	def, _, err := graph.Lookup(s.cat, entity, "")
	if err != nil {
		return graph.DeleteInfo{}, err
	}
	query := fmt.Sprintf(
		"MATCH (n:%s {%s: $id}) OPTIONAL MATCH (n)-[r]-() WITH n, count(r) AS rels DETACH DELETE n RETURN rels",
		def.Name, def.IDField())
	res, err := s.runner.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return graph.DeleteInfo{}, err
	}
	if len(res.Records) == 0 {
		return graph.DeleteInfo{}, nil
	}
	rels, _ := res.Records[0].Get("rels")
	n, _ := rels.(int64)
	return graph.DeleteInfo{NodesDeleted: 1, RelationshipsDeleted: int(n)}, nil
}

// --------------------------------------------------------------------------
// Edges
// --------------------------------------------------------------------------

// pattern renders (n:Owner {id: $id})-[r:TYPE]->(m:Target) honoring the
// relation direction.
func pattern(def *catalog.Entity, rel catalog.Relation, target *catalog.Entity, targetProps string) string {
	self := fmt.Sprintf("(n:%s {%s: $id})", def.Name, def.IDField())
	other := fmt.Sprintf("(m:%s%s)", target.Name, targetProps)
	if rel.Direction == catalog.In {
		return fmt.Sprintf("%s<-[r:%s]-%s", self, rel.Type, other)
	}
	return fmt.Sprintf("%s-[r:%s]->%s", self, rel.Type, other)
}

func (s *Store) Related(ctx context.Context, entity, id, relation string) ([]graph.Edge, error) {
	def, rel, err := graph.Lookup(s.cat, entity, relation)
	if err != nil {
		return nil, err
	}
	target, _ := s.cat.Entity(rel.Target)

	// A missing source yields no rows; a source without edges yields one row
	// with null m.
	query := fmt.Sprintf("MATCH (n:%s {%s: $id}) OPTIONAL MATCH %s RETURN m, r ORDER BY m.%s",
		def.Name, def.IDField(), link("n", "r", rel, "m:"+target.Name), target.IDField())

	res, err := s.runner.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, graph.ErrNotFound
	}
	out := make([]graph.Edge, 0, len(res.Records))
	for _, rec := range res.Records {
		mv, _ := rec.Get("m")
		if mv == nil {
			continue
		}
		n, err := nodeFromRecord(target, rec, "m")
		if err != nil {
			return nil, err
		}
		e := graph.Edge{Node: n, Props: map[string]any{}}
		if rv, ok := rec.Get("r"); ok {
			if r, ok := rv.(neo4j.Relationship); ok {
				e.Props = maps.Clone(r.Props)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// Connect merges the edge in one statement. Before the MERGE it drops any
// other edge that would break a single-cardinality limit, on the declaring
// side (n already has another target) or on the inverse side (m already has
// another owner).
func (s *Store) Connect(ctx context.Context, entity, id, relation, targetID string, props map[string]any) error {
	def, rel, err := graph.Lookup(s.cat, entity, relation)
	if err != nil {
		return err
	}
	target, _ := s.cat.Entity(rel.Target)
	if props == nil {
		props = map[string]any{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (n:%s {%s: $id}), (m:%s {%s: $targetId}) WITH n, m",
		def.Name, def.IDField(), target.Name, target.IDField())
	if !rel.IsMany() {
		fmt.Fprintf(&b, " OPTIONAL MATCH %s WHERE o.%s <> $targetId"+
			" WITH n, m, collect(old) AS stale FOREACH (x IN stale | DELETE x) WITH n, m",
			link("n", "old", rel, "o:"+target.Name), target.IDField())
	}
	if _, inv, ok := s.cat.Inverse(def, rel); ok && !inv.IsMany() {
		fmt.Fprintf(&b, " OPTIONAL MATCH %s WHERE p.%s <> $id"+
			" WITH n, m, collect(prev) AS taken FOREACH (x IN taken | DELETE x) WITH n, m",
			link("p:"+def.Name, "prev", rel, "m"), def.IDField())
	}
	fmt.Fprintf(&b, " MERGE %s SET r += $props RETURN count(r) AS c", link("n", "r", rel, "m"))

	res, err := s.runner.Run(ctx, b.String(), map[string]any{"id": id, "targetId": targetID, "props": props})
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("connect %s.%s %s -> %s: %w", entity, relation, id, targetID, graph.ErrNotFound)
	}
	if c, _ := res.Records[0].Get("c"); c == int64(0) {
		return fmt.Errorf("connect %s.%s %s -> %s: %w", entity, relation, id, targetID, graph.ErrNotFound)
	}
	return nil
}

// link renders (from)-[r:TYPE]->(to) in the relation's direction, seen from
// the declaring side.
func link(from, r string, rel catalog.Relation, to string) string {
	if rel.Direction == catalog.In {
		return fmt.Sprintf("(%s)<-[%s:%s]-(%s)", from, r, rel.Type, to)
	}
	return fmt.Sprintf("(%s)-[%s:%s]->(%s)", from, r, rel.Type, to)
}

func (s *Store) Disconnect(ctx context.Context, entity, id, relation, targetID string) error {
	def, rel, err := graph.Lookup(s.cat, entity, relation)
	if err != nil {
		return err
	}
	target, _ := s.cat.Entity(rel.Target)
	query := fmt.Sprintf("MATCH %s DELETE r",
		pattern(def, rel, target, fmt.Sprintf(" {%s: $targetId}", target.IDField())))
	_, err = s.runner.Run(ctx, query, map[string]any{"id": id, "targetId": targetID})
	return err
}

// --------------------------------------------------------------------------
// Record mapping
// --------------------------------------------------------------------------

func nodeFromRecord(def *catalog.Entity, rec *neo4j.Record, key string) (*graph.Node, error) {
	v, ok := rec.Get(key)
	if !ok {
		return nil, fmt.Errorf("could not find return value %q in query result", key)
	}
	node, ok := v.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("return value %q is not a node", key)
	}
	return graph.NodeFromProps(def, node.Props), nil
}
