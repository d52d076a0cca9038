// Package memstore is an in-memory graph.Store used by tests and by the
// API's --memory development mode.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

type nodeKey struct {
	entity string
	id     string
}

// edgeKey is stored in the OUT direction of the relation type.
type edgeKey struct {
	from    nodeKey
	to      nodeKey
	relType string
}

// Store keeps nodes and edges in maps guarded by a single RWMutex.
type Store struct {
	cat   *catalog.Catalog
	mu    sync.RWMutex
	nodes map[nodeKey]map[string]any
	edges map[edgeKey]map[string]any
}

// New creates an empty store for the given catalogue.
func New(cat *catalog.Catalog) *Store {
	return &Store{
		cat:   cat,
		nodes: make(map[nodeKey]map[string]any),
		edges: make(map[edgeKey]map[string]any),
	}
}

var _ graph.Store = (*Store)(nil)

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Get(ctx context.Context, entity, id string) (*graph.Node, error) {
	def, _, err := graph.Lookup(s.cat, entity, "")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	props, ok := s.nodes[nodeKey{entity, id}]
	if !ok {
		return nil, graph.ErrNotFound
	}
	return graph.NodeFromProps(def, props), nil
}

func (s *Store) List(ctx context.Context, entity string, f graph.Filter) ([]*graph.Node, error) {
	def, _, err := graph.Lookup(s.cat, entity, "")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*graph.Node
	if len(f.IDs) > 0 {
		for _, id := range f.IDs {
			if props, ok := s.nodes[nodeKey{entity, id}]; ok {
				out = append(out, graph.NodeFromProps(def, props))
			}
		}
	} else {
		for k, props := range s.nodes {
			if k.entity == entity {
				out = append(out, graph.NodeFromProps(def, props))
			}
		}
	}
	sortNodes(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
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
	s.mu.Lock()
	defer s.mu.Unlock()
	k := nodeKey{entity, id}
	current, ok := s.nodes[k]
	if !ok {
		current = make(map[string]any, len(props)+1)
		s.nodes[k] = current
	}
	maps.Copy(current, props)
	current[def.IDField()] = id
	return graph.NodeFromProps(def, current), nil
}

func (s *Store) Delete(ctx context.Context, entity, id string) (graph.DeleteInfo, error) {
	if _, _, err := graph.Lookup(s.cat, entity, ""); err != nil {
		return graph.DeleteInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := nodeKey{entity, id}
	if _, ok := s.nodes[k]; !ok {
		return graph.DeleteInfo{}, nil
	}
	info := graph.DeleteInfo{NodesDeleted: 1}
	for ek := range s.edges {
		if ek.from == k || ek.to == k {
			delete(s.edges, ek)
			info.RelationshipsDeleted++
		}
	}
	delete(s.nodes, k)
	return info, nil
}

func (s *Store) Related(ctx context.Context, entity, id, relation string) ([]graph.Edge, error) {
	_, rel, err := graph.Lookup(s.cat, entity, relation)
	if err != nil {
		return nil, err
	}
	target, _ := s.cat.Entity(rel.Target)

	s.mu.RLock()
	defer s.mu.RUnlock()
	self := nodeKey{entity, id}
	if _, ok := s.nodes[self]; !ok {
		return nil, graph.ErrNotFound
	}

	var out []graph.Edge
	for ek, props := range s.edges {
		if ek.relType != rel.Type {
			continue
		}
		var other nodeKey
		switch {
		case rel.Direction == catalog.Out && ek.from == self:
			other = ek.to
		case rel.Direction == catalog.In && ek.to == self:
			other = ek.from
		default:
			continue
		}
		if other.entity != rel.Target {
			continue
		}
		out = append(out, graph.Edge{
			Node:  graph.NodeFromProps(target, s.nodes[other]),
			Props: maps.Clone(props),
		})
	}
	slices.SortFunc(out, func(a, b graph.Edge) int {
		if a.Node.ID < b.Node.ID {
			return -1
		}
		if a.Node.ID > b.Node.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *Store) Connect(ctx context.Context, entity, id, relation, targetID string, props map[string]any) error {
	def, rel, err := graph.Lookup(s.cat, entity, relation)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	self := nodeKey{entity, id}
	other := nodeKey{rel.Target, targetID}
	if _, ok := s.nodes[self]; !ok {
		return fmt.Errorf("connect %s.%s: %s %s: %w", entity, relation, entity, id, graph.ErrNotFound)
	}
	if _, ok := s.nodes[other]; !ok {
		return fmt.Errorf("connect %s.%s: %s %s: %w", entity, relation, rel.Target, targetID, graph.ErrNotFound)
	}

	ek := orient(rel, self, other)
	if !rel.IsMany() {
		s.dropOthers(rel, self, ek)
	}
	if _, inv, ok := s.cat.Inverse(def, rel); ok && !inv.IsMany() {
		s.dropOthers(inv, other, ek)
	}
	current, ok := s.edges[ek]
	if !ok {
		current = make(map[string]any, len(props))
		s.edges[ek] = current
	}
	maps.Copy(current, props)
	return nil
}

// dropOthers removes every edge of rel held by owner except keep. Callers
// hold s.mu.
func (s *Store) dropOthers(rel catalog.Relation, owner nodeKey, keep edgeKey) {
	for existing := range s.edges {
		if existing.relType != rel.Type || existing == keep {
			continue
		}
		if rel.Direction == catalog.Out && existing.from == owner && existing.to.entity == rel.Target {
			delete(s.edges, existing)
		}
		if rel.Direction == catalog.In && existing.to == owner && existing.from.entity == rel.Target {
			delete(s.edges, existing)
		}
	}
}

func (s *Store) Disconnect(ctx context.Context, entity, id, relation, targetID string) error {
	_, rel, err := graph.Lookup(s.cat, entity, relation)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, orient(rel, nodeKey{entity, id}, nodeKey{rel.Target, targetID}))
	return nil
}

func orient(rel catalog.Relation, self, other nodeKey) edgeKey {
	if rel.Direction == catalog.In {
		return edgeKey{from: other, to: self, relType: rel.Type}
	}
	return edgeKey{from: self, to: other, relType: rel.Type}
}

func sortNodes(nodes []*graph.Node) {
	slices.SortFunc(nodes, func(a, b *graph.Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
