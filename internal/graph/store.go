// Package graph defines the storage contract of the league graph. Entities
// are nodes keyed by their catalogue id field; relations are typed edges that
// may carry attributes. Implementations live in the neo4j and memstore
// sub-packages.
package graph

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
)

var (
	// ErrNotFound is returned when no node matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownEntity is returned for entity names missing from the catalogue.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownRelation is returned for relation names the entity does not declare.
	ErrUnknownRelation = errors.New("unknown relation")
)

// Node is one entity instance. Props always contains the id field.
type Node struct {
	Entity string         `json:"entity"`
	ID     string         `json:"id"`
	Props  map[string]any `json:"props"`
}

// Edge is a related node seen through a relation, with the edge attributes.
type Edge struct {
	Node  *Node          `json:"node"`
	Props map[string]any `json:"props"`
}

// DeleteInfo reports what a delete removed.
type DeleteInfo struct {
	NodesDeleted         int `json:"nodesDeleted"`
	RelationshipsDeleted int `json:"relationshipsDeleted"`
}

// Filter narrows a List call. An empty filter lists everything.
type Filter struct {
	IDs   []string
	Limit int
}

// Store is the query/mutate surface shared by the GraphQL binding and the
// admin relation panels.
type Store interface {
	Get(ctx context.Context, entity, id string) (*Node, error)
	List(ctx context.Context, entity string, f Filter) ([]*Node, error)
	// Save creates the node or merges props into the existing one.
	Save(ctx context.Context, entity, id string, props map[string]any) (*Node, error)
	// Delete removes the node and all its edges.
	Delete(ctx context.Context, entity, id string) (DeleteInfo, error)
	Related(ctx context.Context, entity, id, relation string) ([]Edge, error)
	// Connect creates the edge or merges props into the existing edge. On a
	// single-cardinality relation any previous target is disconnected first.
	Connect(ctx context.Context, entity, id, relation, targetID string, props map[string]any) error
	Disconnect(ctx context.Context, entity, id, relation, targetID string) error
	Ping(ctx context.Context) error
}

// Lookup resolves an entity and one of its relations in the catalogue.
func Lookup(c *catalog.Catalog, entity, relation string) (*catalog.Entity, catalog.Relation, error) {
	def, ok := c.Entity(entity)
	if !ok {
		return nil, catalog.Relation{}, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	if relation == "" {
		return def, catalog.Relation{}, nil
	}
	rel, ok := def.Relation(relation)
	if !ok {
		return nil, catalog.Relation{}, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, entity, relation)
	}
	return def, rel, nil
}

// NodeFromProps builds a Node, taking the id from the entity's id field.
func NodeFromProps(def *catalog.Entity, props map[string]any) *Node {
	n := &Node{Entity: def.Name, Props: maps.Clone(props)}
	if n.Props == nil {
		n.Props = map[string]any{}
	}
	if id, ok := n.Props[def.IDField()]; ok {
		n.ID = fmt.Sprint(id)
	}
	return n
}
