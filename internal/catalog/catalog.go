// Package catalog declares the entity types of the league graph, their scalar
// fields and the relations between them. The GraphQL schema, the graph store
// queries and the admin relation panels are all generated from this table.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// --------------------------------------------------------------------------
// Fields
// --------------------------------------------------------------------------

// Kind is the value type of a scalar field or edge attribute.
type Kind string

const (
	KindString   Kind = "string"
	KindText     Kind = "text" // Markdown
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindDate     Kind = "date"     // 2006-01-02
	KindTime     Kind = "time"     // 15:04
	KindDateTime Kind = "datetime" // RFC 3339, UTC
	KindSelect   Kind = "select"
)

// Field describes one scalar attribute of an entity or a relation edge.
type Field struct {
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// IsTemporal reports whether the field is parsed as a date or time.
func (f Field) IsTemporal() bool {
	return f.Kind == KindDate || f.Kind == KindTime || f.Kind == KindDateTime
}

// --------------------------------------------------------------------------
// Relations
// --------------------------------------------------------------------------

// Direction of a relation relative to the entity that declares it.
type Direction string

const (
	Out Direction = "OUT"
	In  Direction = "IN"
)

// Cardinality of a relation as seen from the declaring entity.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Relation is a named edge set of an entity. Attributes are stored on the
// edge itself, not on either node.
type Relation struct {
	Name        string      `json:"relationName" yaml:"relationName"`
	Label       string      `json:"label" yaml:"label"`
	Type        string      `json:"type" yaml:"type"`
	Direction   Direction   `json:"direction" yaml:"direction"`
	Target      string      `json:"target" yaml:"target"`
	Cardinality Cardinality `json:"cardinality" yaml:"cardinality"`
	Attributes  []Field     `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// IsMany reports whether the relation holds more than one target.
func (r Relation) IsMany() bool {
	return r.Cardinality != One
}

// Attribute returns the edge attribute with the given name.
func (r Relation) Attribute(name string) (Field, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Field{}, false
}

// --------------------------------------------------------------------------
// Entities
// --------------------------------------------------------------------------

// Entity is a node type in the league graph.
type Entity struct {
	Name        string     `json:"name" yaml:"name"`
	Plural      string     `json:"plural" yaml:"plural"`
	Path        string     `json:"path" yaml:"path"`
	Fields      []Field    `json:"fields" yaml:"fields"`
	Relations   []Relation `json:"relations" yaml:"relations"`
	TitleFields []string   `json:"-" yaml:"-"`
}

// IDField returns the property holding the entity's stable id, e.g. playerId.
func (e *Entity) IDField() string {
	return strings.ToLower(e.Name[:1]) + e.Name[1:] + "Id"
}

// Field returns the scalar field with the given name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Relation returns the relation with the given name.
func (e *Entity) Relation(name string) (Relation, bool) {
	for _, r := range e.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// Title builds a display title from the entity's title fields.
func (e *Entity) Title(props map[string]any) string {
	parts := make([]string, 0, len(e.TitleFields))
	for _, name := range e.TitleFields {
		if v, ok := props[name]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) == 0 {
		if id, ok := props[e.IDField()]; ok {
			return fmt.Sprint(id)
		}
		return e.Name
	}
	return strings.Join(parts, " ")
}

// --------------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------------

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Catalog is an immutable, validated set of entity definitions.
type Catalog struct {
	entities []*Entity
	byName   map[string]*Entity
	byPath   map[string]*Entity
}

// New validates the entity definitions and builds a catalog. Names and
// relation types end up inside Cypher statements, so they must be plain
// identifiers.
func New(entities ...*Entity) (*Catalog, error) {
	c := &Catalog{
		entities: entities,
		byName:   make(map[string]*Entity, len(entities)),
		byPath:   make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		if !identRe.MatchString(e.Name) {
			return nil, fmt.Errorf("entity name %q is not an identifier", e.Name)
		}
		if !identRe.MatchString(e.Plural) {
			return nil, fmt.Errorf("entity %s: plural %q is not an identifier", e.Name, e.Plural)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate entity %q", e.Name)
		}
		if _, dup := c.byPath[e.Path]; dup || e.Path == "" {
			return nil, fmt.Errorf("entity %s: path %q is empty or duplicated", e.Name, e.Path)
		}
		c.byName[e.Name] = e
		c.byPath[e.Path] = e

		seen := map[string]bool{e.IDField(): true}
		for _, f := range e.Fields {
			if !identRe.MatchString(f.Name) || seen[f.Name] {
				return nil, fmt.Errorf("entity %s: invalid or duplicate field %q", e.Name, f.Name)
			}
			seen[f.Name] = true
		}
		for _, r := range e.Relations {
			if !identRe.MatchString(r.Name) || seen[r.Name] {
				return nil, fmt.Errorf("entity %s: invalid or duplicate relation %q", e.Name, r.Name)
			}
			if !identRe.MatchString(r.Type) {
				return nil, fmt.Errorf("entity %s: relation %s has invalid type %q", e.Name, r.Name, r.Type)
			}
			if r.Direction != Out && r.Direction != In {
				return nil, fmt.Errorf("entity %s: relation %s has invalid direction %q", e.Name, r.Name, r.Direction)
			}
			seen[r.Name] = true
		}
	}
	for _, e := range entities {
		for _, r := range e.Relations {
			if _, ok := c.byName[r.Target]; !ok {
				return nil, fmt.Errorf("entity %s: relation %s targets unknown entity %q", e.Name, r.Name, r.Target)
			}
		}
	}
	return c, nil
}

// MustNew is New that panics on an invalid definition.
func MustNew(entities ...*Entity) *Catalog {
	c, err := New(entities...)
	if err != nil {
		panic(err)
	}
	return c
}

// Entities returns the entity definitions in declaration order.
func (c *Catalog) Entities() []*Entity {
	return c.entities
}

// Entity looks an entity up by type name (e.g. "Player").
func (c *Catalog) Entity(name string) (*Entity, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// ByPath looks an entity up by its URL path segment (e.g. "players").
func (c *Catalog) ByPath(path string) (*Entity, bool) {
	e, ok := c.byPath[path]
	return e, ok
}

// Inverse returns the relation on the target entity that describes the same
// edges from the other side, if one is declared.
func (c *Catalog) Inverse(owner *Entity, rel Relation) (*Entity, Relation, bool) {
	target, ok := c.byName[rel.Target]
	if !ok {
		return nil, Relation{}, false
	}
	for _, r := range target.Relations {
		if r.Type == rel.Type && r.Target == owner.Name && r.Direction != rel.Direction {
			return target, r, true
		}
	}
	return target, Relation{}, false
}
