// Package gql exposes the league graph as a GraphQL API. The schema is
// generated from the catalogue: every entity gets a list query named by its
// plural, create/update/delete mutations, a field per relation and a
// <relation>Connection field carrying the edge attributes.
package gql

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

// Schema is the executable GraphQL schema over one store.
type Schema struct {
	schema graphql.Schema
	store  graph.Store
	cat    *catalog.Catalog
}

// Option configures a Schema.
type Option func(*builder)

// WithIDGenerator replaces the uuid generator used for created nodes
// submitted without an id.
func WithIDGenerator(fn func() string) Option {
	return func(b *builder) { b.newID = fn }
}

// New builds the schema for cat, resolving against store.
func New(store graph.Store, cat *catalog.Catalog, opts ...Option) (*Schema, error) {
	b := &builder{
		cat:     cat,
		store:   store,
		newID:   uuid.NewString,
		objects: map[string]*graphql.Object{},
		wheres:  map[string]*graphql.InputObject{},
	}
	for _, o := range opts {
		o(b)
	}
	schema, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	return &Schema{schema: schema, store: store, cat: cat}, nil
}

type builder struct {
	cat     *catalog.Catalog
	store   graph.Store
	newID   func() string
	objects map[string]*graphql.Object
	wheres  map[string]*graphql.InputObject
}

func (b *builder) build() (graphql.Schema, error) {
	// Objects reference each other through relations, so every object and
	// where input is declared before any field thunk runs.
	for _, def := range b.cat.Entities() {
		b.objects[def.Name] = graphql.NewObject(graphql.ObjectConfig{
			Name:   def.Name,
			Fields: b.objectFields(def),
		})
		b.wheres[def.Name] = graphql.NewInputObject(graphql.InputObjectConfig{
			Name: def.Name + "Where",
			Fields: graphql.InputObjectConfigFieldMap{
				def.IDField():         &graphql.InputObjectFieldConfig{Type: graphql.ID},
				def.IDField() + "_IN": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
			},
		})
	}

	deleteInfo := graphql.NewObject(graphql.ObjectConfig{
		Name: "DeleteInfo",
		Fields: graphql.Fields{
			"nodesDeleted":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"relationshipsDeleted": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	query := graphql.Fields{}
	mutation := graphql.Fields{}
	for _, def := range b.cat.Entities() {
		list := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.objects[def.Name])))
		where := b.wheres[def.Name]

		query[def.Plural] = &graphql.Field{
			Type:    list,
			Args:    graphql.FieldConfigArgument{"where": {Type: where}},
			Resolve: b.resolveList(def),
		}

		plural := upperFirst(def.Plural)
		mutation["create"+plural] = &graphql.Field{
			Type: b.response("Create"+plural+"MutationResponse", def.Plural, list),
			Args: graphql.FieldConfigArgument{
				"input": {Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.createInput(def))))},
			},
			Resolve: b.resolveCreate(def),
		}

		updateArgs := graphql.FieldConfigArgument{"where": {Type: where}}
		if len(def.Fields) > 0 {
			updateArgs["update"] = &graphql.ArgumentConfig{Type: b.updateInput(def)}
		}
		if len(def.Relations) > 0 {
			updateArgs["connect"] = &graphql.ArgumentConfig{Type: b.connectInput(def)}
			updateArgs["disconnect"] = &graphql.ArgumentConfig{Type: b.disconnectInput(def)}
		}
		mutation["update"+plural] = &graphql.Field{
			Type:    b.response("Update"+plural+"MutationResponse", def.Plural, list),
			Args:    updateArgs,
			Resolve: b.resolveUpdate(def),
		}

		mutation["delete"+plural] = &graphql.Field{
			Type:    graphql.NewNonNull(deleteInfo),
			Args:    graphql.FieldConfigArgument{"where": {Type: where}},
			Resolve: b.resolveDelete(def),
		}
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: query}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutation}),
	})
}

// --------------------------------------------------------------------------
// Output types
// --------------------------------------------------------------------------

func (b *builder) objectFields(def *catalog.Entity) graphql.FieldsThunk {
	return func() graphql.Fields {
		fields := graphql.Fields{
			def.IDField(): &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		}
		for _, f := range def.Fields {
			fields[f.Name] = &graphql.Field{Type: scalar(f.Kind), Description: f.Label}
		}
		for _, rel := range def.Relations {
			target := b.objects[rel.Target]
			var t graphql.Output = target
			if rel.IsMany() {
				t = graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(target)))
			}
			fields[rel.Name] = &graphql.Field{
				Type:        t,
				Description: rel.Label,
				Resolve:     b.resolveRelation(def, rel),
			}
			fields[rel.Name+"Connection"] = &graphql.Field{
				Type:    graphql.NewNonNull(b.connection(def, rel)),
				Resolve: b.resolveConnection(def, rel),
			}
		}
		return fields
	}
}

func (b *builder) connection(def *catalog.Entity, rel catalog.Relation) *graphql.Object {
	prefix := def.Name + upperFirst(rel.Name)
	edgeFields := graphql.Fields{
		"node": &graphql.Field{Type: graphql.NewNonNull(b.objects[rel.Target])},
	}
	for _, a := range rel.Attributes {
		edgeFields[a.Name] = &graphql.Field{Type: scalar(a.Kind), Description: a.Label}
	}
	edge := graphql.NewObject(graphql.ObjectConfig{Name: prefix + "Relationship", Fields: edgeFields})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: prefix + "Connection",
		Fields: graphql.Fields{
			"edges":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(edge)))},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

func (b *builder) response(name, field string, list graphql.Output) *graphql.NonNull {
	return graphql.NewNonNull(graphql.NewObject(graphql.ObjectConfig{
		Name:   name,
		Fields: graphql.Fields{field: &graphql.Field{Type: list}},
	}))
}

// --------------------------------------------------------------------------
// Input types
// --------------------------------------------------------------------------

func (b *builder) createInput(def *catalog.Entity) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{
		def.IDField(): &graphql.InputObjectFieldConfig{Type: graphql.ID},
	}
	for _, f := range def.Fields {
		var t graphql.Input = scalar(f.Kind)
		if f.Required {
			t = graphql.NewNonNull(t)
		}
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: t, Description: f.Label}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: def.Name + "CreateInput", Fields: fields})
}

func (b *builder) updateInput(def *catalog.Entity) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range def.Fields {
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: scalar(f.Kind), Description: f.Label}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: def.Name + "UpdateInput", Fields: fields})
}

func (b *builder) connectInput(def *catalog.Entity) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, rel := range def.Relations {
		prefix := def.Name + upperFirst(rel.Name)
		where := graphql.NewInputObject(graphql.InputObjectConfig{
			Name: prefix + "ConnectWhere",
			Fields: graphql.InputObjectConfigFieldMap{
				"node": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(b.wheres[rel.Target])},
			},
		})
		item := graphql.InputObjectConfigFieldMap{
			"where": &graphql.InputObjectFieldConfig{Type: where},
		}
		if len(rel.Attributes) > 0 {
			item["edge"] = &graphql.InputObjectFieldConfig{Type: b.edgeInput(prefix, rel)}
		}
		fields[rel.Name] = &graphql.InputObjectFieldConfig{
			Type: graphql.NewList(graphql.NewNonNull(graphql.NewInputObject(graphql.InputObjectConfig{
				Name:   prefix + "ConnectFieldInput",
				Fields: item,
			}))),
		}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: def.Name + "ConnectInput", Fields: fields})
}

func (b *builder) disconnectInput(def *catalog.Entity) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, rel := range def.Relations {
		prefix := def.Name + upperFirst(rel.Name)
		where := graphql.NewInputObject(graphql.InputObjectConfig{
			Name: prefix + "DisconnectWhere",
			Fields: graphql.InputObjectConfigFieldMap{
				"node": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(b.wheres[rel.Target])},
			},
		})
		fields[rel.Name] = &graphql.InputObjectFieldConfig{
			Type: graphql.NewList(graphql.NewNonNull(graphql.NewInputObject(graphql.InputObjectConfig{
				Name: prefix + "DisconnectFieldInput",
				Fields: graphql.InputObjectConfigFieldMap{
					"where": &graphql.InputObjectFieldConfig{Type: where},
				},
			}))),
		}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: def.Name + "DisconnectInput", Fields: fields})
}

func (b *builder) edgeInput(prefix string, rel catalog.Relation) *graphql.InputObject {
	fields := graphql.InputObjectConfigFieldMap{}
	for _, a := range rel.Attributes {
		fields[a.Name] = &graphql.InputObjectFieldConfig{Type: scalar(a.Kind), Description: a.Label}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: prefix + "EdgeInput", Fields: fields})
}

func scalar(k catalog.Kind) *graphql.Scalar {
	switch k {
	case catalog.KindInt:
		return graphql.Int
	case catalog.KindFloat:
		return graphql.Float
	case catalog.KindBool:
		return graphql.Boolean
	default:
		return graphql.String
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
