package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
	"github.com/vladpavlovski/phm-sub006/internal/form"
	"github.com/vladpavlovski/phm-sub006/internal/graph"
)

// File is a seed document. Nodes are upserted before edges so edges may
// reference any node in the same file.
//
//	nodes:
//	  - entity: Team
//	    id: t1
//	    props: {name: Kladno}
//	edges:
//	  - entity: Player
//	    id: p1
//	    relation: teams
//	    target: t1
//	    props: {jersey: 68}
type File struct {
	Nodes []NodeSpec `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// NodeSpec is one node to upsert.
type NodeSpec struct {
	Entity string         `yaml:"entity"`
	ID     string         `yaml:"id"`
	Props  map[string]any `yaml:"props"`
}

// EdgeSpec connects a node to a target through one of its relations.
type EdgeSpec struct {
	Entity   string         `yaml:"entity"`
	ID       string         `yaml:"id"`
	Relation string         `yaml:"relation"`
	Target   string         `yaml:"target"`
	Props    map[string]any `yaml:"props"`
}

// Decode reads a seed document.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// LoadFile reads a seed document from disk.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Apply upserts every node, then connects every edge. A failing item is
// recorded and skipped; the rest of the file is still applied.
func Apply(ctx context.Context, store graph.Store, cat *catalog.Catalog, f *File, logger *slog.Logger) SeedResult {
	var result SeedResult

	logger.Info("Seeding nodes...", "count", len(f.Nodes))
	for _, n := range f.Nodes {
		if err := ctx.Err(); err != nil {
			result.AddErrorf("seed cancelled: %v", err)
			return result
		}
		def, ok := cat.Entity(n.Entity)
		if !ok {
			result.AddErrorf("node %s/%s: unknown entity", n.Entity, n.ID)
			continue
		}
		if n.ID == "" {
			result.AddErrorf("node %s: missing id", n.Entity)
			continue
		}
		props, err := coerce(def.Fields, n.Props)
		if err != nil {
			result.AddErrorf("node %s/%s: %v", n.Entity, n.ID, err)
			continue
		}
		if _, err := store.Save(ctx, def.Name, n.ID, props); err != nil {
			result.AddErrorf("upsert %s/%s: %v", n.Entity, n.ID, err)
			continue
		}
		result.NodesUpserted++
	}
	logger.Info("Nodes done", "count", result.NodesUpserted)

	logger.Info("Seeding edges...", "count", len(f.Edges))
	for _, e := range f.Edges {
		if err := ctx.Err(); err != nil {
			result.AddErrorf("seed cancelled: %v", err)
			return result
		}
		_, rel, err := graph.Lookup(cat, e.Entity, e.Relation)
		if err != nil {
			result.AddErrorf("edge %s/%s.%s: %v", e.Entity, e.ID, e.Relation, err)
			continue
		}
		props, err := coerce(rel.Attributes, e.Props)
		if err != nil {
			result.AddErrorf("edge %s/%s.%s -> %s: %v", e.Entity, e.ID, e.Relation, e.Target, err)
			continue
		}
		if err := store.Connect(ctx, e.Entity, e.ID, e.Relation, e.Target, props); err != nil {
			result.AddErrorf("connect %s/%s.%s -> %s: %v", e.Entity, e.ID, e.Relation, e.Target, err)
			continue
		}
		result.EdgesConnected++
	}
	logger.Info("Edges done", "count", result.EdgesConnected)

	logger.Info("Seed complete", "summary", result.Summary())
	return result
}

// coerce runs YAML values through the same parsing as form input, so seeded
// dates, numbers and selects are stored exactly as an edit would store them.
func coerce(fields []catalog.Field, in map[string]any) (map[string]any, error) {
	byName := make(map[string]catalog.Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(in))
	for _, k := range keys {
		f, ok := byName[k]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", k)
		}
		v, err := form.ParseValue(f, form.FormatValue(f, in[k]))
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[k] = v
		}
	}
	return out, nil
}
