// Package seed loads league data from YAML files into the graph store.
package seed

import "fmt"

// SeedResult tracks counts and errors from a seeding operation.
type SeedResult struct {
	NodesUpserted  int
	EdgesConnected int
	Errors         []string
}

// Add merges another SeedResult into this one.
func (r *SeedResult) Add(other SeedResult) {
	r.NodesUpserted += other.NodesUpserted
	r.EdgesConnected += other.EdgesConnected
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records an error message.
func (r *SeedResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *SeedResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf("nodes=%d edges=%d errors=%d", r.NodesUpserted, r.EdgesConnected, len(r.Errors))
}
