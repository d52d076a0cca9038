// Package neostore implements graph.Store on top of the official Neo4j Go
// driver. Node reads and upserts are built with gocypher; edge statements are
// rendered from catalogue identifiers, which the catalogue validates.
package neostore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes one Cypher statement and returns the buffered result.
// Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Executor runs statements through neo4j.ExecuteQuery, which manages
// sessions, transactions and retries of transient failures.
type Executor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewExecutor creates a driver for uri with basic auth.
func NewExecutor(uri, username, password, dbName string) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Executor{Driver: driver, DBName: dbName}, nil
}

// Verify checks connectivity to the server.
func (e *Executor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connection pool.
func (e *Executor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, e.Driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		return nil, fmt.Errorf("execute neo4j query: %w", err)
	}
	return result, nil
}
