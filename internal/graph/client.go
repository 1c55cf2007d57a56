// Package graph runs Cypher against the optional Neo4j mirror of the dashboard's accounts.
package graph

import (
	"context"
	"errors"

	"github.com/vanshika/bunqdash/internal/config"
)

// Client is the query surface the repository needs.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds every record of a query, already consumed.
type Result struct {
	Records []Record
}

// Record maps return column names to values.
type Record map[string]any

// ErrMissingURI is returned when no graph URI is configured.
var ErrMissingURI = errors.New("graph URI is required")

// Enabled reports whether cfg points at a graph database.
func Enabled(cfg config.GraphConfig) bool {
	return cfg.URI != ""
}
