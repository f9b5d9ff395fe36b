// Package spanstore persists and queries the spans the ingestion front
// accepts, backing the graph builder and read surface (spec §4.A).
package spanstore

import (
	"context"
	"time"

	"github.com/archlens/archlens/pkg/spanmodel"
)

// QueryOptions narrows a span query. Zero values mean "no constraint" for
// TraceID/ServiceName/Filter, and a zero Limit means "use the store's
// default cap".
type QueryOptions struct {
	TraceID     string
	ServiceName string
	Since       time.Time
	Until       time.Time
	// Filter is an optional jq-style expression (github.com/itchyny/gojq)
	// evaluated against each candidate span; only spans for which it
	// evaluates to boolean true are returned. Applied in-memory after the SQL
	// predicates narrow the candidate set.
	Filter string
	Limit  int
}

// Store is the span persistence contract. Implementations must be
// idempotent on (tenant_id, span_id): re-ingesting the same span_id
// overwrites rather than duplicates, since retried deliveries are expected
// at the ingestion front.
type Store interface {
	Put(ctx context.Context, tenantID string, span spanmodel.Span) error
	PutBatch(ctx context.Context, tenantID string, spans []spanmodel.Span) error
	Query(ctx context.Context, tenantID string, opts QueryOptions) ([]spanmodel.Span, error)
}

// DefaultQueryLimit caps an unbounded query so a single tenant can't exhaust
// read-surface memory.
const DefaultQueryLimit = 10000
