// Package spanmodel defines the wire and storage representation of a single
// observability span (spec §3) and the pure classification rules used to
// derive dependency-graph node identity and type from it.
package spanmodel

import (
	"encoding/hex"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Kind enumerates the span kinds spec §3 allows.
type Kind string

const (
	KindServer   Kind = "server"
	KindClient   Kind = "client"
	KindInternal Kind = "internal"
)

func (k Kind) Valid() bool {
	switch k {
	case KindServer, KindClient, KindInternal:
		return true
	default:
		return false
	}
}

// Span is the atomic telemetry record ingested by the front door and
// persisted, unmutated, by the span store.
type Span struct {
	TenantID      string    `json:"-" db:"tenant_id"`
	TraceID       string    `json:"trace_id" db:"trace_id" validate:"required"`
	SpanID        string    `json:"span_id" db:"span_id" validate:"required"`
	ParentSpanID  string    `json:"parent_span_id,omitempty" db:"parent_span_id"`
	ServiceName   string    `json:"service_name" db:"service_name" validate:"required"`
	Operation     string    `json:"operation" db:"operation" validate:"required"`
	Kind          Kind      `json:"kind" db:"kind" validate:"required,oneof=server client internal"`
	StartTime     time.Time `json:"start_time" db:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" db:"end_time" validate:"required"`
	LatencyMs     float64   `json:"latency_ms" db:"latency_ms" validate:"gte=0"`
	StatusCode    int       `json:"status_code,omitempty" db:"status_code"`
	Error         string    `json:"error,omitempty" db:"error"`
	Downstream    string    `json:"downstream,omitempty" db:"downstream"`
}

// IsRoot reports whether the span has no parent.
func (s Span) IsRoot() bool {
	return s.ParentSpanID == ""
}

// HasError reports whether the span itself counts toward an error rate,
// per spec §4.D: error present, or status_code >= 500. Spec §9 leaves
// 4xx deliberately out of this contribution.
func (s Span) HasError() bool {
	return s.Error != "" || s.StatusCode >= 500
}

// CorrelationKey returns the (trace_id, span_id) pair spec §3 defines as the
// correlation key.
func (s Span) CorrelationKey() (string, string) {
	return s.TraceID, s.SpanID
}

// ParseTraceID validates that id decodes as an OpenTelemetry-shaped 16-byte
// trace identifier. archlens does not require spans to be OTel-native: the
// ingestion path does not call this check, and a trace_id or span_id of any
// other form is accepted and stored as given.
func ParseTraceID(id string) (trace.TraceID, bool) {
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != 16 {
		return trace.TraceID{}, false
	}
	var tid trace.TraceID
	copy(tid[:], raw)
	return tid, true
}

// ParseSpanID validates an 8-byte OTel-shaped span identifier the same way.
func ParseSpanID(id string) (trace.SpanID, bool) {
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != 8 {
		return trace.SpanID{}, false
	}
	var sid trace.SpanID
	copy(sid[:], raw)
	return sid, true
}

// NodeType is the inferred classification of a dependency-graph node.
type NodeType string

const (
	NodeTypeService  NodeType = "service"
	NodeTypeDatabase NodeType = "database"
	NodeTypeExternal NodeType = "external"
)

var databaseMarkers = []string{
	"postgres", "mysql", "mongo", "redis", "dynamodb", "cosmosdb",
}

var externalMarkers = []string{
	"http://", "https://", "api.",
}

// ClassifyNode implements spec §3's node-type inference. identifier is the
// node's identity string: a span's service_name for its own node, or its
// downstream for the node it calls, whatever the span's kind.
func ClassifyNode(identifier string) NodeType {
	lower := strings.ToLower(identifier)
	for _, marker := range databaseMarkers {
		if strings.Contains(lower, marker) {
			return NodeTypeDatabase
		}
	}
	for _, marker := range externalMarkers {
		if strings.Contains(lower, marker) {
			return NodeTypeExternal
		}
	}
	return NodeTypeService
}

// NodeIdentity returns the node identity this span contributes to (its
// service_name) — the node for its own service, independent of any
// downstream it also calls.
func (s Span) NodeIdentity() string {
	return s.ServiceName
}

// HasDownstream reports whether the span contributes to an edge.
func (s Span) HasDownstream() bool {
	return s.Downstream != ""
}
