package spanstore

import (
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/archlens/archlens/pkg/spanmodel"
)

// applyFilter evaluates a gojq expression against each span, encoded as a
// plain map so the expression can reference fields like
// `.service_name == "checkout-api"` or `.latency_ms > 500`. A span is kept
// when the expression evaluates to a truthy boolean; any other result type,
// including an empty iterator, excludes it.
func applyFilter(expr string, spans []spanmodel.Span) ([]spanmodel.Span, error) {
	if expr == "" {
		return spans, nil
	}

	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse filter expression: %w", err)
	}

	kept := make([]spanmodel.Span, 0, len(spans))
	for _, s := range spans {
		ok, err := evalPredicate(query, spanToMap(s))
		if err != nil {
			return nil, fmt.Errorf("evaluate filter expression: %w", err)
		}
		if ok {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

func evalPredicate(query *gojq.Query, input map[string]interface{}) (bool, error) {
	iter := query.Run(input)
	v, ok := iter.Next()
	if !ok {
		return false, nil
	}
	if err, isErr := v.(error); isErr {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func spanToMap(s spanmodel.Span) map[string]interface{} {
	return map[string]interface{}{
		"trace_id":       s.TraceID,
		"span_id":        s.SpanID,
		"parent_span_id": s.ParentSpanID,
		"service_name":   s.ServiceName,
		"operation":      s.Operation,
		"kind":           string(s.Kind),
		"latency_ms":     s.LatencyMs,
		"status_code":    s.StatusCode,
		"error":          s.Error,
		"downstream":     s.Downstream,
		"has_error":      s.HasError(),
	}
}
