// Package graphbuilder reconstructs a tenant's dependency graph from the
// spans the span store holds (spec §4.B-§4.D): nodes are services,
// databases and external dependencies; edges are the calls between them;
// both carry aggregated call-count/latency/error-rate metrics.
package graphbuilder

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/archlens/archlens/pkg/graph"
	"github.com/archlens/archlens/pkg/spanmodel"
)

// Overrides supplies manual node-type overrides that take precedence over
// spanmodel.ClassifyNode's string-marker heuristic (spec §6 discovery
// table).
type Overrides map[string]spanmodel.NodeType

// aggregate accumulates the raw counts behind a node's or edge's Metrics
// before they are reduced to the final call_count/avg_latency_ms/
// error_rate triple.
type aggregate struct {
	callCount  int64
	errorCount int64
	latencySum float64
}

func (a *aggregate) add(s spanmodel.Span) {
	a.callCount++
	a.latencySum += s.LatencyMs
	if s.HasError() {
		a.errorCount++
	}
}

func (a aggregate) metrics() graph.Metrics {
	if a.callCount == 0 {
		return graph.Metrics{}
	}
	return graph.Metrics{
		CallCount:    a.callCount,
		AvgLatencyMs: a.latencySum / float64(a.callCount),
		ErrorRate:    float64(a.errorCount) / float64(a.callCount),
	}
}

// Build reconstructs the dependency graph for a single tenant's span set.
// Node identity is the service name (or database/external identifier);
// node metrics aggregate every span whose ServiceName is that identifier.
// An edge source->target exists whenever a span on source, of any kind,
// names target as its Downstream; edge metrics aggregate those spans.
//
// Build never returns an error from malformed input: a span missing fields
// ValidateSpan would have rejected at ingestion simply contributes nothing
// to the graph it cannot describe.
func Build(ctx context.Context, spans []spanmodel.Span, overrides Overrides) (*graph.Graph, error) {
	nodeAgg := make(map[string]*aggregate)
	edgeAgg := make(map[string]map[string]*aggregate)
	nodeType := make(map[string]spanmodel.NodeType)

	classify := func(identifier string) spanmodel.NodeType {
		if t, ok := overrides[identifier]; ok {
			return t
		}
		return spanmodel.ClassifyNode(identifier)
	}

	// Node aggregation and edge aggregation are independent, read-only
	// reductions over the span slice; each goroutine below accumulates into
	// its own local maps so the two passes genuinely run concurrently with
	// nothing shared until they are merged after Wait.
	var targetAgg map[string]*aggregate
	var targetType map[string]spanmodel.NodeType

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for _, s := range spans {
			if s.ServiceName == "" {
				continue
			}
			if _, ok := nodeAgg[s.ServiceName]; !ok {
				nodeAgg[s.ServiceName] = &aggregate{}
				nodeType[s.ServiceName] = classify(s.ServiceName)
			}
			nodeAgg[s.ServiceName].add(s)
		}
		return ctx.Err()
	})

	g.Go(func() error {
		targets := make(map[string]*aggregate)
		types := make(map[string]spanmodel.NodeType)
		for _, s := range spans {
			if !s.HasDownstream() || s.ServiceName == "" {
				continue
			}
			target := s.Downstream
			if _, ok := targets[target]; !ok {
				targets[target] = &aggregate{}
				types[target] = classify(target)
			}
			if _, ok := edgeAgg[s.ServiceName]; !ok {
				edgeAgg[s.ServiceName] = make(map[string]*aggregate)
			}
			if _, ok := edgeAgg[s.ServiceName][target]; !ok {
				edgeAgg[s.ServiceName][target] = &aggregate{}
			}
			edgeAgg[s.ServiceName][target].add(s)
		}
		targetAgg = targets
		targetType = types
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A target that never appears as a span's own ServiceName has no entry
	// from the node pass; fold in what the edge pass discovered for it.
	for id, t := range targetType {
		if _, ok := nodeType[id]; !ok {
			nodeType[id] = t
			nodeAgg[id] = targetAgg[id]
		}
	}

	out := graph.New()
	for id, t := range nodeType {
		out.UpsertNode(id, t)
		out.SetNodeMetrics(id, nodeAgg[id].metrics())
	}
	for source, targets := range edgeAgg {
		for target, agg := range targets {
			out.UpsertEdge(source, target)
			out.SetEdgeMetrics(source, target, agg.metrics())
		}
	}
	return out, nil
}
