package issues

import (
	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/pkg/graph"
)

type ruleFunc func(g *graph.Graph, t config.ThresholdsConfig) []Issue

// highLatencyEdge flags any edge whose average latency exceeds
// Thresholds.LatencyMaxMs (spec §4.E rule 1).
func highLatencyEdge(g *graph.Graph, t config.ThresholdsConfig) []Issue {
	var out []Issue
	for _, e := range g.Edges() {
		if e.Metrics.AvgLatencyMs <= t.LatencyMaxMs {
			continue
		}
		nodes := []string{e.Source, e.Target}
		out = append(out, Issue{
			ID:            stableID(RuleHighLatencyEdge, nodes),
			Rule:          RuleHighLatencyEdge,
			Severity:      SeverityHigh,
			AffectedNodes: nodes,
			MetricValue:   e.Metrics.AvgLatencyMs,
			Description:   "call from " + e.Source + " to " + e.Target + " exceeds the latency threshold",
			Evidence: map[string]interface{}{
				"avg_latency_ms": e.Metrics.AvgLatencyMs,
				"call_count":     e.Metrics.CallCount,
				"threshold":      t.LatencyMaxMs,
				"actual":         e.Metrics.AvgLatencyMs,
			},
		})
	}
	return out
}

// deepSyncChain flags any node that originates a downstream call chain
// longer than Thresholds.DepthMax (spec §4.E rule 2).
func deepSyncChain(g *graph.Graph, t config.ThresholdsConfig) []Issue {
	var out []Issue
	for _, n := range g.Nodes() {
		depth := g.Depth(n.ID)
		if depth <= t.DepthMax {
			continue
		}
		nodes := []string{n.ID}
		out = append(out, Issue{
			ID:            stableID(RuleDeepSyncChain, nodes),
			Rule:          RuleDeepSyncChain,
			Severity:      SeverityMedium,
			AffectedNodes: nodes,
			MetricValue:   float64(depth),
			Description:   n.ID + " originates a synchronous call chain deeper than the configured limit",
			Evidence: map[string]interface{}{
				"depth":     depth,
				"threshold": t.DepthMax,
				"actual":    depth,
			},
		})
	}
	return out
}

// highErrorRate flags any node whose error rate exceeds
// Thresholds.ErrorRateMax (spec §4.E rule 3).
func highErrorRate(g *graph.Graph, t config.ThresholdsConfig) []Issue {
	var out []Issue
	for _, n := range g.Nodes() {
		if n.Metrics.ErrorRate <= t.ErrorRateMax {
			continue
		}
		nodes := []string{n.ID}
		out = append(out, Issue{
			ID:            stableID(RuleHighErrorRate, nodes),
			Rule:          RuleHighErrorRate,
			Severity:      SeverityCritical,
			AffectedNodes: nodes,
			MetricValue:   n.Metrics.ErrorRate,
			Description:   n.ID + " has an error rate above the configured limit",
			Evidence: map[string]interface{}{
				"error_rate": n.Metrics.ErrorRate,
				"call_count": n.Metrics.CallCount,
				"threshold":  t.ErrorRateMax,
				"actual":     n.Metrics.ErrorRate,
			},
		})
	}
	return out
}

// fanOut flags any node whose outbound call fan-out exceeds
// Thresholds.FanoutMax (spec §4.E rule 4).
func fanOut(g *graph.Graph, t config.ThresholdsConfig) []Issue {
	var out []Issue
	for _, n := range g.Nodes() {
		degree := g.OutDegree(n.ID)
		if degree <= t.FanoutMax {
			continue
		}
		nodes := []string{n.ID}
		out = append(out, Issue{
			ID:            stableID(RuleFanOut, nodes),
			Rule:          RuleFanOut,
			Severity:      SeverityMedium,
			AffectedNodes: nodes,
			MetricValue:   float64(degree),
			Description:   n.ID + " calls more distinct downstream dependencies than the configured limit",
			Evidence: map[string]interface{}{
				"out_degree": degree,
				"targets":    g.Successors(n.ID),
				"threshold":  t.FanoutMax,
				"actual":     degree,
			},
		})
	}
	return out
}

// singlePointOfFailure flags any node whose inbound call fan-in exceeds
// Thresholds.InDegreeMax: many services depend on it, so its failure has
// outsized blast radius (spec §4.E rule 5).
func singlePointOfFailure(g *graph.Graph, t config.ThresholdsConfig) []Issue {
	var out []Issue
	for _, n := range g.Nodes() {
		degree := g.InDegree(n.ID)
		if degree <= t.InDegreeMax {
			continue
		}
		nodes := []string{n.ID}
		out = append(out, Issue{
			ID:            stableID(RuleSinglePointOfFailure, nodes),
			Rule:          RuleSinglePointOfFailure,
			Severity:      SeverityHigh,
			AffectedNodes: nodes,
			MetricValue:   float64(degree),
			Description:   n.ID + " is depended on by more services than the configured limit, making it a single point of failure",
			Evidence: map[string]interface{}{
				"in_degree":          degree,
				"dependent_services": g.Predecessors(n.ID),
				"threshold":          t.InDegreeMax,
				"actual":             degree,
			},
		})
	}
	return out
}
