// Package readsurface exposes the five side-effect-free query operations
// over a tenant's reconstructed architecture (spec §4.G): current
// architecture, ranked issues, generated workflows, a workflow comparison
// matrix, and advanced graph measures.
package readsurface

import (
	"time"

	"github.com/archlens/archlens/pkg/graph"
	"github.com/archlens/archlens/pkg/issues"
	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/workflow"
)

// NodeDTO is the wire shape of one graph.Node.
type NodeDTO struct {
	ID           string             `json:"id"`
	Type         spanmodel.NodeType `json:"type"`
	CallCount    int64              `json:"call_count"`
	AvgLatencyMs float64            `json:"avg_latency_ms"`
	ErrorRate    float64            `json:"error_rate"`
}

// EdgeDTO is the wire shape of one graph.Edge.
type EdgeDTO struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	CallCount    int64   `json:"call_count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	ErrorRate    float64 `json:"error_rate"`
}

// Snapshot is the fully-computed, JSON-serializable result of one pipeline
// run for a tenant — the unit that is cached (spec §4.G caching contract)
// and that every read operation's response is a view over.
type Snapshot struct {
	GeneratedAt          time.Time           `json:"generated_at"`
	Nodes                []NodeDTO           `json:"nodes"`
	Edges                []EdgeDTO           `json:"edges"`
	Issues               []issues.Issue      `json:"issues"`
	HasCycles            bool                `json:"has_cycles"`
	LongestCriticalPath  []string            `json:"longest_critical_path"`
	Betweenness          map[string]float64  `json:"betweenness_centrality"`
	Workflows            []workflow.Workflow `json:"workflows"`
	Recommended          *workflow.Workflow  `json:"recommended_workflow,omitempty"`
}

func nodeDTOs(nodes []*graph.Node) []NodeDTO {
	out := make([]NodeDTO, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeDTO{
			ID:           n.ID,
			Type:         n.Type,
			CallCount:    n.Metrics.CallCount,
			AvgLatencyMs: n.Metrics.AvgLatencyMs,
			ErrorRate:    n.Metrics.ErrorRate,
		})
	}
	return out
}

func edgeDTOs(edges []*graph.Edge) []EdgeDTO {
	out := make([]EdgeDTO, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeDTO{
			Source:       e.Source,
			Target:       e.Target,
			CallCount:    e.Metrics.CallCount,
			AvgLatencyMs: e.Metrics.AvgLatencyMs,
			ErrorRate:    e.Metrics.ErrorRate,
		})
	}
	return out
}

// severityBuckets groups issues by severity for architecture_issues (spec
// §4.G: "ranked list with severity buckets").
func severityBuckets(issueList []issues.Issue) map[issues.Severity][]issues.Issue {
	buckets := make(map[issues.Severity][]issues.Issue)
	for _, iss := range issueList {
		buckets[iss.Severity] = append(buckets[iss.Severity], iss)
	}
	return buckets
}

// comparisonRow is one line of the workflows_comparison matrix.
type comparisonRow struct {
	Profile     workflow.Profile `json:"profile"`
	Complexity  int              `json:"complexity"`
	Risk        int              `json:"risk"`
	ChangeCount int              `json:"change_count"`
}

func comparisonRows(workflows []workflow.Workflow) []comparisonRow {
	rows := make([]comparisonRow, 0, len(workflows))
	for _, w := range workflows {
		rows = append(rows, comparisonRow{
			Profile:     w.Profile,
			Complexity:  w.Complexity,
			Risk:        w.Risk,
			ChangeCount: len(w.Changes),
		})
	}
	return rows
}
