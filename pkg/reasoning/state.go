// Package reasoning wires the graph builder, issue detector, and workflow
// synthesizer into the single pipeline the read surface's architecture and
// workflow operations drive (spec §4 overview: reconstruct, detect,
// remediate). Each step is a discrete, named stage so the pipeline's
// progress can be logged and reasoned about independently, the way the
// request lifecycle stages are named in the teacher's reconciliation loop.
package reasoning

import (
	"github.com/archlens/archlens/pkg/graph"
	"github.com/archlens/archlens/pkg/issues"
	"github.com/archlens/archlens/pkg/workflow"
)

// Stage names one step of the pipeline, for logging only.
type Stage string

const (
	StageDetectSpans        Stage = "detect_spans"
	StageClassifyNodes      Stage = "classify_nodes"
	StageAnalyzeGraph       Stage = "analyze_graph"
	StageSelectStrategies   Stage = "select_strategies"
	StageGenerateMinimal    Stage = "generate_minimal"
	StageGeneratePerformance Stage = "generate_performance"
	StageGenerateCost       Stage = "generate_cost"
	StageFinalize           Stage = "finalize"
)

// Analysis holds the graph-wide measures the analyze stage computes in
// addition to per-rule issue detection (spec §4.F).
type Analysis struct {
	HasCycles           bool
	LongestCriticalPath []string
	Betweenness         map[string]float64
}

// Result is the pipeline's output: the reconstructed graph, every detected
// issue, the supporting analysis, and the three synthesized workflows with
// the recommended one called out.
type Result struct {
	Graph       *graph.Graph
	Issues      []issues.Issue
	Analysis    Analysis
	Workflows   []workflow.Workflow
	Recommended *workflow.Workflow
}

// affectedNodeSet collects the distinct node IDs named across every
// detected issue, the subset BetweennessCentrality is computed for (spec
// §4.F: centrality is reported only for nodes implicated in an issue).
func affectedNodeSet(issueList []issues.Issue) []string {
	seen := make(map[string]bool)
	var out []string
	for _, iss := range issueList {
		for _, n := range iss.AffectedNodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
