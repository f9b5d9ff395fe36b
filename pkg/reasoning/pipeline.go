package reasoning

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/pkg/graphbuilder"
	"github.com/archlens/archlens/pkg/issues"
	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/workflow"
)

// Pipeline runs the detect -> classify -> analyze -> synthesize sequence
// the read surface's architecture and workflow operations share. A single
// Pipeline is safe for concurrent use across tenants: Run holds no state
// of its own beyond the detector it was built with.
type Pipeline struct {
	detector *issues.Detector
	log      *logrus.Logger
}

// New builds a pipeline wired with the standard five-rule detector (spec
// §4.E).
func New(log *logrus.Logger) *Pipeline {
	return &Pipeline{
		detector: issues.NewDetector(log),
		log:      log,
	}
}

// Run executes the full pipeline for one tenant's span snapshot: build the
// dependency graph (detect_spans, classify_nodes), detect issues and
// compute supporting graph measures (analyze_graph), then — unless no
// issues were found, in which case finalize short-circuits straight to an
// empty workflow set — synthesize the three remediation profiles
// concurrently (select_strategies, generate_minimal, generate_performance,
// generate_cost) and pick the recommendation (finalize).
func (p *Pipeline) Run(ctx context.Context, spans []spanmodel.Span, overrides graphbuilder.Overrides, thresholds config.ThresholdsConfig) (*Result, error) {
	p.log.WithField("stage", StageDetectSpans).WithField("span_count", len(spans)).Debug("reconstructing dependency graph")
	g, err := graphbuilder.Build(ctx, spans, overrides)
	if err != nil {
		return nil, err
	}
	p.log.WithField("stage", StageClassifyNodes).WithField("node_count", len(g.Nodes())).Debug("classified graph nodes")

	p.log.WithField("stage", StageAnalyzeGraph).Debug("detecting issues and computing graph measures")
	foundIssues, err := p.detector.Detect(ctx, g, thresholds)
	if err != nil {
		return nil, err
	}
	analysis := Analysis{
		HasCycles:           g.HasCycles(),
		LongestCriticalPath: g.LongestCriticalPath(),
		Betweenness:         g.BetweennessCentrality(affectedNodeSet(foundIssues)),
	}

	if len(foundIssues) == 0 {
		p.log.WithField("stage", StageFinalize).Debug("no issues detected, finalizing with no workflows")
		return &Result{Graph: g, Issues: foundIssues, Analysis: analysis}, nil
	}

	p.log.WithField("stage", StageSelectStrategies).WithField("issue_count", len(foundIssues)).Debug("selecting remediation strategies")
	workflows, err := p.generateWorkflows(ctx, foundIssues)
	if err != nil {
		return nil, err
	}

	recommended := workflow.Recommend(workflows)
	p.log.WithField("stage", StageFinalize).WithField("recommended_profile", recommended.Profile).Debug("finalized workflow comparison")

	return &Result{
		Graph:       g,
		Issues:      foundIssues,
		Analysis:    analysis,
		Workflows:   workflows,
		Recommended: recommended,
	}, nil
}

// generateWorkflows runs the three profile generators concurrently, the
// same errgroup-based fan-out pattern pkg/graphbuilder and pkg/issues use,
// writing each result to its own fixed slot so the returned order (minimal,
// performance, cost) stays deterministic regardless of completion order.
func (p *Pipeline) generateWorkflows(ctx context.Context, foundIssues []issues.Issue) ([]workflow.Workflow, error) {
	in := workflow.Input{Issues: foundIssues}
	workflows := make([]workflow.Workflow, 3)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		workflows[0] = workflow.GenerateMinimal(in)
		return nil
	})
	g.Go(func() error {
		workflows[1] = workflow.GeneratePerformance(in)
		return nil
	})
	g.Go(func() error {
		workflows[2] = workflow.GenerateCost(in)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return workflows, nil
}
