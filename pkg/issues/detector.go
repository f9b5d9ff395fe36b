package issues

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/pkg/graph"
)

// Detector runs every detection rule against a graph. A rule that panics
// is recovered and logged, not propagated: one bad rule must never prevent
// the others from reporting (infallible-detector semantics).
type Detector struct {
	rules []namedRule
	log   *logrus.Logger
}

type namedRule struct {
	name string
	fn   ruleFunc
}

// NewDetector builds the standard five-rule detector (spec §4.E).
func NewDetector(log *logrus.Logger) *Detector {
	return &Detector{
		log: log,
		rules: []namedRule{
			{RuleHighLatencyEdge, highLatencyEdge},
			{RuleDeepSyncChain, deepSyncChain},
			{RuleHighErrorRate, highErrorRate},
			{RuleFanOut, fanOut},
			{RuleSinglePointOfFailure, singlePointOfFailure},
		},
	}
}

// Detect runs all rules against g with thresholds t, concurrently, and
// returns the union of issues found. Rules run independently: a rule that
// panics is recovered, logged, and simply contributes no issues.
func (d *Detector) Detect(ctx context.Context, g *graph.Graph, t config.ThresholdsConfig) ([]Issue, error) {
	var (
		mu     sync.Mutex
		issues []Issue
	)

	eg, ctx := errgroup.WithContext(ctx)
	for _, r := range d.rules {
		r := r
		eg.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					if d.log != nil {
						d.log.WithField("rule", r.name).Errorf("detection rule panicked: %v", rec)
					}
					err = nil
				}
			}()

			if ctx.Err() != nil {
				return ctx.Err()
			}

			found := r.fn(g, t)
			mu.Lock()
			issues = append(issues, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("issue detection: %w", err)
	}
	return issues, nil
}
