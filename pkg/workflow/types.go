// Package workflow synthesizes remediation workflows from detected issues
// (spec §4.F): for each issue category, pick a remediation strategy, then
// generate three alternative workflows — minimal, performance, and
// cost-oriented — scored by complexity and risk.
package workflow

import "github.com/archlens/archlens/pkg/issues"

// Strategy is a remediation approach applicable to one or more issue rules.
type Strategy string

const (
	StrategyCaching            Strategy = "caching"
	StrategyAsyncDecoupling    Strategy = "async_decoupling"
	StrategyCircuitBreaker     Strategy = "circuit_breaker"
	StrategyBulkheadRedundancy Strategy = "bulkhead_redundancy"
	StrategyConsolidation      Strategy = "consolidation"
)

// ChangeKind classifies a single proposed step within a workflow.
type ChangeKind string

const (
	ChangeKindAddCache         ChangeKind = "add_cache"
	ChangeKindIntroduceQueue   ChangeKind = "introduce_queue"
	ChangeKindAddCircuitBreaker ChangeKind = "add_circuit_breaker"
	ChangeKindAddReplica       ChangeKind = "add_replica"
	ChangeKindConsolidateCalls ChangeKind = "consolidate_calls"
)

// ProposedChange is one concrete step a workflow proposes.
type ProposedChange struct {
	Kind        ChangeKind `json:"kind"`
	Target      string     `json:"target"`
	Description string     `json:"description"`
	// Impact is a short prose statement of what the change is expected to
	// relieve — e.g. the database-load reduction a cache in front of a slow
	// downstream database buys (spec §3, scenario S5).
	Impact string `json:"impact"`
}

// Profile names the three workflow generation angles spec §4.F requires.
type Profile string

const (
	ProfileMinimal     Profile = "minimal"
	ProfilePerformance Profile = "performance"
	ProfileCost        Profile = "cost"
)

// Workflow is one synthesized remediation plan for a set of issues.
type Workflow struct {
	ID          string           `json:"id"`
	Profile     Profile          `json:"profile"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	IssueIDs    []string         `json:"issue_ids"`
	Strategies  []Strategy       `json:"strategies"`
	Changes     []ProposedChange `json:"changes"`
	Pros        []string         `json:"pros"`
	Cons        []string         `json:"cons"`
	Complexity  int              `json:"complexity"`
	Risk        int              `json:"risk"`
	// ExpectedImpact maps a labeled outcome dimension (e.g.
	// "latency_improvement_pct", "cost_delta_pct") to the estimated delta the
	// workflow's changes produce. cost_delta_pct is negative for a cost
	// reduction; the *_improvement_pct and risk_reduction_pct dimensions are
	// positive for an improvement (spec §3).
	ExpectedImpact map[string]float64 `json:"expected_impact"`
}

// Score is the sum the read surface's comparison view ranks workflows by
// (spec §4.F: "the lowest combined complexity and risk is recommended").
func (w Workflow) Score() int {
	return w.Complexity + w.Risk
}

// Input bundles the detected issues a workflow set is generated from.
type Input struct {
	Issues []issues.Issue
}
