package workflow

import "github.com/archlens/archlens/pkg/issues"

// riskWeight approximates how much operational risk a change kind adds:
// introducing new infrastructure (a queue, a replica) carries more risk
// than wrapping an existing call path (a cache, a breaker).
var riskWeight = map[ChangeKind]int{
	ChangeKindAddCache:          1,
	ChangeKindAddCircuitBreaker: 1,
	ChangeKindAddReplica:        2,
	ChangeKindConsolidateCalls:  2,
	ChangeKindIntroduceQueue:    3,
}

func score(changes []ProposedChange) (complexity, risk int) {
	complexity = len(changes)
	for _, c := range changes {
		risk += riskWeight[c.Kind]
	}
	return complexity, risk
}

// clamp bounds v to [min, max], inclusive.
func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// minimalExpectedImpact estimates the risk reduction a minimal workflow's
// changes buy: modest, since only the top issues by severity are addressed
// (spec §4.F minimal profile).
func minimalExpectedImpact(changes []ProposedChange) map[string]float64 {
	return map[string]float64{
		"risk_reduction_pct": clampFloat(0.15*float64(len(changes)), 0, 0.45),
	}
}

// performanceExpectedImpact estimates the largest latency and throughput
// improvement of the three profiles, scaled by how many changes the
// workflow proposes (spec §4.F performance profile: "targets largest
// latency/throughput improvements").
func performanceExpectedImpact(changes []ProposedChange) map[string]float64 {
	return map[string]float64{
		"latency_improvement_pct":    clampFloat(0.2*float64(len(changes)), 0, 0.9),
		"throughput_improvement_pct": clampFloat(0.15*float64(len(changes)), 0, 0.9),
	}
}

// costExpectedImpact estimates the cost savings a cost-oriented workflow's
// preference for reusing existing capacity over new infrastructure buys,
// always non-positive (spec §4.F cost profile: "expected cost delta is
// negative").
func costExpectedImpact(changes []ProposedChange) map[string]float64 {
	return map[string]float64{
		"cost_delta_pct": -clampFloat(0.1*float64(len(changes)), 0, 0.5),
	}
}

func issueIDs(issueList []issues.Issue) []string {
	ids := make([]string, 0, len(issueList))
	for _, i := range issueList {
		ids = append(ids, i.ID)
	}
	return ids
}
