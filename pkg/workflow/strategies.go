package workflow

import "github.com/archlens/archlens/pkg/issues"

// strategiesForRule maps a detection rule to the remediation strategies
// that address it, in priority order (spec §4.F). A high-latency edge always
// lists caching before async decoupling; the target node's type is not
// consulted, so a non-database target gets caching first as well.
func strategiesForRule(rule string, issue issues.Issue) []Strategy {
	switch rule {
	case issues.RuleHighLatencyEdge:
		return []Strategy{StrategyCaching, StrategyAsyncDecoupling}
	case issues.RuleDeepSyncChain:
		return []Strategy{StrategyAsyncDecoupling}
	case issues.RuleHighErrorRate:
		return []Strategy{StrategyCircuitBreaker}
	case issues.RuleFanOut:
		return []Strategy{StrategyConsolidation}
	case issues.RuleSinglePointOfFailure:
		return []Strategy{StrategyBulkheadRedundancy}
	default:
		return nil
	}
}

// selectStrategies collects the deduplicated set of strategies applicable
// across every issue, preserving first-seen order so generation is
// deterministic for a given issue set.
func selectStrategies(issueList []issues.Issue) []Strategy {
	seen := make(map[Strategy]bool)
	var out []Strategy
	for _, iss := range issueList {
		for _, s := range strategiesForRule(iss.Rule, iss) {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func changeForStrategy(s Strategy, iss issues.Issue) ProposedChange {
	switch s {
	case StrategyCaching:
		return ProposedChange{
			Kind:        ChangeKindAddCache,
			Target:      primaryTarget(iss),
			Description: "introduce a read-through cache in front of " + primaryTarget(iss),
			Impact:      "reduces load on " + primaryTarget(iss) + " by serving repeat reads from cache instead of the downstream database",
		}
	case StrategyAsyncDecoupling:
		return ProposedChange{
			Kind:        ChangeKindIntroduceQueue,
			Target:      primaryTarget(iss),
			Description: "decouple the call to " + primaryTarget(iss) + " with an async queue",
			Impact:      "shortens the synchronous call chain through " + primaryTarget(iss) + " by moving the call off the request's critical path",
		}
	case StrategyCircuitBreaker:
		return ProposedChange{
			Kind:        ChangeKindAddCircuitBreaker,
			Target:      primaryTarget(iss),
			Description: "wrap calls to " + primaryTarget(iss) + " in a circuit breaker",
			Impact:      "limits cascading failure by isolating callers from " + primaryTarget(iss) + " once its error rate spikes",
		}
	case StrategyBulkheadRedundancy:
		return ProposedChange{
			Kind:        ChangeKindAddReplica,
			Target:      primaryTarget(iss),
			Description: "add a redundant replica of " + primaryTarget(iss) + " to shed fan-in load",
			Impact:      "reduces the blast radius of " + primaryTarget(iss) + " failing by spreading dependent load across replicas",
		}
	case StrategyConsolidation:
		return ProposedChange{
			Kind:        ChangeKindConsolidateCalls,
			Target:      primaryTarget(iss),
			Description: "consolidate " + primaryTarget(iss) + "'s fan-out calls into fewer batched requests",
			Impact:      "reduces call volume from " + primaryTarget(iss) + " by batching its downstream requests",
		}
	default:
		return ProposedChange{Target: primaryTarget(iss)}
	}
}

// primaryTarget picks the node a remediation change should attach to: the
// last affected node, which for an edge-shaped issue (source, target) is
// the downstream dependency actually being called.
func primaryTarget(iss issues.Issue) string {
	if len(iss.AffectedNodes) == 0 {
		return ""
	}
	return iss.AffectedNodes[len(iss.AffectedNodes)-1]
}
