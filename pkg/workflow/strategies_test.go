package workflow

import (
	"github.com/archlens/archlens/pkg/issues"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("strategiesForRule", func() {
	It("offers caching before async decoupling for a high-latency edge", func() {
		Expect(strategiesForRule(issues.RuleHighLatencyEdge, latencyIssue())).To(Equal(
			[]Strategy{StrategyCaching, StrategyAsyncDecoupling},
		))
	})

	It("offers a single strategy per single-point-of-failure issue", func() {
		iss := issues.Issue{Rule: issues.RuleSinglePointOfFailure, AffectedNodes: []string{"auth-api"}}
		Expect(strategiesForRule(issues.RuleSinglePointOfFailure, iss)).To(Equal(
			[]Strategy{StrategyBulkheadRedundancy},
		))
	})

	It("returns nil for an unrecognized rule", func() {
		Expect(strategiesForRule("unknown_rule", issues.Issue{})).To(BeNil())
	})
})

var _ = Describe("primaryTarget", func() {
	It("picks the last affected node", func() {
		iss := issues.Issue{AffectedNodes: []string{"checkout-api", "billing-db"}}
		Expect(primaryTarget(iss)).To(Equal("billing-db"))
	})

	It("returns empty string when no nodes are affected", func() {
		Expect(primaryTarget(issues.Issue{})).To(Equal(""))
	})
})

var _ = Describe("changeForStrategy", func() {
	It("targets the primary node for every strategy", func() {
		iss := issues.Issue{AffectedNodes: []string{"gateway", "inventory-api"}}
		for _, s := range []Strategy{StrategyCaching, StrategyAsyncDecoupling, StrategyCircuitBreaker, StrategyBulkheadRedundancy, StrategyConsolidation} {
			Expect(changeForStrategy(s, iss).Target).To(Equal("inventory-api"))
		}
	})
})

var _ = Describe("selectStrategies", func() {
	It("deduplicates strategies shared across issues, preserving first-seen order", func() {
		strategies := selectStrategies([]issues.Issue{errorRateIssue(), latencyIssue()})
		Expect(strategies).To(Equal([]Strategy{StrategyCircuitBreaker, StrategyCaching, StrategyAsyncDecoupling}))
	})
})
