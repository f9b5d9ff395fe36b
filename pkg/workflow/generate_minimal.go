package workflow

import (
	"sort"

	"github.com/archlens/archlens/pkg/issues"
)

// Score bounds spec §4.F documents for the minimal profile: "addressing only
// the top three issues with the least-invasive strategy per issue;
// complexity_score ≤ 3, risk_score ≤ 2." The minimal workflow's complexity
// and risk are also floored at 1, even with no changes; the performance and
// cost generators apply no floor and score 0 for an empty change list.
const (
	minimalIssueCap          = 3
	minimalComplexityCeiling = 3
	minimalRiskCeiling       = 2
)

// severityRank orders severities for the top-N selection below, most severe
// first, so a critical issue is never dropped in favor of a high one when
// more than the cap qualifies.
func severityRank(s issues.Severity) int {
	switch s {
	case issues.SeverityCritical:
		return 0
	case issues.SeverityHigh:
		return 1
	default:
		return 2
	}
}

// GenerateMinimal proposes the smallest workflow that addresses only the top
// three critical/high severity issues, most severe first, one change per
// issue using that rule's first (lowest-effort) strategy (spec §4.F minimal
// profile).
func GenerateMinimal(in Input) Workflow {
	var candidates []issues.Issue
	for _, iss := range in.Issues {
		if iss.Severity == issues.SeverityCritical || iss.Severity == issues.SeverityHigh {
			candidates = append(candidates, iss)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return severityRank(candidates[i].Severity) < severityRank(candidates[j].Severity)
	})
	if len(candidates) > minimalIssueCap {
		candidates = candidates[:minimalIssueCap]
	}

	var changes []ProposedChange
	var strategies []Strategy
	seenStrategy := make(map[Strategy]bool)
	for _, iss := range candidates {
		rule := strategiesForRule(iss.Rule, iss)
		if len(rule) == 0 {
			continue
		}
		s := rule[0]
		changes = append(changes, changeForStrategy(s, iss))
		if !seenStrategy[s] {
			seenStrategy[s] = true
			strategies = append(strategies, s)
		}
	}

	complexity, risk := score(changes)
	complexity = clamp(complexity, 1, minimalComplexityCeiling)
	risk = clamp(risk, 1, minimalRiskCeiling)

	return Workflow{
		ID:          workflowID(ProfileMinimal, issueIDs(candidates)),
		Profile:     ProfileMinimal,
		Name:        "Minimal Remediation",
		Description: "Addresses only the top three highest-severity issues, each with the least invasive applicable strategy.",
		IssueIDs:    issueIDs(candidates),
		Strategies:  strategies,
		Changes:     changes,
		Pros:        []string{"fastest to implement", "lowest operational risk of the three profiles"},
		Cons:        []string{"leaves lower-severity and beyond-the-cap issues unaddressed"},
		Complexity:  complexity,
		Risk:        risk,
		ExpectedImpact: minimalExpectedImpact(changes),
	}
}
