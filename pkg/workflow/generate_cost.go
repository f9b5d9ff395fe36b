package workflow

// GenerateCost proposes a workflow covering every detected issue but, where
// a rule has more than one applicable strategy, picks whichever produces
// the lowest-risk-weighted change rather than the rule's default preference
// order (spec §4.F cost profile: favor reusing existing capacity over
// adding new infrastructure).
func GenerateCost(in Input) Workflow {
	var changes []ProposedChange
	var strategies []Strategy
	seenStrategy := make(map[Strategy]bool)

	for _, iss := range in.Issues {
		candidates := strategiesForRule(iss.Rule, iss)
		if len(candidates) == 0 {
			continue
		}

		cheapest := candidates[0]
		cheapestChange := changeForStrategy(cheapest, iss)
		for _, s := range candidates[1:] {
			c := changeForStrategy(s, iss)
			if riskWeight[c.Kind] < riskWeight[cheapestChange.Kind] {
				cheapest = s
				cheapestChange = c
			}
		}

		changes = append(changes, cheapestChange)
		if !seenStrategy[cheapest] {
			seenStrategy[cheapest] = true
			strategies = append(strategies, cheapest)
		}
	}

	complexity, risk := score(changes)
	return Workflow{
		ID:          workflowID(ProfileCost, issueIDs(in.Issues)),
		Profile:     ProfileCost,
		Name:        "Cost-Optimized Remediation",
		Description: "Addresses every detected issue while favoring the cheapest applicable strategy, reusing existing capacity over adding new infrastructure.",
		IssueIDs:    issueIDs(in.Issues),
		Strategies:  strategies,
		Changes:     changes,
		Pros:        []string{"lowest new-infrastructure spend of the three profiles", "addresses every detected issue"},
		Cons:        []string{"smaller latency/throughput improvement than the performance profile"},
		Complexity:  complexity,
		Risk:        risk,
		ExpectedImpact: costExpectedImpact(changes),
	}
}
