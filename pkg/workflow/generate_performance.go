package workflow

// GeneratePerformance proposes the most thorough workflow: every detected
// issue, addressed by every strategy applicable to its rule (spec §4.F
// performance profile) — the highest complexity and typically the highest
// risk of the three profiles, in exchange for the largest latency and
// throughput improvement.
func GeneratePerformance(in Input) Workflow {
	var changes []ProposedChange
	var strategies []Strategy
	seenStrategy := make(map[Strategy]bool)

	for _, iss := range in.Issues {
		for _, s := range strategiesForRule(iss.Rule, iss) {
			changes = append(changes, changeForStrategy(s, iss))
			if !seenStrategy[s] {
				seenStrategy[s] = true
				strategies = append(strategies, s)
			}
		}
	}

	complexity, risk := score(changes)
	return Workflow{
		ID:          workflowID(ProfilePerformance, issueIDs(in.Issues)),
		Profile:     ProfilePerformance,
		Name:        "Maximum Performance Remediation",
		Description: "Applies every strategy applicable to every detected issue for the largest latency and throughput improvement.",
		IssueIDs:    issueIDs(in.Issues),
		Strategies:  strategies,
		Changes:     changes,
		Pros:        []string{"addresses every detected issue", "largest latency and throughput improvement of the three profiles"},
		Cons:        []string{"highest implementation complexity and operational risk of the three profiles"},
		Complexity:  complexity,
		Risk:        risk,
		ExpectedImpact: performanceExpectedImpact(changes),
	}
}
