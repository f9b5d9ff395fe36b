package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

func workflowID(profile Profile, issueIDs []string) string {
	sorted := append([]string(nil), issueIDs...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(profile))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))

	return string(profile) + "-" + hex.EncodeToString(h.Sum(nil))[:12]
}

// Generate produces the three profiles in the fixed order the read
// surface's workflows_generated operation returns (spec §4.F): minimal,
// performance, cost. An issue set with zero issues still returns three
// workflows, each with zero changes — callers distinguish "nothing to fix"
// from "fix generation failed" by issue-count, not workflow-count.
func Generate(in Input) []Workflow {
	return []Workflow{
		GenerateMinimal(in),
		GeneratePerformance(in),
		GenerateCost(in),
	}
}

// Recommend picks the workflow with the lowest combined complexity-and-risk
// score (spec §4.F workflows_comparison). Ties are broken by profile order
// (minimal, performance, cost), so the comparison view's recommendation is
// stable across repeated calls for the same issue set.
func Recommend(workflows []Workflow) *Workflow {
	if len(workflows) == 0 {
		return nil
	}
	best := workflows[0]
	for _, w := range workflows[1:] {
		if w.Score() < best.Score() {
			best = w
		}
	}
	return &best
}
