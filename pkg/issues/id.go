package issues

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// stableID derives a deterministic issue ID from the rule name and the
// affected nodes, independent of the order rules or nodes were visited in —
// repeated detection runs over the same graph must produce the same IDs so
// the read surface and any client tracking an issue across polls sees
// continuity rather than churn.
func stableID(rule string, affectedNodes []string) string {
	sorted := append([]string(nil), affectedNodes...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(rule))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))

	return rule + "-" + hex.EncodeToString(h.Sum(nil))[:12]
}
