package readsurface

import (
	"encoding/json"
	"net/http"
	"sort"

	apperrors "github.com/archlens/archlens/internal/errors"
	"github.com/archlens/archlens/pkg/issues"
)

func (s *Server) handleArchitectureCurrent(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.source.fetch(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": snapshot.GeneratedAt,
		"nodes":        snapshot.Nodes,
		"edges":        snapshot.Edges,
		"metrics_summary": map[string]interface{}{
			"node_count": len(snapshot.Nodes),
			"edge_count": len(snapshot.Edges),
		},
	})
}

func (s *Server) handleArchitectureIssues(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.source.fetch(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	// Rank most severe first, then by issue ID for a stable order.
	severityOrder := map[issues.Severity]int{issues.SeverityCritical: 0, issues.SeverityHigh: 1, issues.SeverityMedium: 2}
	ranked := make([]issues.Issue, len(snapshot.Issues))
	copy(ranked, snapshot.Issues)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := severityOrder[ranked[i].Severity], severityOrder[ranked[j].Severity]
		if si != sj {
			return si < sj
		}
		return ranked[i].ID < ranked[j].ID
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at":     snapshot.GeneratedAt,
		"issues":           ranked,
		"severity_buckets": severityBuckets(snapshot.Issues),
	})
}

func (s *Server) handleWorkflowsGenerated(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.source.fetch(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": snapshot.GeneratedAt,
		"workflows":    snapshot.Workflows,
	})
}

func (s *Server) handleWorkflowsComparison(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.source.fetch(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at":   snapshot.GeneratedAt,
		"comparison":     comparisonRows(snapshot.Workflows),
		"recommendation": snapshot.Recommended,
	})
}

func (s *Server) handleGraphAnalysis(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.source.fetch(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at":          snapshot.GeneratedAt,
		"has_cycles":            snapshot.HasCycles,
		"longest_critical_path": snapshot.LongestCriticalPath,
		"betweenness_centrality": snapshot.Betweenness,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.GetStatusCode(err), map[string]string{"detail": apperrors.SafeErrorMessage(err)})
}
