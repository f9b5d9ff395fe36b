// Package discovery persists the two small, relational, ACID-sensitive
// Postgres side tables that support graph reconstruction: manual node-type
// overrides (spec §4.C: classification can be wrong for bespoke service
// names) and per-tenant rule thresholds (spec §4.E: thresholds are
// configurable per tenant). Span data itself never touches Postgres — that
// is ClickHouse's job (see pkg/spanstore).
package discovery

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/pkg/spanmodel"
)

// Repository wraps a Postgres connection pool for discovery-table access.
type Repository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewRepository constructs a Repository over an already-open db.
func NewRepository(db *sqlx.DB, log *logrus.Logger) *Repository {
	return &Repository{db: db, log: log}
}

type overrideRow struct {
	Identifier string `db:"identifier"`
	NodeType   string `db:"node_type"`
}

// UpsertNodeOverride records that identifier should classify as nodeType for
// tenantID, regardless of what spanmodel.ClassifyNode's string-marker
// heuristic would otherwise infer.
func (r *Repository) UpsertNodeOverride(ctx context.Context, tenantID, identifier string, nodeType spanmodel.NodeType) error {
	const query = `
		INSERT INTO architecture_discovery (tenant_id, identifier, node_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, identifier) DO UPDATE SET node_type = EXCLUDED.node_type`
	if _, err := r.db.ExecContext(ctx, query, tenantID, identifier, string(nodeType)); err != nil {
		return fmt.Errorf("upsert node override: %w", err)
	}
	return nil
}

// NodeOverrides returns every manual node-type override on record for
// tenantID, keyed by identifier.
func (r *Repository) NodeOverrides(ctx context.Context, tenantID string) (map[string]spanmodel.NodeType, error) {
	const query = `SELECT identifier, node_type FROM architecture_discovery WHERE tenant_id = $1`

	var rows []overrideRow
	if err := r.db.SelectContext(ctx, &rows, query, tenantID); err != nil {
		return nil, fmt.Errorf("load node overrides: %w", err)
	}

	out := make(map[string]spanmodel.NodeType, len(rows))
	for _, row := range rows {
		out[row.Identifier] = spanmodel.NodeType(row.NodeType)
	}
	return out, nil
}

type thresholdsRow struct {
	LatencyMaxMs float64 `db:"latency_max_ms"`
	ErrorRateMax float64 `db:"error_rate_max"`
	DepthMax     int     `db:"depth_max"`
	FanoutMax    int     `db:"fanout_max"`
	InDegreeMax  int     `db:"in_degree_max"`
}

// UpsertThresholds records tenantID's rule-threshold overrides.
func (r *Repository) UpsertThresholds(ctx context.Context, tenantID string, t config.ThresholdsConfig) error {
	const query = `
		INSERT INTO tenant_thresholds (tenant_id, latency_max_ms, error_rate_max, depth_max, fanout_max, in_degree_max)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id) DO UPDATE SET
			latency_max_ms = EXCLUDED.latency_max_ms,
			error_rate_max = EXCLUDED.error_rate_max,
			depth_max = EXCLUDED.depth_max,
			fanout_max = EXCLUDED.fanout_max,
			in_degree_max = EXCLUDED.in_degree_max`
	_, err := r.db.ExecContext(ctx, query, tenantID, t.LatencyMaxMs, t.ErrorRateMax, t.DepthMax, t.FanoutMax, t.InDegreeMax)
	if err != nil {
		return fmt.Errorf("upsert tenant thresholds: %w", err)
	}
	return nil
}

// Thresholds returns tenantID's threshold overrides, or ok=false if the
// tenant has none on record (callers fall back to process-wide defaults).
func (r *Repository) Thresholds(ctx context.Context, tenantID string) (config.ThresholdsConfig, bool, error) {
	const query = `
		SELECT latency_max_ms, error_rate_max, depth_max, fanout_max, in_degree_max
		FROM tenant_thresholds WHERE tenant_id = $1`

	var row thresholdsRow
	err := r.db.GetContext(ctx, &row, query, tenantID)
	if err == sql.ErrNoRows {
		return config.ThresholdsConfig{}, false, nil
	}
	if err != nil {
		return config.ThresholdsConfig{}, false, fmt.Errorf("load tenant thresholds: %w", err)
	}
	return config.ThresholdsConfig{
		LatencyMaxMs: row.LatencyMaxMs,
		ErrorRateMax: row.ErrorRateMax,
		DepthMax:     row.DepthMax,
		FanoutMax:    row.FanoutMax,
		InDegreeMax:  row.InDegreeMax,
	}, true, nil
}
