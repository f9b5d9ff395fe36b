package spanstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	apperrors "github.com/archlens/archlens/internal/errors"
	"github.com/archlens/archlens/pkg/archmetrics"
	"github.com/archlens/archlens/pkg/spanmodel"
)

// conn is the narrow slice of clickhouse.Conn the store exercises, kept as
// its own interface so tests can exchange the real driver for a fake
// without touching the store's logic.
type conn interface {
	Exec(ctx context.Context, query string, args ...interface{}) error
	Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error)
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
}

const insertColumns = `(tenant_id, trace_id, span_id, parent_span_id, service_name, operation, kind,
	start_time, end_time, latency_ms, status_code, error, downstream)`

// ClickHouseStore is the primary Store implementation. Spans land in a
// ReplacingMergeTree keyed on (tenant_id, span_id), so re-ingesting a
// retried delivery overwrites the prior row instead of duplicating it —
// idempotency is a property of the table engine, not application logic.
type ClickHouseStore struct {
	conn    conn
	breaker *gobreaker.CircuitBreaker
	metrics *archmetrics.Metrics
	log     *logrus.Logger
}

// NewClickHouseStore wraps conn with a circuit breaker that trips after 5
// consecutive failures and stays open for 30s, protecting the graph builder
// and read surface from a cascading ClickHouse outage.
func NewClickHouseStore(c conn, metrics *archmetrics.Metrics, log *logrus.Logger) *ClickHouseStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "clickhouse_span_store",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from, "to": to}).Warn("span store circuit breaker state change")
		},
	})
	return &ClickHouseStore{conn: c, breaker: breaker, metrics: metrics, log: log}
}

func (s *ClickHouseStore) Put(ctx context.Context, tenantID string, span spanmodel.Span) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		query := `INSERT INTO spans ` + insertColumns + ` VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		return nil, s.conn.Exec(ctx, query,
			tenantID, span.TraceID, span.SpanID, span.ParentSpanID, span.ServiceName, span.Operation, string(span.Kind),
			span.StartTime, span.EndTime, span.LatencyMs, span.StatusCode, span.Error, span.Downstream)
	})
	s.observe("put", err)
	return s.wrapErr("put", err)
}

func (s *ClickHouseStore) PutBatch(ctx context.Context, tenantID string, spans []spanmodel.Span) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO spans `+insertColumns)
		if err != nil {
			return nil, err
		}
		for _, span := range spans {
			if err := batch.Append(
				tenantID, span.TraceID, span.SpanID, span.ParentSpanID, span.ServiceName, span.Operation, string(span.Kind),
				span.StartTime, span.EndTime, span.LatencyMs, span.StatusCode, span.Error, span.Downstream,
			); err != nil {
				return nil, err
			}
		}
		return nil, batch.Send()
	})
	s.observe("put_batch", err)
	return s.wrapErr("put_batch", err)
}

func (s *ClickHouseStore) Query(ctx context.Context, tenantID string, opts QueryOptions) ([]spanmodel.Span, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		query, args := buildQuery(tenantID, opts, limit)
		rows, err := s.conn.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var spans []spanmodel.Span
		for rows.Next() {
			var span spanmodel.Span
			var kind string
			if err := rows.Scan(
				&span.TenantID, &span.TraceID, &span.SpanID, &span.ParentSpanID, &span.ServiceName, &span.Operation, &kind,
				&span.StartTime, &span.EndTime, &span.LatencyMs, &span.StatusCode, &span.Error, &span.Downstream,
			); err != nil {
				return nil, err
			}
			span.Kind = spanmodel.Kind(kind)
			spans = append(spans, span)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return spans, nil
	})
	s.observe("query", err)
	if err != nil {
		return nil, s.wrapErr("query", err)
	}

	spans, _ := result.([]spanmodel.Span)
	filtered, err := applyFilter(opts.Filter, spans)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid span filter")
	}
	return filtered, nil
}

func (s *ClickHouseStore) observe(op string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err == gobreaker.ErrOpenState {
		outcome = "breaker_open"
	} else if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveStoreOperation(op, outcome)
}

func (s *ClickHouseStore) wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperrors.NewDependencyError(fmt.Sprintf("span_store.%s", op), err)
}

func buildQuery(tenantID string, opts QueryOptions, limit int) (string, []interface{}) {
	query := `SELECT tenant_id, trace_id, span_id, parent_span_id, service_name, operation, kind,
		start_time, end_time, latency_ms, status_code, error, downstream
		FROM spans WHERE tenant_id = ?`
	args := []interface{}{tenantID}

	if opts.TraceID != "" {
		query += ` AND trace_id = ?`
		args = append(args, opts.TraceID)
	}
	if opts.ServiceName != "" {
		query += ` AND service_name = ?`
		args = append(args, opts.ServiceName)
	}
	if !opts.Since.IsZero() {
		query += ` AND start_time >= ?`
		args = append(args, opts.Since)
	}
	if !opts.Until.IsZero() {
		query += ` AND start_time <= ?`
		args = append(args, opts.Until)
	}
	query += ` ORDER BY start_time LIMIT ?`
	args = append(args, limit)
	return query, args
}
