// Package archmetrics exposes the Prometheus instrumentation shared by the
// ingestion front and the read surface.
package archmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector archlens registers. It is
// constructed once per process and injected into the ingestion front and
// read surface, rather than relying on promauto's global registry directly,
// so tests can construct an isolated registry.
type Metrics struct {
	IngestAccepted  *prometheus.CounterVec
	IngestRejected  *prometheus.CounterVec
	QueueDepth      *prometheus.GaugeVec
	ReadLatency     *prometheus.HistogramVec
	ReadRequests    *prometheus.CounterVec
	StoreOperations *prometheus.CounterVec
}

// New registers archlens' collectors against reg and returns the handle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestAccepted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archlens",
			Subsystem: "ingest",
			Name:      "spans_accepted_total",
			Help:      "Spans accepted by the ingestion front, by tenant.",
		}, []string{"tenant"}),
		IngestRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archlens",
			Subsystem: "ingest",
			Name:      "spans_rejected_total",
			Help:      "Spans rejected by the ingestion front, by tenant and reason.",
		}, []string{"tenant", "reason"}),
		QueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "archlens",
			Subsystem: "ingest",
			Name:      "queue_depth",
			Help:      "Current depth of the per-tenant ingestion queue.",
		}, []string{"tenant"}),
		ReadLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "archlens",
			Subsystem: "read",
			Name:      "request_duration_seconds",
			Help:      "Read-surface request latency by normalized route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		ReadRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archlens",
			Subsystem: "read",
			Name:      "requests_total",
			Help:      "Read-surface requests by normalized route and status.",
		}, []string{"route", "status"}),
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archlens",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Span store operations by kind and outcome (ok, error, breaker_open).",
		}, []string{"operation", "outcome"}),
	}
}

// ObserveIngest records the outcome of accepting or rejecting a span for
// tenant.
func (m *Metrics) ObserveIngest(tenant string, accepted bool, reason string) {
	if accepted {
		m.IngestAccepted.WithLabelValues(tenant).Inc()
		return
	}
	m.IngestRejected.WithLabelValues(tenant, reason).Inc()
}

// SetQueueDepth records the current depth of tenant's ingestion queue.
func (m *Metrics) SetQueueDepth(tenant string, depth int) {
	m.QueueDepth.WithLabelValues(tenant).Set(float64(depth))
}

// ObserveStoreOperation records the outcome of a span-store call.
func (m *Metrics) ObserveStoreOperation(operation, outcome string) {
	m.StoreOperations.WithLabelValues(operation, outcome).Inc()
}

// HTTPMiddleware wraps next, recording request count and latency under the
// cardinality-safe normalized path.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := normalizePath(r.URL.Path)
		status := strconv.Itoa(sw.status)
		m.ReadRequests.WithLabelValues(route, status).Inc()
		m.ReadLatency.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
	})
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusCapturingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
