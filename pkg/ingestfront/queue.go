package ingestfront

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/archlens/archlens/internal/errors"
	"github.com/archlens/archlens/pkg/archmetrics"
	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/spanstore"
)

// flushTimeout bounds how long a single queued span's durable write may
// take before the consumer gives up and logs it as a storage failure,
// rather than blocking a tenant's queue indefinitely on one slow write.
const flushTimeout = 5 * time.Second

// Queue absorbs ingestion bursts per tenant without blocking the request
// thread on the span store's durable write (spec §4.B). Each tenant gets
// its own bounded channel and consumer goroutine; when a tenant's channel
// is full, Enqueue sheds the new span immediately with a retryable
// rejection rather than blocking or evicting what is already queued.
type Queue struct {
	capacity int
	store    spanstore.Store
	metrics  *archmetrics.Metrics
	log      *logrus.Logger

	mu      sync.Mutex
	tenants map[string]chan spanmodel.Span
	wg      sync.WaitGroup
}

// NewQueue builds a queue with the given per-tenant channel capacity.
func NewQueue(capacity int, store spanstore.Store, metrics *archmetrics.Metrics, log *logrus.Logger) *Queue {
	return &Queue{
		capacity: capacity,
		store:    store,
		metrics:  metrics,
		log:      log,
		tenants:  make(map[string]chan spanmodel.Span),
	}
}

// Enqueue accepts span for asynchronous durable persistence. It returns a
// quota AppError (mapped to HTTP 429 by the read/ingest error translation)
// when the tenant's queue is saturated.
func (q *Queue) Enqueue(tenantID string, span spanmodel.Span) error {
	ch := q.channelFor(tenantID)
	select {
	case ch <- span:
		return nil
	default:
		if q.metrics != nil {
			q.metrics.ObserveIngest(tenantID, false, "queue_saturated")
		}
		return apperrors.NewQuotaError("ingestion queue saturated for tenant, span dropped").
			WithDetails("retry after backing off; this span was not accepted")
	}
}

func (q *Queue) channelFor(tenantID string) chan spanmodel.Span {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ch, ok := q.tenants[tenantID]; ok {
		return ch
	}
	ch := make(chan spanmodel.Span, q.capacity)
	q.tenants[tenantID] = ch
	q.wg.Add(1)
	go q.consume(tenantID, ch)
	return ch
}

func (q *Queue) consume(tenantID string, ch chan spanmodel.Span) {
	defer q.wg.Done()
	for span := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		err := q.store.Put(ctx, tenantID, span)
		cancel()

		accepted := err == nil
		reason := ""
		if !accepted {
			reason = "store_put_failed"
		}
		if q.metrics != nil {
			q.metrics.ObserveIngest(tenantID, accepted, reason)
		}
		if err != nil {
			q.log.WithFields(apperrors.LogFields(err)).
				WithField("tenant_id", tenantID).
				WithField("span_id", span.SpanID).
				Error("queued span failed to persist")
		}
	}
}

// Close stops accepting new tenant channels' senders cleanly by closing
// every channel and waiting for its consumer to drain. Callers must not
// call Enqueue concurrently with Close.
func (q *Queue) Close() {
	q.mu.Lock()
	for _, ch := range q.tenants {
		close(ch)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
