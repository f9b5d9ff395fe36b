package archmetrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	_ = g.Write(m)
	return m.GetGauge().GetValue()
}

var _ = Describe("Metrics", func() {
	var (
		reg *prometheus.Registry
		m   *Metrics
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		m = New(reg)
	})

	Describe("ObserveIngest", func() {
		It("increments the accepted counter for an accepted span", func() {
			m.ObserveIngest("tenant-a", true, "")
			Expect(counterValue(m.IngestAccepted.WithLabelValues("tenant-a"))).To(Equal(1.0))
		})

		It("increments the rejected counter with a reason label", func() {
			m.ObserveIngest("tenant-a", false, "queue_saturated")
			Expect(counterValue(m.IngestRejected.WithLabelValues("tenant-a", "queue_saturated"))).To(Equal(1.0))
		})
	})

	Describe("SetQueueDepth", func() {
		It("records the current depth for a tenant", func() {
			m.SetQueueDepth("tenant-a", 42)
			Expect(gaugeValue(m.QueueDepth.WithLabelValues("tenant-a"))).To(Equal(42.0))
		})
	})

	Describe("ObserveStoreOperation", func() {
		It("increments by operation and outcome", func() {
			m.ObserveStoreOperation("query", "ok")
			Expect(counterValue(m.StoreOperations.WithLabelValues("query", "ok"))).To(Equal(1.0))
		})
	})

	Describe("HTTPMiddleware", func() {
		It("records request count under the normalized route", func() {
			handler := m.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows/550e8400-e29b-41d4-a716-446655440000", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			Expect(counterValue(m.ReadRequests.WithLabelValues("/api/v1/workflows/:id", "200"))).To(Equal(1.0))
		})
	})
})
