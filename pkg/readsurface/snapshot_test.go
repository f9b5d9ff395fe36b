package readsurface

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/internal/config"
	"github.com/archlens/archlens/pkg/reasoning"
	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/spanstore"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fixedStore struct {
	spans []spanmodel.Span
}

func (f *fixedStore) Put(ctx context.Context, tenantID string, span spanmodel.Span) error {
	return nil
}

func (f *fixedStore) PutBatch(ctx context.Context, tenantID string, spans []spanmodel.Span) error {
	return nil
}

func (f *fixedStore) Query(ctx context.Context, tenantID string, opts spanstore.QueryOptions) ([]spanmodel.Span, error) {
	return f.spans, nil
}

func newTestPipelineLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(GinkgoWriter)
	return log
}

func tightThresholds() config.ThresholdsConfig {
	return config.ThresholdsConfig{LatencyMaxMs: 100, ErrorRateMax: 0.05, DepthMax: 5, FanoutMax: 10, InDegreeMax: 5}
}

func span(service, downstream string, kind spanmodel.Kind, latencyMs float64) spanmodel.Span {
	return spanmodel.Span{
		ServiceName: service,
		Downstream:  downstream,
		Kind:        kind,
		LatencyMs:   latencyMs,
		StartTime:   time.Now(),
	}
}

var _ = Describe("snapshotSource", func() {
	It("computes a snapshot with no cache configured", func() {
		store := &fixedStore{spans: []spanmodel.Span{
			span("checkout-api", "billing-db", spanmodel.KindClient, 5000),
		}}
		src := &snapshotSource{
			store:             store,
			defaultThresholds: tightThresholds(),
			pipeline:          reasoning.New(newTestPipelineLog()),
			log:               newTestPipelineLog(),
		}

		snapshot, err := src.fetch(context.Background(), "tenant-dev")
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot.Nodes).NotTo(BeEmpty())
		Expect(snapshot.Issues).NotTo(BeEmpty())
		Expect(snapshot.Workflows).To(HaveLen(3))
	})

	It("returns an empty-issue snapshot for a healthy topology", func() {
		store := &fixedStore{spans: []spanmodel.Span{
			span("checkout-api", "", spanmodel.KindServer, 10),
		}}
		src := &snapshotSource{
			store:             store,
			defaultThresholds: tightThresholds(),
			pipeline:          reasoning.New(newTestPipelineLog()),
			log:               newTestPipelineLog(),
		}

		snapshot, err := src.fetch(context.Background(), "tenant-dev")
		Expect(err).NotTo(HaveOccurred())
		Expect(snapshot.Issues).To(BeEmpty())
		Expect(snapshot.Workflows).To(BeEmpty())
		Expect(snapshot.Recommended).To(BeNil())
	})
})
