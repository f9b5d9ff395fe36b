package ingestfront

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/spanstore"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingStore struct {
	mu    sync.Mutex
	spans []spanmodel.Span
}

func (s *recordingStore) Put(ctx context.Context, tenantID string, span spanmodel.Span) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spans = append(s.spans, span)
	return nil
}

func (s *recordingStore) PutBatch(ctx context.Context, tenantID string, spans []spanmodel.Span) error {
	for _, span := range spans {
		if err := s.Put(ctx, tenantID, span); err != nil {
			return err
		}
	}
	return nil
}

func (s *recordingStore) Query(ctx context.Context, tenantID string, opts spanstore.QueryOptions) ([]spanmodel.Span, error) {
	return nil, nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spans)
}

func newTestLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(GinkgoWriter)
	return log
}

var _ = Describe("Queue", func() {
	It("persists an enqueued span asynchronously", func() {
		store := &recordingStore{}
		q := NewQueue(10, store, nil, newTestLog())
		defer q.Close()

		Expect(q.Enqueue("tenant-a", spanmodel.Span{SpanID: "s1"})).To(Succeed())
		Eventually(store.count).Should(Equal(1))
	})

	It("sheds new spans once a tenant's channel is saturated", func() {
		store := &blockingStore{unblock: make(chan struct{})}
		q := NewQueue(1, store, nil, newTestLog())
		defer func() {
			close(store.unblock)
			q.Close()
		}()

		Expect(q.Enqueue("tenant-b", spanmodel.Span{SpanID: "s1"})).To(Succeed())
		Eventually(store.started).Should(BeTrue())

		Expect(q.Enqueue("tenant-b", spanmodel.Span{SpanID: "s2"})).To(Succeed())
		err := q.Enqueue("tenant-b", spanmodel.Span{SpanID: "s3"})
		Expect(err).To(HaveOccurred())
	})

	It("keeps separate capacity per tenant", func() {
		store := &recordingStore{}
		q := NewQueue(1, store, nil, newTestLog())
		defer q.Close()

		Expect(q.Enqueue("tenant-a", spanmodel.Span{SpanID: "a1"})).To(Succeed())
		Expect(q.Enqueue("tenant-b", spanmodel.Span{SpanID: "b1"})).To(Succeed())
		Eventually(store.count).Should(Equal(2))
	})
})

type blockingStore struct {
	mu      sync.Mutex
	active  bool
	unblock chan struct{}
}

func (s *blockingStore) Put(ctx context.Context, tenantID string, span spanmodel.Span) error {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	<-s.unblock
	return nil
}

func (s *blockingStore) PutBatch(ctx context.Context, tenantID string, spans []spanmodel.Span) error {
	return nil
}

func (s *blockingStore) Query(ctx context.Context, tenantID string, opts spanstore.QueryOptions) ([]spanmodel.Span, error) {
	return nil, nil
}

func (s *blockingStore) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
