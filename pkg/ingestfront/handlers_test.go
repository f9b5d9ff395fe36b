package ingestfront

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/archlens/archlens/pkg/tenancy"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestServer(store *recordingStore) *Server {
	schema, err := NewSchemaValidator()
	Expect(err).NotTo(HaveOccurred())
	evaluator, err := tenancy.NewEvaluator(context.Background())
	Expect(err).NotTo(HaveOccurred())
	queue := NewQueue(100, store, nil, newTestLog())
	return NewServer(schema, queue, evaluator, newTestLog())
}

var _ = Describe("Server", func() {
	var store *recordingStore
	var server *Server

	BeforeEach(func() {
		store = &recordingStore{}
		server = newTestServer(store)
	})

	It("answers liveness checks without authentication", func() {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["status"]).To(Equal("healthy"))
	})

	It("rejects ingest without a bearer token", func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/spans", bytes.NewBufferString(validSpanJSON))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("accepts a well-formed span with a valid ingest token", func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/spans", bytes.NewBufferString(validSpanJSON))
		req.Header.Set("Authorization", "Bearer dev-ingest-token")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusAccepted))
		var body ingestResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Status).To(Equal("accepted"))
		Eventually(store.count).Should(Equal(1))
	})

	It("rejects a span with an invalid kind", func() {
		badKind := `{"trace_id":"t","span_id":"s","service_name":"svc","operation":"op","kind":"batch","start_time":"2026-01-01T00:00:00Z","end_time":"2026-01-01T00:00:01Z"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/spans", bytes.NewBufferString(badKind))
		req.Header.Set("Authorization", "Bearer dev-ingest-token")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects a read-scoped token used for ingest", func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/spans", bytes.NewBufferString(validSpanJSON))
		req.Header.Set("Authorization", "Bearer dev-read-token")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("reports per-item outcomes for a batch ingest", func() {
		good := validSpanJSON
		bad := `{"trace_id":"t","span_id":"s2","service_name":"svc","operation":"op","kind":"batch","start_time":"2026-01-01T00:00:00Z","end_time":"2026-01-01T00:00:01Z"}`
		batch := "[" + good + "," + bad + "]"
		req := httptest.NewRequest(http.MethodPost, "/v1/spans/batch", bytes.NewBufferString(batch))
		req.Header.Set("Authorization", "Bearer dev-ingest-token")
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusAccepted))
		var body struct {
			Accepted int `json:"accepted"`
			Rejected []struct {
				Index  int    `json:"index"`
				Reason string `json:"reason"`
			} `json:"rejected"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Accepted).To(Equal(1))
		Expect(body.Rejected).To(HaveLen(1))
		Expect(body.Rejected[0].Index).To(Equal(1))
	})
})
