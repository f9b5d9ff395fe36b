package ingestfront

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const validSpanJSON = `{
	"trace_id": "abc123",
	"span_id": "span-1",
	"service_name": "checkout-api",
	"operation": "POST /checkout",
	"kind": "server",
	"start_time": "2026-01-01T00:00:00Z",
	"end_time": "2026-01-01T00:00:01Z",
	"latency_ms": 120
}`

var _ = Describe("SchemaValidator", func() {
	var validator *SchemaValidator

	BeforeEach(func() {
		v, err := NewSchemaValidator()
		Expect(err).NotTo(HaveOccurred())
		validator = v
	})

	Describe("ValidateSpan", func() {
		It("accepts a well-formed span", func() {
			Expect(validator.ValidateSpan([]byte(validSpanJSON))).To(Succeed())
		})

		It("rejects a span missing a required field", func() {
			missingKind := `{"trace_id":"t","span_id":"s","service_name":"svc","operation":"op","start_time":"2026-01-01T00:00:00Z","end_time":"2026-01-01T00:00:01Z"}`
			Expect(validator.ValidateSpan([]byte(missingKind))).To(HaveOccurred())
		})

		It("rejects a kind outside the enumerated set", func() {
			badKind := `{"trace_id":"t","span_id":"s","service_name":"svc","operation":"op","kind":"batch","start_time":"2026-01-01T00:00:00Z","end_time":"2026-01-01T00:00:01Z"}`
			Expect(validator.ValidateSpan([]byte(badKind))).To(HaveOccurred())
		})

		It("rejects malformed JSON", func() {
			Expect(validator.ValidateSpan([]byte("{not json"))).To(HaveOccurred())
		})
	})

	Describe("ValidateBatch", func() {
		It("accepts an array of well-formed spans", func() {
			batch := "[" + validSpanJSON + "]"
			Expect(validator.ValidateBatch([]byte(batch))).To(Succeed())
		})

		It("rejects an empty array", func() {
			Expect(validator.ValidateBatch([]byte("[]"))).To(HaveOccurred())
		})

		It("rejects a non-array body", func() {
			Expect(validator.ValidateBatch([]byte(validSpanJSON))).To(HaveOccurred())
		})
	})
})
