package ingestfront

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	apperrors "github.com/archlens/archlens/internal/errors"
	"github.com/archlens/archlens/internal/validation"
	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/tenancy"
)

// maxBatchSpans bounds a single batch ingest request (spec §6: "≤ N spans;
// N ≥ 100 required").
const maxBatchSpans = 1000

// Server is the ingestion front's HTTP surface (spec §4.B, §6).
type Server struct {
	schema  *SchemaValidator
	queue   *Queue
	tenancy *tenancy.Evaluator
	log     *logrus.Logger
}

// NewServer wires a Server from its dependencies.
func NewServer(schema *SchemaValidator, queue *Queue, tenancyEvaluator *tenancy.Evaluator, log *logrus.Logger) *Server {
	return &Server{schema: schema, queue: queue, tenancy: tenancyEvaluator, log: log}
}

// Router builds the chi router for the ingestion front.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleLiveness)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/v1/spans", s.handleIngestSingle)
		r.Post("/v1/spans/batch", s.handleIngestBatch)
	})
	return r
}

type tenantContextKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		decision, err := s.tenancy.Authorize(r.Context(), token, tenancy.OperationIngest)
		if err != nil || !decision.Allowed {
			s.log.WithField("path", r.URL.Path).Debug("rejected unauthenticated or unauthorized ingest request")
			writeError(w, apperrors.NewAuthError("missing or invalid tenant credential"))
			return
		}
		ctx := r.Context()
		ctx = setTenant(ctx, decision.TenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ingestResult is the per-span outcome the single-span and batch endpoints
// share.
type ingestResult struct {
	Status string `json:"status"`
	SpanID string `json:"span_id"`
}

type batchRejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (s *Server) handleIngestSingle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, validation.MaxSpanPayloadBytes+1))
	if err != nil {
		writeError(w, apperrors.NewValidationError("could not read request body"))
		return
	}
	if err := validation.ValidatePayloadSize(raw); err != nil {
		writeError(w, apperrors.NewValidationError(err.Error()))
		return
	}
	if err := s.schema.ValidateSpan(raw); err != nil {
		writeError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	var span spanmodel.Span
	if err := json.Unmarshal(raw, &span); err != nil {
		writeError(w, apperrors.NewValidationError("malformed span JSON"))
		return
	}
	span.TenantID = tenantFrom(r.Context())

	if err := validation.ValidateSpan(&span); err != nil {
		writeError(w, apperrors.NewValidationError(err.Error()))
		return
	}

	if err := s.queue.Enqueue(span.TenantID, span); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResult{Status: "accepted", SpanID: span.SpanID})
}

// handleIngestBatch validates and enqueues each span in the array
// independently: a schema or field violation on one element is recorded as
// a per-index rejection rather than failing the whole request (spec §6:
// "a single bad span does not fail the batch").
func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, int64(validation.MaxSpanPayloadBytes*maxBatchSpans)+1))
	if err != nil {
		writeError(w, apperrors.NewValidationError("could not read request body"))
		return
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		writeError(w, apperrors.NewValidationError("malformed span batch JSON: body must be a JSON array"))
		return
	}
	if len(items) == 0 || len(items) > maxBatchSpans {
		writeError(w, apperrors.NewValidationError("batch size must be between 1 and 1000 spans"))
		return
	}

	tenantID := tenantFrom(r.Context())
	accepted := 0
	var rejected []batchRejection
	for i, item := range items {
		if err := s.schema.ValidateSpan(item); err != nil {
			rejected = append(rejected, batchRejection{Index: i, Reason: err.Error()})
			continue
		}

		var span spanmodel.Span
		if err := json.Unmarshal(item, &span); err != nil {
			rejected = append(rejected, batchRejection{Index: i, Reason: "malformed span JSON"})
			continue
		}
		span.TenantID = tenantID

		if err := validation.ValidateSpan(&span); err != nil {
			rejected = append(rejected, batchRejection{Index: i, Reason: err.Error()})
			continue
		}
		if err := s.queue.Enqueue(tenantID, span); err != nil {
			rejected = append(rejected, batchRejection{Index: i, Reason: apperrors.SafeErrorMessage(err)})
			continue
		}
		accepted++
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": accepted,
		"rejected": rejected,
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
