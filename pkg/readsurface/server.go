package readsurface

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/internal/config"
	apperrors "github.com/archlens/archlens/internal/errors"
	"github.com/archlens/archlens/pkg/archcache"
	"github.com/archlens/archlens/pkg/archmetrics"
	"github.com/archlens/archlens/pkg/reasoning"
	"github.com/archlens/archlens/pkg/spanstore"
	"github.com/archlens/archlens/pkg/tenancy"
)

// Server is the read surface's HTTP API (spec §4.G).
type Server struct {
	source  *snapshotSource
	tenancy *tenancy.Evaluator
	metrics *archmetrics.Metrics
	log     *logrus.Logger
}

// NewServer wires a Server from its dependencies. cache may be nil to
// disable response caching entirely.
func NewServer(
	store spanstore.Store,
	overrides OverrideSource,
	thresholds ThresholdSource,
	defaultThresholds config.ThresholdsConfig,
	pipeline *reasoning.Pipeline,
	cache *archcache.Cache[Snapshot],
	tenancyEvaluator *tenancy.Evaluator,
	metrics *archmetrics.Metrics,
	log *logrus.Logger,
) *Server {
	return &Server{
		source: &snapshotSource{
			store:             store,
			overrides:         overrides,
			thresholds:        thresholds,
			defaultThresholds: defaultThresholds,
			pipeline:          pipeline,
			cache:             cache,
			log:               log,
		},
		tenancy: tenancyEvaluator,
		metrics: metrics,
		log:     log,
	}
}

// Router builds the chi router for the read surface: CORS, per-request
// metrics, then tenant authentication ahead of every operation.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/v1/architecture/current", s.handleArchitectureCurrent)
		r.Get("/v1/architecture/issues", s.handleArchitectureIssues)
		r.Get("/v1/workflows/generated", s.handleWorkflowsGenerated)
		r.Get("/v1/workflows/comparison", s.handleWorkflowsComparison)
		r.Get("/v1/graph/analysis", s.handleGraphAnalysis)
	})
	return r
}

type tenantContextKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		decision, err := s.tenancy.Authorize(r.Context(), token, tenancy.OperationRead)
		if err != nil || !decision.Allowed {
			writeError(w, apperrors.NewAuthError("missing or invalid tenant credential"))
			return
		}
		ctx := setTenant(r.Context(), decision.TenantID)
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
