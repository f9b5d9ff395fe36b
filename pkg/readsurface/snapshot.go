package readsurface

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/archlens/archlens/internal/config"
	apperrors "github.com/archlens/archlens/internal/errors"
	"github.com/archlens/archlens/pkg/archcache"
	"github.com/archlens/archlens/pkg/graphbuilder"
	"github.com/archlens/archlens/pkg/reasoning"
	"github.com/archlens/archlens/pkg/spanmodel"
	"github.com/archlens/archlens/pkg/spanstore"
)

const snapshotCacheKey = "current"

// OverrideSource supplies per-tenant node-type overrides (spec §6
// architecture_discovery table). discovery.Repository satisfies this.
type OverrideSource interface {
	NodeOverrides(ctx context.Context, tenantID string) (map[string]spanmodel.NodeType, error)
}

// ThresholdSource supplies per-tenant detection threshold overrides (spec
// §6 tenant_thresholds table). discovery.Repository satisfies this.
type ThresholdSource interface {
	Thresholds(ctx context.Context, tenantID string) (config.ThresholdsConfig, bool, error)
}

// snapshotSource builds a fresh Snapshot for one tenant by running the full
// detect-classify-analyze-synthesize pipeline over the tenant's current
// span snapshot (spec §4.C step 1: "stream all in-window spans").
type snapshotSource struct {
	store             spanstore.Store
	overrides         OverrideSource
	thresholds        ThresholdSource
	defaultThresholds config.ThresholdsConfig
	pipeline          *reasoning.Pipeline
	cache             *archcache.Cache[Snapshot]
	log               *logrus.Logger
}

func (s *snapshotSource) fetch(ctx context.Context, tenantID string) (*Snapshot, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tenantID, snapshotCacheKey)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, archcache.ErrCacheMiss) {
			s.log.WithFields(apperrors.LogFields(err)).Warn("analysis cache read failed, recomputing")
		}
	}

	snapshot, err := s.compute(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, snapshotCacheKey, snapshot); err != nil {
			s.log.WithFields(apperrors.LogFields(err)).Warn("analysis cache write failed")
		}
	}
	return snapshot, nil
}

func (s *snapshotSource) compute(ctx context.Context, tenantID string) (*Snapshot, error) {
	spans, err := s.store.Query(ctx, tenantID, spanstore.QueryOptions{})
	if err != nil {
		return nil, translateTimeout(err)
	}

	overrides := graphbuilder.Overrides{}
	if s.overrides != nil {
		if o, err := s.overrides.NodeOverrides(ctx, tenantID); err == nil {
			overrides = o
		} else {
			s.log.WithFields(apperrors.LogFields(err)).Warn("node override lookup failed, classifying without overrides")
		}
	}

	thresholds := s.defaultThresholds
	if s.thresholds != nil {
		if t, ok, err := s.thresholds.Thresholds(ctx, tenantID); err == nil && ok {
			thresholds = t
		} else if err != nil {
			s.log.WithFields(apperrors.LogFields(err)).Warn("threshold override lookup failed, using defaults")
		}
	}

	result, err := s.pipeline.Run(ctx, spans, overrides, thresholds)
	if err != nil {
		return nil, translateTimeout(err)
	}

	return &Snapshot{
		GeneratedAt:         time.Now().UTC(),
		Nodes:               nodeDTOs(result.Graph.Nodes()),
		Edges:               edgeDTOs(result.Graph.Edges()),
		Issues:              result.Issues,
		HasCycles:           result.Analysis.HasCycles,
		LongestCriticalPath: result.Analysis.LongestCriticalPath,
		Betweenness:         result.Analysis.Betweenness,
		Workflows:           result.Workflows,
		Recommended:         result.Recommended,
	}, nil
}

// translateTimeout maps a caller-deadline cancellation to the spec §5
// "timeout failure" contract: the operation aborts and surfaces a
// dependency-unavailable error rather than a partial result.
func translateTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrorTypeDependency, "analysis aborted: caller deadline exceeded")
	}
	return err
}
