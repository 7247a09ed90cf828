// Package tiered provides a cached read layer over the state store.
package tiered

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/port/cache"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// Store decorates a statestore.Store with a read-through cache for subject
// lookups. Every write goes to the inner store and invalidates the cached
// entry, so API reads may be served from cache while gate evaluation keeps
// using the inner store directly for fresh state.
type Store struct {
	inner statestore.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates the cached decorator.
func NewStore(inner statestore.Store, c cache.Cache, ttl time.Duration) *Store {
	return &Store{inner: inner, cache: c, ttl: ttl}
}

func featureKey(id string) string { return "feature:" + id }
func bugKey(id string) string     { return "bug:" + id }

// GetRunState serves from cache when possible, filling it on a miss.
func (s *Store) GetRunState(ctx context.Context, featureID string) (*feature.RunState, error) {
	key := featureKey(featureID)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var rs feature.RunState
		if err := json.Unmarshal(data, &rs); err == nil {
			return &rs, nil
		}
		// Unreadable entry: drop it and fall through to the store.
		_ = s.cache.Delete(ctx, key)
	}

	rs, err := s.inner.GetRunState(ctx, featureID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, rs)
	return rs, nil
}

// GetBug serves from cache when possible, filling it on a miss.
func (s *Store) GetBug(ctx context.Context, bugID string) (*bug.Bug, error) {
	key := bugKey(bugID)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var b bug.Bug
		if err := json.Unmarshal(data, &b); err == nil {
			return &b, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	b, err := s.inner.GetBug(ctx, bugID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, b)
	return b, nil
}

func (s *Store) fill(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, s.ttl)
}

// --- Writes: delegate and invalidate ---

func (s *Store) CreateFeature(ctx context.Context, req feature.CreateRequest) (*feature.RunState, error) {
	rs, err := s.inner.CreateFeature(ctx, req)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, featureKey(req.FeatureID))
	return rs, nil
}

func (s *Store) AddRoundScore(ctx context.Context, featureID string, score feature.RoundScore) error {
	return s.invalidateFeature(ctx, featureID, s.inner.AddRoundScore(ctx, featureID, score))
}

func (s *Store) SetIssues(ctx context.Context, featureID string, issues []feature.Issue) error {
	return s.invalidateFeature(ctx, featureID, s.inner.SetIssues(ctx, featureID, issues))
}

func (s *Store) ApproveSpec(ctx context.Context, featureID string) error {
	return s.invalidateFeature(ctx, featureID, s.inner.ApproveSpec(ctx, featureID))
}

func (s *Store) GreenlightFeature(ctx context.Context, featureID string) error {
	return s.invalidateFeature(ctx, featureID, s.inner.GreenlightFeature(ctx, featureID))
}

func (s *Store) VetoSpecApproval(ctx context.Context, featureID, reason string) error {
	return s.invalidateFeature(ctx, featureID, s.inner.VetoSpecApproval(ctx, featureID, reason))
}

func (s *Store) CreateBug(ctx context.Context, req bug.CreateRequest) (*bug.Bug, error) {
	b, err := s.inner.CreateBug(ctx, req)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, bugKey(req.ID))
	return b, nil
}

func (s *Store) SetFixPlan(ctx context.Context, bugID string, plan bug.FixPlan) error {
	return s.invalidateBug(ctx, bugID, s.inner.SetFixPlan(ctx, bugID, plan))
}

func (s *Store) ApproveFix(ctx context.Context, bugID string) error {
	return s.invalidateBug(ctx, bugID, s.inner.ApproveFix(ctx, bugID))
}

func (s *Store) VetoFixApproval(ctx context.Context, bugID, reason string) error {
	return s.invalidateBug(ctx, bugID, s.inner.VetoFixApproval(ctx, bugID, reason))
}

// SetManualMode invalidates both namespaces: the subject may be either kind.
func (s *Store) SetManualMode(ctx context.Context, subjectID string, enabled bool) error {
	if err := s.inner.SetManualMode(ctx, subjectID, enabled); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, featureKey(subjectID))
	_ = s.cache.Delete(ctx, bugKey(subjectID))
	return nil
}

// IsManualMode is never cached; gate suppression must see the live flag.
func (s *Store) IsManualMode(ctx context.Context, subjectID string) (bool, error) {
	return s.inner.IsManualMode(ctx, subjectID)
}

func (s *Store) invalidateFeature(ctx context.Context, featureID string, err error) error {
	if err != nil {
		return err
	}
	if derr := s.cache.Delete(ctx, featureKey(featureID)); derr != nil {
		return fmt.Errorf("invalidate feature %s: %w", featureID, derr)
	}
	return nil
}

func (s *Store) invalidateBug(ctx context.Context, bugID string, err error) error {
	if err != nil {
		return err
	}
	if derr := s.cache.Delete(ctx, bugKey(bugID)); derr != nil {
		return fmt.Errorf("invalidate bug %s: %w", bugID, derr)
	}
	return nil
}
