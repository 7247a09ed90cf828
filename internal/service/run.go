package service

import (
	"context"
	"fmt"

	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// RunService handles feature and bug run lifecycle: registration, score
// recording, issue lists, and fix plans. Gate evaluation is separate; the
// orchestrator feeds state in here and asks the Gatekeeper afterwards.
type RunService struct {
	store statestore.Store
	reads statestore.Store
}

// NewRunService creates a RunService. reads may be a cached decorator over
// store; it serves lookups only, every write goes to store directly.
func NewRunService(store, reads statestore.Store) *RunService {
	if reads == nil {
		reads = store
	}
	return &RunService{store: store, reads: reads}
}

// CreateFeature registers a new feature run in awaiting approval state.
func (s *RunService) CreateFeature(ctx context.Context, req feature.CreateRequest) (*feature.RunState, error) {
	if req.FeatureID == "" {
		return nil, fmt.Errorf("%w: feature_id is required", domain.ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.store.CreateFeature(ctx, req)
}

// GetRunState returns the current state of a feature run.
func (s *RunService) GetRunState(ctx context.Context, featureID string) (*feature.RunState, error) {
	return s.reads.GetRunState(ctx, featureID)
}

// AddRoundScore appends one debate round score to a feature run.
func (s *RunService) AddRoundScore(ctx context.Context, featureID string, score feature.RoundScore) error {
	if score.Average == nil && score.Components == nil {
		return fmt.Errorf("%w: score needs an average or components", domain.ErrValidation)
	}
	if v := score.Value(); v < 0 || v > 1 {
		return fmt.Errorf("%w: score value %.2f outside [0, 1]", domain.ErrValidation, v)
	}
	return s.store.AddRoundScore(ctx, featureID, score)
}

// SetIssues replaces a feature run's issue list.
func (s *RunService) SetIssues(ctx context.Context, featureID string, issues []feature.Issue) error {
	seen := make(map[string]bool, len(issues))
	for _, is := range issues {
		if is.ID == "" {
			return fmt.Errorf("%w: issue id is required", domain.ErrValidation)
		}
		if seen[is.ID] {
			return fmt.Errorf("%w: duplicate issue id %q", domain.ErrValidation, is.ID)
		}
		seen[is.ID] = true
	}
	return s.store.SetIssues(ctx, featureID, issues)
}

// CreateBug registers a new bug run in planned state.
func (s *RunService) CreateBug(ctx context.Context, req bug.CreateRequest) (*bug.Bug, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return s.store.CreateBug(ctx, req)
}

// GetBug returns the current state of a bug run.
func (s *RunService) GetBug(ctx context.Context, bugID string) (*bug.Bug, error) {
	return s.reads.GetBug(ctx, bugID)
}

// SetFixPlan records the proposed fix for a bug.
func (s *RunService) SetFixPlan(ctx context.Context, bugID string, plan bug.FixPlan) error {
	if plan.Confidence < 0 || plan.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.2f outside [0, 1]", domain.ErrValidation, plan.Confidence)
	}
	if plan.RiskLevel == "" {
		return fmt.Errorf("%w: risk_level is required", domain.ErrValidation)
	}
	return s.store.SetFixPlan(ctx, bugID, plan)
}
