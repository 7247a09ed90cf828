package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/quorumforge/verdict/internal/config"
	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/approval"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// SpecGate approves a feature spec once enough consecutive debate rounds
// score at or above the approval threshold.
type SpecGate struct {
	store          statestore.Store
	threshold      float64
	requiredRounds int
}

// NewSpecGate creates a SpecGate with the configured thresholds.
func NewSpecGate(store statestore.Store, cfg config.Gates) *SpecGate {
	return &SpecGate{
		store:          store,
		threshold:      cfg.SpecApprovalThreshold,
		requiredRounds: cfg.SpecRequiredRounds,
	}
}

// Kind identifies the gate for transitions and audit entries.
func (sg *SpecGate) Kind() approval.Kind { return approval.KindSpec }

// ShouldApprove checks the most recent required rounds against the threshold.
func (sg *SpecGate) ShouldApprove(ctx context.Context, featureID string) (bool, string, error) {
	rs, err := sg.store.GetRunState(ctx, featureID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, "feature state not found", nil
	}
	if err != nil {
		return false, "", err
	}

	if len(rs.Scores) < sg.requiredRounds {
		return false, fmt.Sprintf("%d of %d required scored rounds recorded", len(rs.Scores), sg.requiredRounds), nil
	}

	recent := rs.Scores[len(rs.Scores)-sg.requiredRounds:]
	latest := recent[len(recent)-1].Value()
	for _, sc := range recent {
		if sc.Value() < sg.threshold {
			return false, fmt.Sprintf("latest average %.2f, not all of the last %d rounds reached %.2f", latest, sg.requiredRounds, sg.threshold), nil
		}
	}
	return true, fmt.Sprintf("latest average %.2f, last %d rounds at or above %.2f", latest, sg.requiredRounds, sg.threshold), nil
}

// Confidence reports the latest round average for an approved decision.
func (sg *SpecGate) Confidence(ctx context.Context, featureID string) float64 {
	rs, err := sg.store.GetRunState(ctx, featureID)
	if err != nil || len(rs.Scores) == 0 {
		return 0
	}
	return rs.Scores[len(rs.Scores)-1].Value()
}
