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

// BugFixGate approves a bug fix plan only when its risk is auto-approvable,
// its confidence clears the threshold, and it is fully reversible. API breaks
// and migration steps deny unconditionally.
type BugFixGate struct {
	store     statestore.Store
	threshold float64
}

// NewBugFixGate creates a BugFixGate with the configured confidence threshold.
func NewBugFixGate(store statestore.Store, cfg config.Gates) *BugFixGate {
	return &BugFixGate{store: store, threshold: cfg.FixConfidenceThreshold}
}

// Kind identifies the gate for transitions and audit entries.
func (bg *BugFixGate) Kind() approval.Kind { return approval.KindBugFix }

// ShouldApprove checks the bug's fix plan against the risk and confidence policy.
func (bg *BugFixGate) ShouldApprove(ctx context.Context, bugID string) (bool, string, error) {
	b, err := bg.store.GetBug(ctx, bugID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, "bug state not found", nil
	}
	if err != nil {
		return false, "", err
	}

	plan := b.Plan
	if plan == nil {
		return false, "no fix plan recorded", nil
	}
	if !plan.RiskLevel.Allowed() {
		return false, fmt.Sprintf("risk level %q is not auto-approvable", plan.RiskLevel), nil
	}
	if plan.Confidence < bg.threshold {
		return false, fmt.Sprintf("confidence %.2f below threshold %.2f", plan.Confidence, bg.threshold), nil
	}
	if plan.BreaksAPI {
		return false, "fix plan breaks the public API", nil
	}
	if plan.RequiresMigration {
		return false, "fix plan requires a migration step", nil
	}
	return true, fmt.Sprintf("confidence %.2f with %s risk", plan.Confidence, plan.RiskLevel), nil
}

// Confidence re-reads the stored plan so the decision reflects the current value.
func (bg *BugFixGate) Confidence(ctx context.Context, bugID string) float64 {
	b, err := bg.store.GetBug(ctx, bugID)
	if err != nil || b.Plan == nil {
		return 0
	}
	return b.Plan.Confidence
}
