package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/approval"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// GreenlightGate is a compound structural gate: every issue must have passed
// its complexity check, the dependency graph must be acyclic, and every issue
// must carry an interface contract.
type GreenlightGate struct {
	store statestore.Store
}

// NewGreenlightGate creates a GreenlightGate over the given store.
func NewGreenlightGate(store statestore.Store) *GreenlightGate {
	return &GreenlightGate{store: store}
}

// Kind identifies the gate for transitions and audit entries.
func (gg *GreenlightGate) Kind() approval.Kind { return approval.KindGreenlight }

// ShouldApprove runs the structural checks over the feature's issue set.
func (gg *GreenlightGate) ShouldApprove(ctx context.Context, featureID string) (bool, string, error) {
	rs, err := gg.store.GetRunState(ctx, featureID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, "feature state not found", nil
	}
	if err != nil {
		return false, "", err
	}

	if len(rs.Issues) == 0 {
		return false, "no issues to greenlight", nil
	}

	failing := 0
	for _, is := range rs.Issues {
		if !is.ComplexityPassed {
			failing++
		}
	}
	if failing > 0 {
		return false, fmt.Sprintf("%d issue(s) failed the complexity gate", failing), nil
	}

	if feature.HasDependencyCycle(rs.Issues) {
		return false, "Circular dependency detected between issues", nil
	}

	missing := 0
	for _, is := range rs.Issues {
		if is.InterfaceContract == "" {
			missing++
		}
	}
	if missing > 0 {
		return false, fmt.Sprintf("%d issue(s) missing an interface contract", missing), nil
	}

	return true, fmt.Sprintf("all %d issues passed structural checks", len(rs.Issues)), nil
}
