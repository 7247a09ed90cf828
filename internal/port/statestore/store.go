// Package statestore defines the subject state store port (interface).
package statestore

import (
	"context"

	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
)

// Store is the port interface for reading and transitioning feature and
// bug run state. Gates read through it and apply their effects through
// it; they never hold state of their own.
type Store interface {
	// Features
	CreateFeature(ctx context.Context, req feature.CreateRequest) (*feature.RunState, error)
	GetRunState(ctx context.Context, featureID string) (*feature.RunState, error)
	AddRoundScore(ctx context.Context, featureID string, score feature.RoundScore) error
	SetIssues(ctx context.Context, featureID string, issues []feature.Issue) error
	ApproveSpec(ctx context.Context, featureID string) error
	GreenlightFeature(ctx context.Context, featureID string) error
	VetoSpecApproval(ctx context.Context, featureID, reason string) error

	// Bugs
	CreateBug(ctx context.Context, req bug.CreateRequest) (*bug.Bug, error)
	GetBug(ctx context.Context, bugID string) (*bug.Bug, error)
	SetFixPlan(ctx context.Context, bugID string, plan bug.FixPlan) error
	ApproveFix(ctx context.Context, bugID string) error
	VetoFixApproval(ctx context.Context, bugID, reason string) error

	// Manual mode applies per subject, feature or bug alike.
	SetManualMode(ctx context.Context, subjectID string, enabled bool) error
	IsManualMode(ctx context.Context, subjectID string) (bool, error)
}
