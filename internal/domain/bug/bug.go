// Package bug defines the domain model for bug runs and their fix plans.
package bug

import "time"

// Status is the lifecycle state of a bug run.
type Status string

const (
	// StatusPlanned means a fix plan exists (or is being drafted) but has
	// not been approved for execution.
	StatusPlanned Status = "planned"
	// StatusFixApproved means the fix plan cleared its gate and may be
	// executed.
	StatusFixApproved Status = "fix_approved"
)

// RiskLevel classifies a fix plan's blast radius.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Allowed reports whether the risk level is eligible for auto-approval.
// Unrecognized levels are treated as disallowed.
func (r RiskLevel) Allowed() bool {
	return r == RiskLow || r == RiskMedium
}

// FixPlan is an upstream reviewer's proposed fix for a bug.
type FixPlan struct {
	Summary           string    `json:"summary"`
	Confidence        float64   `json:"confidence"`
	RiskLevel         RiskLevel `json:"risk_level"`
	BreaksAPI         bool      `json:"breaks_api"`
	RequiresMigration bool      `json:"requires_migration"`
}

// Bug is the persisted state of one bug run.
type Bug struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	ManualMode bool      `json:"manual_mode"`
	Plan       *FixPlan  `json:"plan,omitempty"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateRequest is the payload for registering a new bug run.
type CreateRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
