// Package feature defines the domain model for feature runs moving
// through the spec-debate and greenlight pipeline.
package feature

import "time"

// Status is the lifecycle state of a feature run.
type Status string

const (
	// StatusAwaitingApproval means the spec is still being debated.
	StatusAwaitingApproval Status = "awaiting_approval"
	// StatusSpecApproved means the spec cleared its gate (or a human
	// approved it); issues may now be greenlit.
	StatusSpecApproved Status = "spec_approved"
	// StatusGreenlit means the feature's issues were released for
	// implementation.
	StatusGreenlit Status = "greenlit"
)

// RunState is the persisted state of one feature run. Gates read it as a
// snapshot and never mutate it directly; transitions go through the store.
type RunState struct {
	FeatureID  string       `json:"feature_id"`
	Name       string       `json:"name"`
	Status     Status       `json:"status"`
	ManualMode bool         `json:"manual_mode"`
	Scores     []RoundScore `json:"scores"`
	Issues     []Issue      `json:"issues"`
	Version    int          `json:"version"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CreateRequest is the payload for registering a new feature run.
type CreateRequest struct {
	FeatureID string `json:"feature_id"`
	Name      string `json:"name"`
}
