// Package approval defines the value objects produced by the auto-approval
// gates and recorded in the audit trail.
package approval

import "time"

// Kind identifies which gate produced a decision or audit entry.
type Kind string

const (
	KindSpec       Kind = "spec"
	KindGreenlight Kind = "greenlight"
	KindBugFix     Kind = "bug_fix"
)

// Decision is the outcome of a single gate evaluation. A fresh Decision is
// produced on every call; decisions are never merged or accumulated.
type Decision struct {
	Approved   bool    `json:"approved"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// AuditEntry is one record in the auto-approval audit trail. Entries are
// append-only: a later veto reverts the state transition but never removes
// or rewrites the entry that approved it.
type AuditEntry struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	SubjectID string    `json:"subject_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
