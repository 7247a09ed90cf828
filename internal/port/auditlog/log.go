// Package auditlog defines the port interface for the append-only
// auto-approval audit trail.
package auditlog

import (
	"context"

	"github.com/quorumforge/verdict/internal/domain/approval"
)

// Log receives one entry per auto-approval decision. Implementations must
// be append-only; vetoes never remove or rewrite past entries.
type Log interface {
	LogAutoApproval(ctx context.Context, kind approval.Kind, subjectID, reason string) error
}
