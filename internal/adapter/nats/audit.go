package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quorumforge/verdict/internal/domain/approval"
	"github.com/quorumforge/verdict/internal/port/messagequeue"
)

// AuditPublisher implements auditlog.Log by appending one record per
// auto-approval to the approvals stream. JetStream retention makes the
// trail durable; nothing ever deletes or rewrites published entries.
type AuditPublisher struct {
	queue messagequeue.Queue
}

// NewAuditPublisher creates an AuditPublisher over the given queue.
func NewAuditPublisher(queue messagequeue.Queue) *AuditPublisher {
	return &AuditPublisher{queue: queue}
}

// LogAutoApproval publishes one approvals.auto.{kind} record.
func (p *AuditPublisher) LogAutoApproval(ctx context.Context, kind approval.Kind, subjectID, reason string) error {
	payload := messagequeue.AutoApprovalPayload{
		EventID:   uuid.NewString(),
		Kind:      string(kind),
		SubjectID: subjectID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", messagequeue.SubjectAutoApproval, kind)
	if err := p.queue.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}
