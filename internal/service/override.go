package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quorumforge/verdict/internal/adapter/otel"
	"github.com/quorumforge/verdict/internal/adapter/ws"
	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/approval"
	"github.com/quorumforge/verdict/internal/port/messagequeue"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// OverrideService applies human overrides against stored subject state.
// It is deliberately separate from the gates so an operator can revoke an
// approval or pause automatic gating at any time, independent of gate
// evaluation timing. Vetoes revert state only; the audit trail is never
// rewritten.
type OverrideService struct {
	store   statestore.Store
	queue   messagequeue.Queue
	hub     *ws.Hub
	metrics *otel.Metrics
}

// NewOverrideService creates an OverrideService over the given store.
func NewOverrideService(store statestore.Store) *OverrideService {
	return &OverrideService{store: store}
}

// SetQueue enables veto event publishing.
func (s *OverrideService) SetQueue(q messagequeue.Queue) { s.queue = q }

// SetHub enables dashboard broadcasts for overrides.
func (s *OverrideService) SetHub(hub *ws.Hub) { s.hub = hub }

// SetMetrics enables override counters.
func (s *OverrideService) SetMetrics(m *otel.Metrics) { s.metrics = m }

// VetoSpec reverts an approved feature spec back to awaiting approval.
func (s *OverrideService) VetoSpec(ctx context.Context, featureID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: veto reason is required", domain.ErrValidation)
	}
	if err := s.store.VetoSpecApproval(ctx, featureID, reason); err != nil {
		return fmt.Errorf("veto spec approval for %s: %w", featureID, err)
	}
	s.announceVeto(ctx, approval.KindSpec, featureID, reason)
	return nil
}

// VetoFix reverts an approved bug fix back to planned.
func (s *OverrideService) VetoFix(ctx context.Context, bugID, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: veto reason is required", domain.ErrValidation)
	}
	if err := s.store.VetoFixApproval(ctx, bugID, reason); err != nil {
		return fmt.Errorf("veto fix approval for %s: %w", bugID, err)
	}
	s.announceVeto(ctx, approval.KindBugFix, bugID, reason)
	return nil
}

// SetManualMode toggles the per-subject kill switch. While enabled, every
// gate denies with "manual mode enabled" until the flag is cleared.
func (s *OverrideService) SetManualMode(ctx context.Context, subjectID string, enabled bool) error {
	if err := s.store.SetManualMode(ctx, subjectID, enabled); err != nil {
		return fmt.Errorf("set manual mode for %s: %w", subjectID, err)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventOverride, ws.OverrideEvent{
			Action:    "manual_mode",
			SubjectID: subjectID,
			Enabled:   enabled,
		})
	}
	return nil
}

// announceVeto publishes and broadcasts a veto best-effort. The state
// change has already landed, so delivery failures are logged, not returned.
func (s *OverrideService) announceVeto(ctx context.Context, kind approval.Kind, subjectID, reason string) {
	s.metrics.CountVeto(ctx, string(kind))

	if s.queue != nil {
		payload := messagequeue.VetoPayload{
			EventID:   uuid.NewString(),
			Kind:      string(kind),
			SubjectID: subjectID,
			Reason:    reason,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		data, err := json.Marshal(payload)
		if err == nil {
			err = s.queue.Publish(ctx, messagequeue.SubjectVeto, data)
		}
		if err != nil {
			slog.WarnContext(ctx, "publish veto event", "subject_id", subjectID, "error", err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventOverride, ws.OverrideEvent{
			Action:    "veto",
			Kind:      string(kind),
			SubjectID: subjectID,
			Reason:    reason,
		})
	}
}
