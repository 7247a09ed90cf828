// Package service implements business logic on top of ports.
package service

import (
	"context"
	"fmt"

	"github.com/quorumforge/verdict/internal/adapter/otel"
	"github.com/quorumforge/verdict/internal/adapter/ws"
	"github.com/quorumforge/verdict/internal/domain/approval"
	"github.com/quorumforge/verdict/internal/port/auditlog"
	"github.com/quorumforge/verdict/internal/port/statestore"
)

// Gate is one auto-approval policy over a stored subject.
//
// ShouldApprove reports whether the subject is ready for automatic approval.
// Expected business conditions (subject missing, thresholds not met, cycles)
// come back as (false, reason, nil); the error return is reserved for store
// failures.
type Gate interface {
	Kind() approval.Kind
	ShouldApprove(ctx context.Context, subjectID string) (approved bool, reason string, err error)
}

// confidenceReporter is implemented by gates that can attach a confidence
// figure to an approved decision.
type confidenceReporter interface {
	Confidence(ctx context.Context, subjectID string) float64
}

// Gatekeeper evaluates gates and applies approvals through the state store.
// It holds no subject state; keeping at most one approval attempt in flight
// per subject is the caller's responsibility.
type Gatekeeper struct {
	store   statestore.Store
	audit   auditlog.Log
	hub     *ws.Hub
	metrics *otel.Metrics
}

// NewGatekeeper creates a Gatekeeper over the given store and audit log.
func NewGatekeeper(store statestore.Store, audit auditlog.Log) *Gatekeeper {
	return &Gatekeeper{store: store, audit: audit}
}

// SetHub enables dashboard broadcasts for gate decisions.
func (g *Gatekeeper) SetHub(hub *ws.Hub) { g.hub = hub }

// SetMetrics enables decision counters.
func (g *Gatekeeper) SetMetrics(m *otel.Metrics) { g.metrics = m }

// ApproveIfReady runs one gate evaluation for the subject. Manual mode denies
// before the gate is consulted. On approval the subject's state transition is
// applied and exactly one audit entry is written; on denial nothing is
// written. A fresh Decision is produced on every call.
func (g *Gatekeeper) ApproveIfReady(ctx context.Context, gate Gate, subjectID string) (*approval.Decision, error) {
	ctx, span := otel.StartGateSpan(ctx, string(gate.Kind()), subjectID)
	defer span.End()

	manual, err := g.store.IsManualMode(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("check manual mode for %s: %w", subjectID, err)
	}
	if manual {
		return g.finish(ctx, gate, subjectID, &approval.Decision{Reason: "manual mode enabled"}), nil
	}

	approved, reason, err := gate.ShouldApprove(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s gate for %s: %w", gate.Kind(), subjectID, err)
	}

	dec := &approval.Decision{Approved: approved, Reason: reason}
	if !approved {
		return g.finish(ctx, gate, subjectID, dec), nil
	}

	if err := g.transition(ctx, gate.Kind(), subjectID); err != nil {
		return nil, fmt.Errorf("apply %s approval for %s: %w", gate.Kind(), subjectID, err)
	}
	if cr, ok := gate.(confidenceReporter); ok {
		dec.Confidence = cr.Confidence(ctx, subjectID)
	}
	if err := g.audit.LogAutoApproval(ctx, gate.Kind(), subjectID, reason); err != nil {
		// The state transition already happened; the approval stands and
		// the audit failure propagates to the caller.
		return g.finish(ctx, gate, subjectID, dec), fmt.Errorf("audit %s approval for %s: %w", gate.Kind(), subjectID, err)
	}
	return g.finish(ctx, gate, subjectID, dec), nil
}

// transition applies the store state change for an approved gate kind.
func (g *Gatekeeper) transition(ctx context.Context, kind approval.Kind, subjectID string) error {
	switch kind {
	case approval.KindSpec:
		return g.store.ApproveSpec(ctx, subjectID)
	case approval.KindGreenlight:
		return g.store.GreenlightFeature(ctx, subjectID)
	case approval.KindBugFix:
		return g.store.ApproveFix(ctx, subjectID)
	default:
		return fmt.Errorf("unknown gate kind %q", kind)
	}
}

func (g *Gatekeeper) finish(ctx context.Context, gate Gate, subjectID string, dec *approval.Decision) *approval.Decision {
	g.metrics.CountDecision(ctx, string(gate.Kind()), dec.Approved)
	if g.hub != nil {
		g.hub.BroadcastEvent(ctx, ws.EventDecision, ws.DecisionEvent{
			Kind:       string(gate.Kind()),
			SubjectID:  subjectID,
			Approved:   dec.Approved,
			Reason:     dec.Reason,
			Confidence: dec.Confidence,
		})
	}
	return dec
}
