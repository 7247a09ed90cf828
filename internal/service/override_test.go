package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/quorumforge/verdict/internal/domain"
	"github.com/quorumforge/verdict/internal/domain/bug"
	"github.com/quorumforge/verdict/internal/domain/feature"
	"github.com/quorumforge/verdict/internal/port/messagequeue"
)

func TestVetoSpecRevertsApproval(t *testing.T) {
	store := newMockStore()
	store.features["feat-1"] = &feature.RunState{
		FeatureID: "feat-1",
		Status:    feature.StatusSpecApproved,
	}

	svc := NewOverrideService(store)
	if err := svc.VetoSpec(context.Background(), "feat-1", "scores look inflated"); err != nil {
		t.Fatalf("VetoSpec: %v", err)
	}
	if got := store.features["feat-1"].Status; got != feature.StatusAwaitingApproval {
		t.Errorf("status = %s, want %s", got, feature.StatusAwaitingApproval)
	}
}

func TestVetoFixRevertsApproval(t *testing.T) {
	store := newMockStore()
	store.bugs["bug-1"] = &bug.Bug{ID: "bug-1", Status: bug.StatusFixApproved}

	svc := NewOverrideService(store)
	if err := svc.VetoFix(context.Background(), "bug-1", "risk misjudged"); err != nil {
		t.Fatalf("VetoFix: %v", err)
	}
	if got := store.bugs["bug-1"].Status; got != bug.StatusPlanned {
		t.Errorf("status = %s, want %s", got, bug.StatusPlanned)
	}
}

func TestVetoRequiresReason(t *testing.T) {
	svc := NewOverrideService(newMockStore())

	if err := svc.VetoSpec(context.Background(), "feat-1", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("VetoSpec err = %v, want ErrValidation", err)
	}
	if err := svc.VetoFix(context.Background(), "bug-1", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("VetoFix err = %v, want ErrValidation", err)
	}
}

func TestVetoUnknownSubject(t *testing.T) {
	svc := NewOverrideService(newMockStore())
	if err := svc.VetoSpec(context.Background(), "nope", "reason"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVetoPublishesEvent(t *testing.T) {
	store := newMockStore()
	store.features["feat-1"] = &feature.RunState{FeatureID: "feat-1", Status: feature.StatusSpecApproved}
	queue := &mockQueue{}

	svc := NewOverrideService(store)
	svc.SetQueue(queue)
	if err := svc.VetoSpec(context.Background(), "feat-1", "human override"); err != nil {
		t.Fatalf("VetoSpec: %v", err)
	}

	if len(queue.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(queue.published))
	}
	msg := queue.published[0]
	if msg.subject != messagequeue.SubjectVeto {
		t.Errorf("subject = %q, want %q", msg.subject, messagequeue.SubjectVeto)
	}
	var payload messagequeue.VetoPayload
	if err := json.Unmarshal(msg.data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.SubjectID != "feat-1" || payload.Kind != "spec" || payload.Reason != "human override" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.EventID == "" {
		t.Error("expected a generated event id")
	}
}

func TestVetoPublishFailureDoesNotFailVeto(t *testing.T) {
	store := newMockStore()
	store.features["feat-1"] = &feature.RunState{FeatureID: "feat-1", Status: feature.StatusSpecApproved}
	queue := &mockQueue{publishErr: errors.New("nats down")}

	svc := NewOverrideService(store)
	svc.SetQueue(queue)
	if err := svc.VetoSpec(context.Background(), "feat-1", "reason"); err != nil {
		t.Fatalf("veto must succeed even when the event publish fails: %v", err)
	}
	if store.features["feat-1"].Status != feature.StatusAwaitingApproval {
		t.Error("state change must land regardless of publish outcome")
	}
}

func TestSetManualMode(t *testing.T) {
	store := newMockStore()

	svc := NewOverrideService(store)
	if err := svc.SetManualMode(context.Background(), "feat-1", true); err != nil {
		t.Fatalf("SetManualMode: %v", err)
	}
	if !store.manual["feat-1"] {
		t.Error("manual mode not set")
	}

	if err := svc.SetManualMode(context.Background(), "feat-1", false); err != nil {
		t.Fatalf("SetManualMode: %v", err)
	}
	if store.manual["feat-1"] {
		t.Error("manual mode not cleared")
	}
}
