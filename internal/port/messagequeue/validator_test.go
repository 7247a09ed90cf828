package messagequeue

import (
	"strings"
	"testing"
)

func TestValidateValidConsensusEvaluated(t *testing.T) {
	data := []byte(`{"round":2,"panel_count":4,"reached":true,"forced":false,"overlap_count":3,"common_priorities":["P1","P2","P3"]}`)
	if err := Validate(SubjectConsensusEvaluated, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateValidVoteAggregated(t *testing.T) {
	data := []byte(`{"panel_count":2,"priorities":["P1","C2"]}`)
	if err := Validate(SubjectVoteAggregated, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAutoApprovalSubject(t *testing.T) {
	// approvals.auto.{kind} validates against the audit schema.
	data := []byte(`{"event_id":"e1","kind":"spec","subject_id":"feat-1","reason":"ok","timestamp":"2026-01-01T00:00:00Z"}`)
	if err := Validate(SubjectAutoApproval+".spec", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateValidVeto(t *testing.T) {
	data := []byte(`{"event_id":"e2","kind":"bug_fix","subject_id":"bug-1","reason":"regression risk","timestamp":"2026-01-01T00:00:00Z"}`)
	if err := Validate(SubjectVeto, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	// Unknown subjects should pass (future-proof).
	data := []byte(`{"foo":"bar"}`)
	if err := Validate("unknown.subject", data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	data := []byte(`{not valid json`)
	err := Validate(SubjectConsensusEvaluated, data)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("expected 'invalid JSON' in error, got: %v", err)
	}
}

func TestValidateInvalidSchema(t *testing.T) {
	data := []byte(`"just a string"`)
	err := Validate(SubjectVeto, data)
	if err == nil {
		t.Fatal("expected schema validation error")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("expected 'schema validation failed' in error, got: %v", err)
	}
}

func TestValidateEmptyJSON(t *testing.T) {
	// Empty object is valid JSON and valid for all schemas (all fields are zero-value).
	data := []byte(`{}`)
	if err := Validate(SubjectConsensusEvaluated, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
