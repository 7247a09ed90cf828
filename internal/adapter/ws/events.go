package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventConsensus = "consensus.evaluated"
	EventVote      = "vote.aggregated"
	EventDecision  = "gate.decision"
	EventOverride  = "override.applied"
)

// ConsensusEvent is broadcast after every debate round evaluation.
type ConsensusEvent struct {
	Round            int      `json:"round"`
	PanelCount       int      `json:"panel_count"`
	Reached          bool     `json:"reached"`
	Forced           bool     `json:"forced"`
	OverlapCount     int      `json:"overlap_count"`
	CommonPriorities []string `json:"common_priorities"`
}

// VoteEvent is broadcast after a weighted vote aggregation.
type VoteEvent struct {
	PanelCount int      `json:"panel_count"`
	Priorities []string `json:"priorities"`
}

// DecisionEvent is broadcast for every gate decision, approved or denied.
type DecisionEvent struct {
	Kind       string  `json:"kind"`
	SubjectID  string  `json:"subject_id"`
	Approved   bool    `json:"approved"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"`
}

// OverrideEvent is broadcast when a human veto or manual-mode change lands.
type OverrideEvent struct {
	Action    string `json:"action"` // "veto" or "manual_mode"
	Kind      string `json:"kind,omitempty"`
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason,omitempty"`
	Enabled   bool   `json:"enabled,omitempty"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
