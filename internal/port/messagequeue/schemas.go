package messagequeue

// ConsensusEvaluatedPayload is the schema for consensus.evaluated messages.
type ConsensusEvaluatedPayload struct {
	Round            int      `json:"round"`
	PanelCount       int      `json:"panel_count"`
	Reached          bool     `json:"reached"`
	Forced           bool     `json:"forced"`
	OverlapCount     int      `json:"overlap_count"`
	CommonPriorities []string `json:"common_priorities"`
}

// VoteAggregatedPayload is the schema for consensus.vote messages.
type VoteAggregatedPayload struct {
	PanelCount int      `json:"panel_count"`
	Priorities []string `json:"priorities"`
}

// AutoApprovalPayload is the schema for approvals.auto.{kind} messages.
type AutoApprovalPayload struct {
	EventID    string  `json:"event_id"`
	Kind       string  `json:"kind"`
	SubjectID  string  `json:"subject_id"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// VetoPayload is the schema for approvals.veto messages.
type VetoPayload struct {
	EventID   string `json:"event_id"`
	Kind      string `json:"kind"`
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}
