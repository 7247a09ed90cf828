package feature

// ScoreComponents are the four reviewer sub-scores for one debate round.
type ScoreComponents struct {
	Clarity      float64 `json:"clarity"`
	Coverage     float64 `json:"coverage"`
	Architecture float64 `json:"architecture"`
	Risk         float64 `json:"risk"`
}

// RoundScore is the review score for one debate round. Reviewers report
// either a pre-averaged value or the four raw sub-scores; exactly one of
// the two fields should be set. A score with neither reduces to 0.
type RoundScore struct {
	Round      int              `json:"round"`
	Average    *float64         `json:"average,omitempty"`
	Components *ScoreComponents `json:"components,omitempty"`
}

// Value reduces the score to a single average. Malformed records (neither
// field set) degrade to 0 rather than failing, so a broken reviewer
// payload can never auto-approve a spec.
func (s RoundScore) Value() float64 {
	switch {
	case s.Average != nil:
		return *s.Average
	case s.Components != nil:
		c := s.Components
		return (c.Clarity + c.Coverage + c.Architecture + c.Risk) / 4
	default:
		return 0
	}
}
