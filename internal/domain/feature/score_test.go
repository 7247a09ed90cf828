package feature

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestRoundScoreValue(t *testing.T) {
	tests := []struct {
		name  string
		score RoundScore
		want  float64
	}{
		{
			"pre-averaged",
			RoundScore{Average: floatPtr(0.87)},
			0.87,
		},
		{
			"components reduced to mean",
			RoundScore{Components: &ScoreComponents{
				Clarity:      0.9,
				Coverage:     0.8,
				Architecture: 0.9,
				Risk:         0.8,
			}},
			0.85,
		},
		{
			"average takes precedence over components",
			RoundScore{
				Average:    floatPtr(0.5),
				Components: &ScoreComponents{Clarity: 1, Coverage: 1, Architecture: 1, Risk: 1},
			},
			0.5,
		},
		{
			"malformed record degrades to zero",
			RoundScore{},
			0,
		},
		{
			"zero components",
			RoundScore{Components: &ScoreComponents{}},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.score.Value()
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}
