// Package vote implements weighted positional voting over panel rankings.
// Each panel's ranking is converted to positional points, scaled by the
// panel's weight, and fused into a single deterministic priority order.
package vote

import "sort"

const (
	// maxEntries is how many leading entries of a panel's ranking score
	// points: position 0 earns 10, position 9 earns 1.
	maxEntries = 10

	// firstPlaceBonus is added once to any priority some panel ranked
	// first, so a panel's top pick cannot be fully drowned out by a
	// heavier panel's low-ranked items. It is deliberately smaller than
	// one positional point so it never overturns ordering within a panel.
	firstPlaceBonus = 0.5

	// DefaultTopN is the default length of the fused priority list.
	DefaultTopN = 10
)

// Aggregate fuses per-panel rankings into a single priority list using
// weighted positional scoring. Panels absent from weights contribute
// nothing. Ties are broken by ascending identifier so equal inputs always
// produce byte-identical output.
func Aggregate(rankingsByPanel map[string][]string, weights map[string]float64, topN int) []string {
	if len(rankingsByPanel) == 0 || len(weights) == 0 {
		return []string{}
	}

	scores := make(map[string]float64)
	firstPlace := make(map[string]bool)

	for panel, ranking := range rankingsByPanel {
		weight, ok := weights[panel]
		if !ok {
			continue
		}

		for pos, priority := range ranking {
			if pos >= maxEntries {
				break
			}
			scores[priority] += float64(maxEntries-pos) * weight
			if pos == 0 {
				firstPlace[priority] = true
			}
		}
	}

	for priority := range firstPlace {
		if _, ok := scores[priority]; ok {
			scores[priority] += firstPlaceBonus
		}
	}

	ranked := make([]string, 0, len(scores))
	for priority := range scores {
		ranked = append(ranked, priority)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
