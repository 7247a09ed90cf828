// Package consensus implements ranking-overlap consensus detection for
// panel debate rounds. A round of rankings reaches consensus either
// naturally (enough panels agree on enough priorities, with low rank
// variance) or by force (the round limit was hit).
package consensus

import "math"

const (
	// minPanels is the fixed coverage threshold: a priority is common when
	// it appears in the top window of at least this many panels, regardless
	// of how many panels submitted rankings.
	minPanels = 4

	// topWindow is how many leading entries of each ranking are considered
	// for natural consensus.
	topWindow = 5
)

// Config controls when consensus is declared.
type Config struct {
	MaxRounds  int     `yaml:"max_rounds"`  // round at which consensus is forced (default: 5)
	MinOverlap int     `yaml:"min_overlap"` // minimum common priorities for natural consensus (default: 3)
	MaxStdDev  float64 `yaml:"max_std_dev"` // maximum average rank deviation (default: 1.5)
}

// DefaultConfig returns the standard consensus thresholds.
func DefaultConfig() Config {
	return Config{
		MaxRounds:  5,
		MinOverlap: 3,
		MaxStdDev:  1.5,
	}
}

// Result is the outcome of evaluating one debate round. It is a plain
// value object, safe to serialize as-is.
type Result struct {
	Reached          bool     `json:"reached"`
	OverlapCount     int      `json:"overlap_count"`
	CommonPriorities []string `json:"common_priorities"`
	Forced           bool     `json:"forced"`
}

// Evaluate decides whether the supplied panel rankings have reached
// consensus for the given round. Rules, in precedence order:
//
//  1. No rankings: never reached, even past the round limit.
//  2. Round at or past MaxRounds: forced consensus over every priority any
//     panel mentioned.
//  3. Fewer than four panels: natural consensus is structurally impossible;
//     the intersection across all panels is reported for diagnostics.
//  4. Otherwise priorities in the top window of at least four panels form
//     the common set; it must meet MinOverlap and the panels' placement of
//     those priorities must agree within MaxStdDev.
//
// Duplicate entries within a single panel's ranking count once.
func Evaluate(rankings [][]string, round int, cfg Config) Result {
	if len(rankings) == 0 {
		return Result{CommonPriorities: []string{}}
	}

	deduped := make([][]string, len(rankings))
	for i, r := range rankings {
		deduped[i] = dedup(r)
	}

	if round >= cfg.MaxRounds {
		common := withCoverage(deduped, 1)
		return Result{
			Reached:          true,
			Forced:           true,
			OverlapCount:     len(common),
			CommonPriorities: common,
		}
	}

	if len(rankings) < minPanels {
		common := withCoverage(deduped, len(deduped))
		return Result{OverlapCount: len(common), CommonPriorities: common}
	}

	tops := make([][]string, len(rankings))
	for i, r := range rankings {
		if len(r) > topWindow {
			r = r[:topWindow]
		}
		tops[i] = dedup(r)
	}

	common := withCoverage(tops, minPanels)
	if len(common) < cfg.MinOverlap {
		return Result{OverlapCount: len(common), CommonPriorities: common}
	}

	if avgRankDeviation(common, tops) > cfg.MaxStdDev {
		return Result{OverlapCount: len(common), CommonPriorities: common}
	}

	return Result{Reached: true, OverlapCount: len(common), CommonPriorities: common}
}

// dedup returns the ranking with repeated entries removed, keeping the
// position of each entry's first occurrence.
func dedup(ranking []string) []string {
	seen := make(map[string]struct{}, len(ranking))
	out := make([]string, 0, len(ranking))
	for _, p := range ranking {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// withCoverage returns the priorities appearing in at least threshold of
// the given (already deduplicated) lists, in first-seen order across the
// panel scans.
func withCoverage(lists [][]string, threshold int) []string {
	counts := make(map[string]int)
	var order []string
	for _, list := range lists {
		for _, p := range list {
			if counts[p] == 0 {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	common := make([]string, 0, len(order))
	for _, p := range order {
		if counts[p] >= threshold {
			common = append(common, p)
		}
	}
	return common
}

// avgRankDeviation measures how much the panels disagree on ordering: for
// each common priority it takes the sample standard deviation of its
// 1-indexed positions across the top lists that contain it, then averages
// those deviations. A priority seen in fewer than two lists contributes 0.
func avgRankDeviation(common []string, tops [][]string) float64 {
	if len(common) == 0 {
		return 0
	}

	var total float64
	for _, p := range common {
		var positions []float64
		for _, top := range tops {
			for i, candidate := range top {
				if candidate == p {
					positions = append(positions, float64(i+1))
					break
				}
			}
		}
		if len(positions) >= 2 {
			total += sampleStdDev(positions)
		}
	}
	return total / float64(len(common))
}

// sampleStdDev computes the sample standard deviation (n-1 denominator).
func sampleStdDev(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}
