package transport

import "math"

// DefaultLegacyStep is the spacing between legacy rankings when there is
// enough room below the modern entries.
const DefaultLegacyStep = 100

// AllocateLegacyRankings computes where legacy candidates go in a registry
// in which higher rankings win. modernRankings are the rankings of the
// already registered non-legacy entries. The i-th legacy candidate (most
// preferred first) gets start - i*step.
//
// When the lowest modern ranking is non-negative the legacy entries start
// at -100 with a step of 100. Otherwise the step shrinks to fit between
// the lowest modern ranking and math.MinInt; if even a step of one does
// not fit, the entries are packed just above math.MinInt.
//
// The function is total: it never overflows and never returns a ranking
// below math.MinInt.
func AllocateLegacyRankings(modernRankings []int, legacyCount int) (start, step int) {
	if legacyCount < 1 {
		legacyCount = 1
	}

	lowestModern := 0
	for i, r := range modernRankings {
		if i == 0 || r < lowestModern {
			lowestModern = r
		}
	}

	if lowestModern >= 0 {
		return -DefaultLegacyStep, DefaultLegacyStep
	}

	// lowestModern < 0, so the difference fits in an int.
	available := lowestModern - math.MinInt
	step = min(DefaultLegacyStep, available/legacyCount)
	if step == 0 {
		return math.MinInt + legacyCount, 1
	}
	return lowestModern - step, step
}

// LegacyRankings expands AllocateLegacyRankings into one ranking per
// legacy candidate, in preference order.
func LegacyRankings(modernRankings []int, legacyCount int) []int {
	if legacyCount < 1 {
		return nil
	}
	start, step := AllocateLegacyRankings(modernRankings, legacyCount)
	rankings := make([]int, legacyCount)
	for i := range rankings {
		rankings[i] = start - i*step
	}
	return rankings
}
