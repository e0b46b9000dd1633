package quality

import (
	"math"
	"sort"
)

// quantile returns the q-th quantile (0..1) of vals using linear
// interpolation between closest ranks, matching the convention the source
// data profile was tuned against. vals need not be sorted.
func quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// median is the 0.5 quantile.
func median(vals []float64) float64 {
	return quantile(vals, 0.5)
}

// mode returns the most frequent value and its count; ties break toward the
// value observed first.
func mode(vals []string) (string, int) {
	counts := map[string]int{}
	first := map[string]int{}
	for i, v := range vals {
		if _, seen := counts[v]; !seen {
			first[v] = i
		}
		counts[v]++
	}
	best, bestN, bestFirst := "", 0, 0
	for v, n := range counts {
		if n > bestN || (n == bestN && first[v] < bestFirst) {
			best, bestN, bestFirst = v, n, first[v]
		}
	}
	return best, bestN
}

// round2 rounds to two decimal places (currency precision).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
