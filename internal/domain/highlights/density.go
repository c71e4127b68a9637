package highlights

import (
	"math"
	"sort"

	"github.com/forPelevin/dmcut/internal/types"
)

// EstimateDensity buckets events by whole second and sums each second's
// weighted score over the forward window [t, t+window). Seconds whose window
// holds nothing are omitted. Events may arrive in any order.
func EstimateDensity(events []types.ChatEvent, w *Weigher, window int) map[int]types.DensityPoint {
	if len(events) == 0 || window <= 0 {
		return map[int]types.DensityPoint{}
	}

	rawScore := make(map[int]float64)
	rawCount := make(map[int]int)
	for _, ev := range events {
		sec := int(math.Trunc(ev.Time))
		rawScore[sec] += w.Weight(ev.Text)
		rawCount[sec]++
	}

	minSec, maxSec := math.MaxInt, math.MinInt
	for sec := range rawScore {
		minSec = min(minSec, sec)
		maxSec = max(maxSec, sec)
	}

	out := make(map[int]types.DensityPoint)
	for t := minSec; t <= maxSec; t++ {
		var score float64
		var count int
		for i := 0; i < window; i++ {
			score += rawScore[t+i]
			count += rawCount[t+i]
		}
		if score > 0 {
			out[t] = types.DensityPoint{Second: t, Score: score, Count: count}
		}
	}
	return out
}

// SortedPoints flattens a density map in ascending second order.
func SortedPoints(m map[int]types.DensityPoint) []types.DensityPoint {
	out := make([]types.DensityPoint, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Second < out[j].Second })
	return out
}
