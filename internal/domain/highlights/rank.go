package highlights

import (
	"sort"

	"github.com/forPelevin/dmcut/internal/types"
)

// Rank keeps the topN highest-scoring candidates and returns them in
// chronological order. Score decides which survive, never output order.
func Rank(cands []types.Candidate, topN int) []types.HighlightInterval {
	if len(cands) == 0 || topN <= 0 {
		return nil
	}
	best := make([]types.Candidate, len(cands))
	copy(best, cands)
	sort.SliceStable(best, func(i, j int) bool { return best[i].Score > best[j].Score })
	if len(best) > topN {
		best = best[:topN]
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].Start < best[j].Start })

	out := make([]types.HighlightInterval, len(best))
	for i, c := range best {
		out[i] = types.HighlightInterval{Candidate: c, Rank: i + 1}
	}
	return out
}
