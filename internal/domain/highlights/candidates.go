package highlights

import (
	"sort"

	"github.com/forPelevin/dmcut/internal/types"
)

// BuildParams controls how qualifying seconds become merged intervals.
type BuildParams struct {
	Window   int
	Lookback int
	// TopLimit caps how many qualifying seconds seed candidates. It is the
	// requested highlight count times an oversampling factor so enough runs
	// survive merging and duration filtering.
	TopLimit        int
	MergeGap        float64
	MaxDuration     float64
	MinDuration     float64
	MaxKeepDuration float64
}

// BuildCandidates seeds a padded interval at every second scoring at least
// threshold, merges neighbours and keeps runs within the duration bounds.
// No qualifying second yields an empty result.
func BuildCandidates(points []types.DensityPoint, threshold float64, p BuildParams) []types.Candidate {
	eligible := make([]types.DensityPoint, 0, len(points))
	for _, pt := range points {
		if pt.Score >= threshold {
			eligible = append(eligible, pt)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	// Ascending second first so equal scores keep timeline order below.
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Second < eligible[j].Second })
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Score > eligible[j].Score })
	if p.TopLimit > 0 && len(eligible) > p.TopLimit {
		eligible = eligible[:p.TopLimit]
	}

	raw := make([]types.Candidate, 0, len(eligible))
	for _, pt := range eligible {
		raw = append(raw, types.Candidate{
			Start: float64(max(0, pt.Second-p.Lookback)),
			End:   float64(pt.Second + p.Window + p.Lookback),
			Score: pt.Score,
			Count: pt.Count,
		})
	}

	merged := MergeCandidates(raw, p.MergeGap, p.MaxDuration)
	return FilterByDuration(merged, p.MinDuration, p.MaxKeepDuration)
}

// MergeCandidates sorts by start and folds each candidate into the previous
// run when the gap to it is at most mergeGap. A run never grows past
// maxDuration; maxDuration <= 0 disables the cap. The input is not modified.
func MergeCandidates(cands []types.Candidate, mergeGap, maxDuration float64) []types.Candidate {
	if len(cands) == 0 {
		return nil
	}
	sorted := make([]types.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]types.Candidate, 0, len(sorted))
	out = append(out, sorted[0])
	for _, c := range sorted[1:] {
		last := out[len(out)-1]
		if c.Start-last.End <= mergeGap {
			out[len(out)-1] = fold(last, c, maxDuration)
			continue
		}
		out = append(out, c)
	}
	return out
}

func fold(run, next types.Candidate, maxDuration float64) types.Candidate {
	merged := types.Candidate{
		Start: run.Start,
		End:   max(run.End, next.End),
		Score: max(run.Score, next.Score),
		Count: run.Count + next.Count,
	}
	if maxDuration > 0 && merged.End-merged.Start > maxDuration {
		merged.End = merged.Start + maxDuration
	}
	return merged
}

// FilterByDuration keeps candidates with minDur <= duration <= maxDur.
func FilterByDuration(cands []types.Candidate, minDur, maxDur float64) []types.Candidate {
	var out []types.Candidate
	for _, c := range cands {
		d := c.Duration()
		if d >= minDur && d <= maxDur {
			out = append(out, c)
		}
	}
	return out
}
