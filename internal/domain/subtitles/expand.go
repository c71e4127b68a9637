package subtitles

import "github.com/forPelevin/dmcut/internal/types"

// Expand widens [start,end] to whole subtitle sentences: the first and last
// entries overlapping the range, plus pre entries before and post entries
// after, clamped to the track. The result always contains [start,end].
//
// subs must be ordered by Start. An empty track returns the range unchanged
// with a nil error; a track with no overlapping entry returns it unchanged
// with ErrNoOverlap.
func Expand(subs []types.SubtitleEntry, start, end float64, pre, post int) (types.ExpandedRange, error) {
	if pre < 0 {
		return types.ExpandedRange{}, &ConfigError{Field: "pre", Reason: "must not be negative"}
	}
	if post < 0 {
		return types.ExpandedRange{}, &ConfigError{Field: "post", Reason: "must not be negative"}
	}
	target := types.ExpandedRange{Start: start, End: end}
	if len(subs) == 0 {
		return target, nil
	}

	first, last := -1, -1
	for i, s := range subs {
		if s.End > start && s.Start < end {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return target, ErrNoOverlap
	}

	from := max(0, first-pre)
	to := min(len(subs)-1, last+post)
	return types.ExpandedRange{
		Start: min(subs[from].Start, start),
		End:   max(subs[to].End, end),
	}, nil
}
