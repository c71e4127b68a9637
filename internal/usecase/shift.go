package usecase

import (
	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

// ShiftClips moves every clip by offset seconds, for a manifest analyzed
// against one recording and cut from another with a different lead-in.
// Starts clamp at zero and clips that end at or before zero are dropped;
// dropped reports how many. When the shifted range is shorter than the
// whole-second timestamp can express, the timestamp is left empty so
// start_sec/end_sec are used. The input is not modified.
func ShiftClips(clips []types.ManifestClip, offset float64) (shifted []types.ManifestClip, dropped int) {
	shifted = make([]types.ManifestClip, 0, len(clips))
	for _, c := range clips {
		start, end := c.StartSec, c.EndSec
		if s, e, err := timecode.ParseRange(c.Timestamp); err == nil {
			start, end = s, e
		}
		end += offset
		if end <= 0 {
			dropped++
			continue
		}
		start = max(0, start+offset)
		c.StartSec, c.EndSec = start, end
		c.Timestamp = timecode.FormatRange(start, end)
		if _, _, err := timecode.ParseRange(c.Timestamp); err != nil {
			c.Timestamp = ""
		}
		shifted = append(shifted, c)
	}
	return shifted, dropped
}
