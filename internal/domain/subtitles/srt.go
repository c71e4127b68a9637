package subtitles

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/asticode/go-astisub"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/forPelevin/dmcut/internal/types"
)

// ReadSRT parses an SRT track, tolerating a UTF-8 byte order mark. Cue lines
// are joined with "\n"; cues with no text are dropped. Entries come back
// ordered by start.
func ReadSRT(r io.Reader) ([]types.SubtitleEntry, error) {
	subs, err := astisub.ReadFromSRT(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	out := make([]types.SubtitleEntry, 0, len(subs.Items))
	for _, item := range subs.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, l := range item.Lines {
			if s := strings.TrimSpace(l.String()); s != "" {
				lines = append(lines, s)
			}
		}
		if len(lines) == 0 || item.EndAt <= item.StartAt {
			continue
		}
		out = append(out, types.SubtitleEntry{
			Start: item.StartAt.Seconds(),
			End:   item.EndAt.Seconds(),
			Text:  strings.Join(lines, "\n"),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}
