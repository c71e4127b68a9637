// Package danmaku reads bullet-comment exports into chat events.
package danmaku

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

var (
	dialogueRe = regexp.MustCompile(`^Dialogue:\s*\d+,(\d+:\d+:\d+\.\d+),\d+:\d+:\d+\.\d+,(?:[^,]*,){6}(.*)$`)
	overrideRe = regexp.MustCompile(`\{[^}]*\}`)
	controlRe  = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
)

// ParseASS extracts chat events from the Dialogue lines of an ASS file as
// produced by live-recording tools. Each event takes the line's start time.
// Override tags and control characters are stripped; events with no text or
// at time zero are dropped. The result is ordered by time.
func ParseASS(r io.Reader) ([]types.ChatEvent, error) {
	sc := bufio.NewScanner(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var events []types.ChatEvent
	for sc.Scan() {
		m := dialogueRe.FindStringSubmatch(strings.TrimRight(sc.Text(), "\r"))
		if m == nil {
			continue
		}
		at, err := timecode.Parse(m[1])
		if err != nil || at <= 0 {
			continue
		}
		text := strings.TrimSpace(overrideRe.ReplaceAllString(m[2], ""))
		text = controlRe.ReplaceAllString(text, "")
		if text == "" {
			continue
		}
		events = append(events, types.ChatEvent{Time: at, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ass: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
	return events, nil
}
