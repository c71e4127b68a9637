// Package excerpt gathers the chat and subtitle context around a highlight
// that the metadata generator is shown.
package excerpt

import (
	"strings"

	"golang.org/x/text/width"

	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

const (
	noChat      = "(无弹幕)"
	noSubtitles = "(无字幕)"
)

// Window sets how far around a highlight context is collected, in seconds.
type Window struct {
	ChatBefore     float64
	ChatAfter      float64
	SubtitleBefore float64
	SubtitleAfter  float64
	MaxChatLines   int
}

func DefaultWindow() Window {
	return Window{ChatBefore: 5, ChatAfter: 5, SubtitleBefore: 25, SubtitleAfter: 5, MaxChatLines: 50}
}

type Excerpt struct {
	Chat      []string
	Subtitles []string
}

func Build(events []types.ChatEvent, subs []types.SubtitleEntry, start, end float64, w Window) Excerpt {
	return Excerpt{
		Chat:      ChatLines(events, start-w.ChatBefore, end+w.ChatAfter, w.MaxChatLines),
		Subtitles: SubtitleLines(subs, start-w.SubtitleBefore, end+w.SubtitleAfter),
	}
}

// ChatLines returns distinct chat texts with from <= time <= to in first-seen
// order, at most limit of them. Lines differing only in full/half width form
// count as duplicates.
func ChatLines(events []types.ChatEvent, from, to float64, limit int) []string {
	seen := map[string]bool{}
	var out []string
	for _, ev := range events {
		if ev.Time < from || ev.Time > to {
			continue
		}
		key := strings.ToLower(width.Fold.String(ev.Text))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ev.Text)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// SubtitleLines formats entries intersecting [from,to] as "HH:MM:SS: text".
func SubtitleLines(subs []types.SubtitleEntry, from, to float64) []string {
	var out []string
	for _, s := range subs {
		if s.Start > to || s.End < from {
			continue
		}
		text := strings.Join(strings.Fields(s.Text), " ")
		out = append(out, timecode.Format(s.Start)+": "+text)
	}
	return out
}

func (e Excerpt) ChatText() string {
	if len(e.Chat) == 0 {
		return noChat
	}
	var b strings.Builder
	for i, line := range e.Chat {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(line)
	}
	return b.String()
}

func (e Excerpt) SubtitleText() string {
	if len(e.Subtitles) == 0 {
		return noSubtitles
	}
	return strings.Join(e.Subtitles, "\n")
}
