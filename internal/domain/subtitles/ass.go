package subtitles

import (
	"fmt"
	"strings"

	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

const (
	Horizontal = "horizontal"
	Vertical   = "vertical"
)

// Style is the burned-in subtitle look. Colours use ASS &HAABBGGRR notation.
type Style struct {
	Orientation  string
	FontFamily   string
	FontSize     int
	PrimaryColor string
	OutlineColor string
	OutlineWidth float64
	ShadowDepth  float64
	MarginV      int
	// MaxChars overrides the per-line rune budget; zero picks one from the
	// orientation.
	MaxChars int
}

func DefaultStyle() Style {
	return Style{
		Orientation:  Horizontal,
		FontFamily:   "Microsoft YaHei",
		FontSize:     120,
		PrimaryColor: "&H0000E1FF",
		OutlineColor: "&H00000000",
		OutlineWidth: 7,
		ShadowDepth:  2,
		MarginV:      50,
	}
}

func (s Style) resolution() (int, int) {
	if s.Orientation == Vertical {
		return 1080, 1920
	}
	return 1920, 1080
}

func (s Style) lineBudget() int {
	if s.MaxChars > 0 {
		return s.MaxChars
	}
	if s.Orientation == Vertical {
		return 14
	}
	return 24
}

// RenderClipASS renders the entries overlapping [start,end] as a clip-local
// ASS script: event times are offsets from start, clamped to the clip. It
// returns the script and the number of dialogue events written.
func RenderClipASS(subs []types.SubtitleEntry, start, end float64, style Style) (string, int) {
	var b strings.Builder
	b.WriteString(assHeader(style))
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	clipLen := end - start
	n := 0
	for _, s := range subs {
		if s.End <= start || s.Start >= end {
			continue
		}
		text := wrap(sanitizeASS(flatten(s.Text)), style.lineBudget())
		if text == "" {
			continue
		}
		b.WriteString("Dialogue: 0,")
		b.WriteString(timecode.FormatASS(max(0, s.Start-start)))
		b.WriteString(",")
		b.WriteString(timecode.FormatASS(min(clipLen, s.End-start)))
		b.WriteString(",Default,,0,0,0,,")
		b.WriteString(text)
		b.WriteString("\n")
		n++
	}
	return b.String(), n
}

func styleLine(s Style) string {
	return fmt.Sprintf("Style: Default,%s,%d,%s,%s,%s,-1,-1,0,0,0,100,100,0,0,1,%g,%g,2,10,10,%d,1",
		s.FontFamily, s.FontSize, s.PrimaryColor, s.PrimaryColor, s.OutlineColor, s.OutlineWidth, s.ShadowDepth, s.MarginV)
}

func assHeader(s Style) string {
	x, y := s.resolution()
	return fmt.Sprintf(`[Script Info]
Title: dmcut clip
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
%s
`, x, y, styleLine(s))
}

// flatten drops existing line breaks so wrapping starts from one line.
func flatten(s string) string {
	r := strings.NewReplacer("\r", "", "\n", "", `\N`, "")
	return r.Replace(s)
}

// wrap hard-breaks s every budget runes with the ASS \N marker.
func wrap(s string, budget int) string {
	runes := []rune(s)
	if budget <= 0 || len(runes) <= budget {
		return s
	}
	var parts []string
	for i := 0; i < len(runes); i += budget {
		parts = append(parts, string(runes[i:min(i+budget, len(runes))]))
	}
	return strings.Join(parts, `\N`)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

// RestyleASS rewrites an existing clip script to the given style: PlayRes,
// every Style line, and the wrapping of Dialogue text. Dialogue carrying
// override tags is left as written.
func RestyleASS(script string, style Style) string {
	x, y := style.resolution()
	budget := style.lineBudget()
	script = strings.TrimPrefix(script, "\ufeff")

	lines := strings.Split(script, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(trimmed, "PlayResX:"):
			lines[i] = fmt.Sprintf("PlayResX: %d", x)
		case strings.HasPrefix(trimmed, "PlayResY:"):
			lines[i] = fmt.Sprintf("PlayResY: %d", y)
		case strings.HasPrefix(trimmed, "Style:"):
			lines[i] = styleLine(style)
		case strings.HasPrefix(trimmed, "Dialogue:"):
			parts := strings.SplitN(trimmed, ",", 10)
			if len(parts) != 10 || strings.Contains(parts[9], "{") {
				lines[i] = trimmed
				continue
			}
			parts[9] = wrap(strings.TrimSpace(flatten(parts[9])), budget)
			lines[i] = strings.Join(parts, ",")
		default:
			lines[i] = trimmed
		}
	}
	return strings.Join(lines, "\n")
}
