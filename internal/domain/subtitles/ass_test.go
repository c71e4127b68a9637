package subtitles

import (
	"strings"
	"testing"

	"github.com/forPelevin/dmcut/internal/types"
)

func TestRenderClipASS_ClipLocalTimes(t *testing.T) {
	subs := []types.SubtitleEntry{
		{Start: 90, End: 96, Text: "开头被截掉"},
		{Start: 100, End: 103.5, Text: "中间"},
		{Start: 118, End: 125, Text: "结尾被截掉"},
		{Start: 200, End: 205, Text: "不在范围"},
	}
	ass, n := RenderClipASS(subs, 95, 120, DefaultStyle())
	if n != 3 {
		t.Fatalf("expected 3 events, got %d:\n%s", n, ass)
	}
	for _, want := range []string{
		"Dialogue: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,开头被截掉",
		"Dialogue: 0,0:00:05.00,0:00:08.50,Default,,0,0,0,,中间",
		"Dialogue: 0,0:00:23.00,0:00:25.00,Default,,0,0,0,,结尾被截掉",
	} {
		if !strings.Contains(ass, want) {
			t.Fatalf("missing %q in:\n%s", want, ass)
		}
	}
	if strings.Contains(ass, "不在范围") {
		t.Fatalf("entry outside clip rendered")
	}
}

func TestRenderClipASS_Orientation(t *testing.T) {
	style := DefaultStyle()
	style.Orientation = Vertical
	text := strings.Repeat("字", 20)
	ass, _ := RenderClipASS([]types.SubtitleEntry{{Start: 0, End: 2, Text: text}}, 0, 10, style)
	if !strings.Contains(ass, "PlayResX: 1080") || !strings.Contains(ass, "PlayResY: 1920") {
		t.Fatalf("expected vertical resolution:\n%s", ass)
	}
	if !strings.Contains(ass, strings.Repeat("字", 14)+`\N`+strings.Repeat("字", 6)) {
		t.Fatalf("expected a 14-rune wrap:\n%s", ass)
	}

	style.Orientation = Horizontal
	ass, _ = RenderClipASS([]types.SubtitleEntry{{Start: 0, End: 2, Text: text}}, 0, 10, style)
	if strings.Contains(ass, `\N`) {
		t.Fatalf("20 runes should fit a horizontal line:\n%s", ass)
	}
}

func TestWrap_FlattensExistingBreaks(t *testing.T) {
	got := wrap(flatten("ab\ncd\\Nef"), 4)
	if got != `abcd\Nef` {
		t.Fatalf("wrap = %q", got)
	}
}

func TestSanitizeASS_OverrideBraces(t *testing.T) {
	if got := sanitizeASS(" {\\b1}hi "); got != `(\\b1)hi` {
		t.Fatalf("sanitizeASS = %q", got)
	}
}

func TestRestyleASS(t *testing.T) {
	old := "\ufeff[Script Info]\r\nPlayResX: 1920\r\nPlayResY: 1080\r\n\r\n[V4+ Styles]\r\n" +
		"Style: Default,Arial,40,&H00FFFFFF,&H00FFFFFF,&H00000000,0,0,0,0,100,100,0,0,1,1,0,2,10,10,20,1\r\n" +
		"\r\n[Events]\r\n" +
		"Dialogue: 0,0:00:00.00,0:00:02.00,Default,,0,0,0,," + strings.Repeat("字", 10) + `\N` + strings.Repeat("字", 10) + "\r\n" +
		"Dialogue: 0,0:00:02.00,0:00:03.00,Default,,0,0,0,,{\\an8}置顶, 保留\r\n"

	style := DefaultStyle()
	style.Orientation = Vertical
	got := RestyleASS(old, style)

	if strings.Contains(got, "\r") || strings.HasPrefix(got, "\ufeff") {
		t.Fatalf("expected LF output without BOM: %q", got)
	}
	for _, want := range []string{
		"PlayResX: 1080\n",
		"PlayResY: 1920\n",
		styleLine(style) + "\n",
		",Default,,0,0,0,," + strings.Repeat("字", 14) + `\N` + strings.Repeat("字", 6) + "\n",
		",Default,,0,0,0,,{\\an8}置顶, 保留\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Arial") {
		t.Fatalf("old style line survived:\n%s", got)
	}
}
