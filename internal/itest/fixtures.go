//go:build integration

package itest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/dmcut/internal/timecode"
)

// broadcast writes a recorded-stream folder: a chat .ass with one burst at
// 100-110s, a four-cue .srt and a three-minute test-pattern video.
func broadcast(t *testing.T, root, name string, withVideo bool) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	var chat strings.Builder
	chat.WriteString("[Script Info]\nScriptType: v4.00+\n\n[Events]\n")
	chat.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for sec := 100; sec < 110; sec++ {
		for i := 0; i < 3; i++ {
			at := float64(sec) + float64(i)*0.3
			fmt.Fprintf(&chat, "Dialogue: 0,%s,%s,R2L,,0,0,0,,{\\move(1920,40,-200,40)}笑死\n",
				timecode.FormatASS(at), timecode.FormatASS(at+8))
		}
	}
	fmt.Fprintf(&chat, "Dialogue: 0,%s,%s,R2L,,0,0,0,,晚安\n", timecode.FormatASS(170), timecode.FormatASS(178))
	writeFixture(t, filepath.Join(dir, "danmaku.ass"), chat.String())

	var srt strings.Builder
	cues := []struct {
		start, end float64
		text       string
	}{{90, 96, "前情提要"}, {100, 103, "开始了"}, {110, 115, "这波太强了"}, {125, 130, "收尾"}}
	for i, c := range cues {
		fmt.Fprintf(&srt, "%d\n%s,000 --> %s,000\n%s\n\n", i+1, timecode.Format(c.start), timecode.Format(c.end), c.text)
	}
	writeFixture(t, filepath.Join(dir, "live.srt"), srt.String())

	if withVideo {
		ff := exec.Command("ffmpeg",
			"-y",
			"-f", "lavfi", "-i", "testsrc=s=320x180:d=180:r=10",
			"-f", "lavfi", "-i", "sine=f=440:d=180",
			"-shortest",
			"-c:v", "libx264",
			"-preset", "ultrafast",
			"-pix_fmt", "yuv420p",
			"-c:a", "aac",
			filepath.Join(dir, "live.mp4"),
		)
		if b, err := ff.CombinedOutput(); err != nil {
			t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
		}
	}
	return dir
}

// writeConfig writes a config that keeps output and run history under root.
func writeConfig(t *testing.T, root string) string {
	t.Helper()
	path := filepath.Join(root, "dmcut.toml")
	body := fmt.Sprintf(`[paths]
output_dir = %q
state_db = %q

[cover]
count = 2

[ffmpeg]
preset = "ultrafast"

[correction]
dictionary = ""
`, filepath.ToSlash(filepath.Join(root, "out")), filepath.ToSlash(filepath.Join(root, "state.db")))
	writeFixture(t, path, body)
	return path
}

func writeFixture(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
