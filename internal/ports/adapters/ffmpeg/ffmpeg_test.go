package ffmpeg

import (
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/dmcut/internal/types"
)

type recorder struct {
	name  string
	args  []string
	files map[string]string
	out   []byte
	err   error
}

func (r *recorder) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	r.files = map[string]string{}
	for _, a := range args {
		parts := strings.FieldsFunc(a, func(c rune) bool { return c == ':' || c == ',' })
		for _, part := range parts {
			if p, ok := strings.CutPrefix(part, "drawtext=textfile="); ok {
				b, _ := os.ReadFile(p)
				r.files[p] = string(b)
			}
		}
	}
	return r.out, r.err
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestRenderClip_Args(t *testing.T) {
	rec := &recorder{}
	a := New(Options{FontsDir: "/fonts"})
	a.run = rec.run

	err := a.RenderClip(context.Background(), "/in/live.flv", 95*time.Second, 124500*time.Millisecond, "/out/clip.mp4", "/out/a:b.ass")
	if err != nil {
		t.Fatal(err)
	}
	if rec.name != "ffmpeg" {
		t.Fatalf("binary = %s", rec.name)
	}
	if got := argAfter(rec.args, "-ss"); got != "95.000" {
		t.Fatalf("-ss = %s", got)
	}
	if got := argAfter(rec.args, "-t"); got != "29.500" {
		t.Fatalf("-t = %s", got)
	}
	if got := argAfter(rec.args, "-vf"); got != `ass=/out/a\:b.ass:fontsdir=/fonts` {
		t.Fatalf("-vf = %s", got)
	}
	if rec.args[len(rec.args)-1] != "/out/clip.mp4" {
		t.Fatalf("output must be last, got %v", rec.args)
	}
}

func TestRenderClip_NoSubtitles(t *testing.T) {
	rec := &recorder{}
	a := New(Options{})
	a.run = rec.run
	if err := a.RenderClip(context.Background(), "in.mp4", 0, time.Second, "out.mp4", ""); err != nil {
		t.Fatal(err)
	}
	if argAfter(rec.args, "-vf") != "" {
		t.Fatalf("unexpected filter: %v", rec.args)
	}
}

func TestRenderClip_EmptyRange(t *testing.T) {
	a := New(Options{})
	a.run = func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("ffmpeg must not run")
		return nil, nil
	}
	if err := a.RenderClip(context.Background(), "in.mp4", time.Second, time.Second, "out.mp4", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestRenderClip_IncludesToolOutputOnFailure(t *testing.T) {
	rec := &recorder{out: []byte("Invalid data found"), err: errors.New("exit status 1")}
	a := New(Options{})
	a.run = rec.run
	err := a.RenderClip(context.Background(), "in.mp4", 0, time.Second, "out.mp4", "")
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
}

func TestExtractCover_DrawsBothLines(t *testing.T) {
	rec := &recorder{}
	a := New(Options{})
	a.run = rec.run
	err := a.ExtractCover(context.Background(), "in.mp4", 100*time.Second, "cover.jpg", types.CoverText{Top: "嘉然: 名场面", Bottom: "笑疯了"})
	if err != nil {
		t.Fatal(err)
	}
	vf := argAfter(rec.args, "-vf")
	if strings.Count(vf, "drawtext=") != 2 {
		t.Fatalf("expected two drawtext filters, got %s", vf)
	}
	if !strings.Contains(vf, "y=h*0.2-text_h/2") || !strings.Contains(vf, "y=h*0.75-text_h/2") {
		t.Fatalf("unexpected positions: %s", vf)
	}
	var texts []string
	for _, v := range rec.files {
		texts = append(texts, v)
	}
	if len(texts) != 2 || !slices.Contains(texts, "嘉然: 名场面") || !slices.Contains(texts, "笑疯了") {
		t.Fatalf("expected cover text files to exist while ffmpeg runs, got %v", rec.files)
	}
	if argAfter(rec.args, "-frames:v") != "1" {
		t.Fatalf("expected a single frame: %v", rec.args)
	}
}

func TestExtractCover_NoText(t *testing.T) {
	rec := &recorder{}
	a := New(Options{})
	a.run = rec.run
	if err := a.ExtractCover(context.Background(), "in.mp4", 0, "cover.jpg", types.CoverText{}); err != nil {
		t.Fatal(err)
	}
	if argAfter(rec.args, "-vf") != "" {
		t.Fatalf("expected a bare frame grab, got %v", rec.args)
	}
}

func TestProbeDuration(t *testing.T) {
	rec := &recorder{out: []byte("3600.250000\n")}
	a := New(Options{FFprobePath: "/usr/bin/ffprobe"})
	a.run = rec.run
	d, err := a.ProbeDuration(context.Background(), "in.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if rec.name != "/usr/bin/ffprobe" || d != time.Hour+250*time.Millisecond {
		t.Fatalf("ProbeDuration = %s via %s", d, rec.name)
	}
}
