package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/dmcut/internal/types"
)

// CoverStyle controls the text drawn on cover frames. Colours are anything
// ffmpeg's drawtext accepts, e.g. "white" or "0xFFE100".
type CoverStyle struct {
	FontFile    string
	FontSize    int
	TopColor    string
	BottomColor string
	StrokeColor string
	StrokeWidth int
	TopY        float64
	BottomY     float64
}

func DefaultCoverStyle() CoverStyle {
	return CoverStyle{
		FontSize:    150,
		TopColor:    "white",
		BottomColor: "0xFFE100",
		StrokeColor: "black",
		StrokeWidth: 12,
		TopY:        0.2,
		BottomY:     0.75,
	}
}

// Options tune the encoder. Zero values fall back to the defaults in New.
type Options struct {
	FFmpegPath  string
	FFprobePath string
	Preset      string
	CRF         int
	AudioCodec  string
	AudioRate   string
	FontsDir    string
	Cover       CoverStyle
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type Adapter struct {
	opts Options
	run  runFunc
}

func New(opts Options) *Adapter {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.Preset == "" {
		opts.Preset = "veryfast"
	}
	if opts.CRF == 0 {
		opts.CRF = 23
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = "aac"
	}
	if opts.AudioRate == "" {
		opts.AudioRate = "192k"
	}
	if opts.Cover.FontSize == 0 {
		opts.Cover = DefaultCoverStyle()
	}
	return &Adapter{opts: opts, run: execRun}
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// RenderClip cuts [start,end) from in and re-encodes it to out, burning the
// ASS file at burnASS when it is set. Seeking before -i keeps long sources
// fast; ffmpeg resets timestamps so the ASS times are clip-local.
func (a *Adapter) RenderClip(ctx context.Context, in string, start, end time.Duration, out string, burnASS string) error {
	if end <= start {
		return fmt.Errorf("ffmpeg render clip: empty range %s-%s", start, end)
	}
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-t", fmtSeconds(end - start),
		"-i", in,
	}
	if burnASS != "" {
		filter := "ass=" + escapeFilterPath(burnASS)
		if a.opts.FontsDir != "" {
			filter += ":fontsdir=" + escapeFilterPath(a.opts.FontsDir)
		}
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", a.opts.Preset,
		"-crf", strconv.Itoa(a.opts.CRF),
		"-c:a", a.opts.AudioCodec,
		"-b:a", a.opts.AudioRate,
		out,
	)
	b, err := a.run(ctx, a.opts.FFmpegPath, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg render clip: %w\n%s", err, string(b))
	}
	return nil
}

// ExtractCover grabs the frame at `at` and draws the cover text on it.
func (a *Adapter) ExtractCover(ctx context.Context, in string, at time.Duration, out string, text types.CoverText) error {
	tmp, err := os.MkdirTemp("", "dmcut-cover-*")
	if err != nil {
		return fmt.Errorf("cover temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	// drawtext reads the text from files so no user text reaches the filter
	// graph parser.
	var filters []string
	st := a.opts.Cover
	lines := []struct {
		text  string
		color string
		y     float64
	}{
		{text.Top, st.TopColor, st.TopY},
		{text.Bottom, st.BottomColor, st.BottomY},
	}
	for i, ln := range lines {
		if strings.TrimSpace(ln.text) == "" {
			continue
		}
		p := filepath.Join(tmp, fmt.Sprintf("line%d.txt", i))
		if err := os.WriteFile(p, []byte(ln.text), 0o600); err != nil {
			return fmt.Errorf("cover text: %w", err)
		}
		filters = append(filters, drawtext(st, p, ln.color, ln.y))
	}

	args := []string{
		"-y",
		"-ss", fmtSeconds(at),
		"-i", in,
		"-frames:v", "1",
		"-q:v", "2",
	}
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}
	args = append(args, out)
	b, err := a.run(ctx, a.opts.FFmpegPath, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg extract cover: %w\n%s", err, string(b))
	}
	return nil
}

func drawtext(st CoverStyle, textFile, color string, y float64) string {
	parts := []string{"textfile=" + escapeFilterPath(textFile)}
	if st.FontFile != "" {
		parts = append(parts, "fontfile="+escapeFilterPath(st.FontFile))
	}
	parts = append(parts,
		"fontsize="+strconv.Itoa(st.FontSize),
		"fontcolor="+color,
		"borderw="+strconv.Itoa(st.StrokeWidth),
		"bordercolor="+st.StrokeColor,
		"x=(w-text_w)/2",
		fmt.Sprintf("y=h*%s-text_h/2", strconv.FormatFloat(y, 'f', -1, 64)),
	)
	return "drawtext=" + strings.Join(parts, ":")
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (time.Duration, error) {
	b, err := a.run(ctx, a.opts.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
