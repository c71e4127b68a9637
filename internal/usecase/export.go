package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/dmcut/internal/domain/subtitles"
	"github.com/forPelevin/dmcut/internal/fileutil"
	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

// ClipFile is the per-clip record written next to the rendered video so a
// single clip can be re-rendered later.
const ClipFile = "clip.json"

type ExportOptions struct {
	Video     string
	Subtitles []types.SubtitleEntry
	Pre       int
	Post      int
	Style     subtitles.Style
	// Covers is how many cover frames to extract; zero disables covers.
	Covers   int
	ForceASS bool
	// Duration is the source video length in seconds. Zero means look it up;
	// negative means unknown, so ranges are not clamped.
	Duration float64
}

type ExportInput struct {
	ExportOptions
	OutDir string
	Clips  []types.ManifestClip
}

type ExportResult struct {
	Clips  []types.ExportedClip
	Failed int
}

// Export renders every manifest clip into its own NN_title folder under
// OutDir. A failing clip is logged and skipped; the call only fails when
// no clip could be exported.
func (u Usecase) Export(ctx context.Context, in ExportInput) (ExportResult, error) {
	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("create output dir: %w", err)
	}
	var (
		res  ExportResult
		errs []error
	)
	total := len(in.Clips)
	if total > 0 && in.Duration == 0 {
		in.Duration = u.videoLength(ctx, in.Video)
	}
	for i, clip := range in.Clips {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		dir := filepath.Join(in.OutDir, fileutil.ClipDirName(i+1, total, clipTitle(clip)))
		out, err := u.ExportClip(ctx, clip, dir, in.ExportOptions)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			u.d.Log.Error("clip export failed", "clip", i+1, "title", clip.Title, "error", err)
			res.Failed++
			errs = append(errs, fmt.Errorf("clip %d: %w", i+1, err))
			continue
		}
		res.Clips = append(res.Clips, out)
	}
	if total > 0 && res.Failed == total {
		return res, fmt.Errorf("every clip failed: %w", errors.Join(errs...))
	}
	return res, nil
}

// ExportClip renders one clip into dir: the range is widened to whole
// subtitle sentences, a clip-local ASS is written or an existing one
// restyled, the video is cut with the subtitles burned in, and cover frames
// are extracted from the unpadded range.
func (u Usecase) ExportClip(ctx context.Context, clip types.ManifestClip, dir string, opts ExportOptions) (types.ExportedClip, error) {
	log := u.d.Log
	start, end, err := clipRange(clip)
	if err != nil {
		return types.ExportedClip{}, err
	}
	if clip.Timestamp != "" {
		if _, _, err := timecode.ParseRange(clip.Timestamp); err != nil {
			log.Warn("bad timestamp, using start_sec/end_sec", "clip", clip.Index, "timestamp", clip.Timestamp, "error", err)
		}
	}

	rng, err := subtitles.Expand(opts.Subtitles, start, end, opts.Pre, opts.Post)
	aligned := err == nil && len(opts.Subtitles) > 0
	switch {
	case errors.Is(err, subtitles.ErrNoOverlap):
		log.Warn("no subtitle overlaps clip, using raw range", "title", clip.Title, "range", timecode.FormatRange(start, end))
	case err != nil:
		return types.ExportedClip{}, err
	}

	length := opts.Duration
	if length == 0 {
		length = u.videoLength(ctx, opts.Video)
	}
	if length > 0 {
		if rng.Start >= length {
			return types.ExportedClip{}, fmt.Errorf("clip starts at %s, after the video ends at %s",
				timecode.Format(rng.Start), timecode.Format(length))
		}
		if rng.End > length {
			log.Warn("clip runs past the end of the video, trimming", "title", clip.Title, "end", rng.End, "video", length)
			rng.End = length
			end = min(end, length)
			if end <= start {
				start, end = rng.Start, rng.End
			}
		}
	}

	title := clipTitle(clip)
	base := fileutil.SanitizeFilename(title)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.ExportedClip{}, fmt.Errorf("create clip dir: %w", err)
	}
	if err := fileutil.CleanOutputDir(dir, opts.Covers > 0); err != nil {
		return types.ExportedClip{}, fmt.Errorf("clean clip dir: %w", err)
	}

	out := types.ExportedClip{
		Index:   clip.Index,
		Title:   title,
		Dir:     dir,
		Video:   filepath.Join(dir, base+".mp4"),
		Range:   rng,
		Aligned: aligned,
	}

	out.Subtitle, err = u.prepareASS(filepath.Join(dir, base+".ass"), rng, opts)
	if err != nil {
		return types.ExportedClip{}, err
	}

	log.Info("rendering clip",
		"title", title,
		"range", timecode.FormatRange(rng.Start, rng.End),
		"duration", rng.Duration(),
		"subtitles", out.Subtitle != "",
	)
	if err := u.d.Video.RenderClip(ctx, opts.Video, seconds(rng.Start), seconds(rng.End), out.Video, out.Subtitle); err != nil {
		return types.ExportedClip{}, fmt.Errorf("render: %w", err)
	}

	if opts.Covers > 0 {
		text := types.CoverText{Top: clip.CoverText1, Bottom: clip.CoverText2}
		if text.Top == "" {
			text.Top = title
		}
		for i, at := range CoverTimes(start, end, opts.Covers) {
			path := filepath.Join(dir, fmt.Sprintf("%s_cover%d.jpg", base, i+1))
			if err := u.d.Video.ExtractCover(ctx, opts.Video, seconds(at), path, text); err != nil {
				log.Warn("cover extraction failed", "title", title, "cover", i+1, "error", err)
				continue
			}
			out.Covers = append(out.Covers, path)
		}
	}

	if err := writeClipFile(dir, clip); err != nil {
		return types.ExportedClip{}, err
	}
	return out, nil
}

// videoLength asks the video tool for the source length. A failure is logged
// and reported as -1 so the export goes ahead unclamped.
func (u Usecase) videoLength(ctx context.Context, video string) float64 {
	d, err := u.d.Video.ProbeDuration(ctx, video)
	if err != nil || d <= 0 {
		u.d.Log.Warn("video length unknown, clip ranges are not clamped", "video", video, "error", err)
		return -1
	}
	return d.Seconds()
}

// prepareASS returns the subtitle path to burn, or "" when the clip has no
// subtitles. A script already in the clip folder is kept and restyled
// unless ForceASS is set.
func (u Usecase) prepareASS(path string, rng types.ExpandedRange, opts ExportOptions) (string, error) {
	if opts.ForceASS {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("remove old subtitles: %w", err)
		}
	}
	if b, err := os.ReadFile(path); err == nil {
		u.d.Log.Info("keeping existing subtitles", "file", filepath.Base(path))
		if err := os.WriteFile(path, []byte(subtitles.RestyleASS(string(b), opts.Style)), 0o644); err != nil {
			return "", fmt.Errorf("restyle subtitles: %w", err)
		}
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read subtitles: %w", err)
	}

	if len(opts.Subtitles) == 0 {
		return "", nil
	}
	script, n := subtitles.RenderClipASS(opts.Subtitles, rng.Start, rng.End, opts.Style)
	if n == 0 {
		return "", nil
	}
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("write subtitles: %w", err)
	}
	return path, nil
}

// CoverTimes spreads count frames over [start,end]: the midpoint for one
// cover, otherwise evenly between 20% and 80% of the range.
func CoverTimes(start, end float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	d := end - start
	if count == 1 {
		return []float64{start + d*0.5}
	}
	out := make([]float64, count)
	step := 0.6 / float64(count-1)
	for i := range out {
		out[i] = start + d*(0.2+step*float64(i))
	}
	return out
}

// clipRange prefers the hand-editable timestamp over the numeric fields,
// which are the fallback when the timestamp is empty or malformed.
func clipRange(c types.ManifestClip) (float64, float64, error) {
	var tsErr error
	if c.Timestamp != "" {
		start, end, err := timecode.ParseRange(c.Timestamp)
		if err == nil {
			return start, end, nil
		}
		tsErr = err
	}
	if c.EndSec <= c.StartSec {
		if tsErr != nil {
			return 0, 0, fmt.Errorf("clip %d: %w", c.Index, tsErr)
		}
		return 0, 0, fmt.Errorf("clip %d: empty range %v-%v", c.Index, c.StartSec, c.EndSec)
	}
	return c.StartSec, c.EndSec, nil
}

func clipTitle(c types.ManifestClip) string {
	if c.Title != "" {
		return c.Title
	}
	return "clip"
}

func writeClipFile(dir string, clip types.ManifestClip) error {
	b, err := json.MarshalIndent(clip, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal clip: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ClipFile), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ClipFile, err)
	}
	return nil
}

// ReadClipFile loads the clip record written by ExportClip.
func ReadClipFile(dir string) (types.ManifestClip, error) {
	b, err := os.ReadFile(filepath.Join(dir, ClipFile))
	if err != nil {
		return types.ManifestClip{}, fmt.Errorf("read %s: %w", ClipFile, err)
	}
	var clip types.ManifestClip
	if err := json.Unmarshal(b, &clip); err != nil {
		return types.ManifestClip{}, fmt.Errorf("parse %s: %w", ClipFile, err)
	}
	return clip, nil
}
