// Package pipeline binds configuration, input discovery and adapters to the
// analyze and export use cases.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gofrs/flock"

	"github.com/forPelevin/dmcut/internal/config"
	"github.com/forPelevin/dmcut/internal/domain/danmaku"
	"github.com/forPelevin/dmcut/internal/domain/excerpt"
	"github.com/forPelevin/dmcut/internal/domain/subtitles"
	"github.com/forPelevin/dmcut/internal/fileutil"
	"github.com/forPelevin/dmcut/internal/logging"
	"github.com/forPelevin/dmcut/internal/types"
	"github.com/forPelevin/dmcut/internal/usecase"
)

const lockFile = ".dmcut.lock"

type Runner struct {
	cfg *config.Config
	log *slog.Logger
	uc  usecase.Usecase
}

func New(cfg *config.Config, log *slog.Logger, d Deps) *Runner {
	if log == nil {
		log = logging.NewNop()
	}
	return &Runner{
		cfg: cfg,
		log: logging.NewComponentLogger(log, "pipeline"),
		uc: usecase.New(usecase.Deps{
			Video: d.Video,
			Meta:  d.Meta,
			Runs:  d.Runs,
			Log:   logging.NewComponentLogger(log, "usecase"),
		}),
	}
}

// OutputDir is where clips cut from inputDir are written.
func (r *Runner) OutputDir(inputDir string) string {
	name := normalizePathSegment(filepath.Base(filepath.Clean(inputDir)))
	if name == "" {
		name = "input"
	}
	return filepath.Join(r.cfg.Paths.OutputDir, name)
}

// ManifestPath is the default manifest location for inputDir.
func (r *Runner) ManifestPath(inputDir string) string {
	return filepath.Join(r.OutputDir(inputDir), ManifestFile)
}

type AnalyzeReport struct {
	ManifestPath string
	usecase.AnalyzeResult
}

// Analyze scans inputDir for one chat file (.ass export or .bin segment)
// and one .srt, detects highlights and writes the manifest.
func (r *Runner) Analyze(ctx context.Context, inputDir string) (AnalyzeReport, error) {
	dir, err := inputFolder(inputDir)
	if err != nil {
		return AnalyzeReport{}, err
	}
	r.correctBestEffort(dir)

	chatPath, err := fileutil.FindUnique(dir, fileutil.ChatExts...)
	if err != nil {
		return AnalyzeReport{}, fmt.Errorf("chat file: %w", err)
	}
	srtPath, err := fileutil.FindUnique(dir, fileutil.SubtitleExts...)
	if err != nil {
		return AnalyzeReport{}, fmt.Errorf("subtitle file: %w", err)
	}
	r.log.Info("inputs found", "chat", filepath.Base(chatPath), "subtitles", filepath.Base(srtPath))

	events, err := readFile(chatPath, danmaku.ParserFor(chatPath))
	if err != nil {
		return AnalyzeReport{}, fmt.Errorf("parse chat: %w", err)
	}
	subs, err := readFile(srtPath, subtitles.ReadSRT)
	if err != nil {
		return AnalyzeReport{}, fmt.Errorf("parse subtitles: %w", err)
	}
	r.log.Info("inputs parsed", "events", len(events), "subtitles", len(subs))

	res, err := r.uc.Analyze(ctx, usecase.AnalyzeInput{
		InputDir:     dir,
		ChatFile:     chatPath,
		SubtitleFile: srtPath,
		Events:       events,
		Subtitles:    subs,
		Engine:       r.cfg.EngineConfig(),
		Window:       excerpt.DefaultWindow(),
		Broadcast:    r.cfg.Broadcast.Group,
		Members:      r.cfg.Broadcast.Members,
	})
	if err != nil {
		return AnalyzeReport{}, err
	}

	path := r.ManifestPath(dir)
	if err := WriteManifest(path, res.Manifest); err != nil {
		return AnalyzeReport{}, err
	}
	r.log.Info("manifest written", "clips", len(res.Manifest.Clips), "path", path)
	return AnalyzeReport{ManifestPath: path, AnalyzeResult: res}, nil
}

type ExportRequest struct {
	InputDir string
	// Manifest overrides the default manifest path.
	Manifest string
	Covers   bool
	ForceASS bool
}

type ExportReport struct {
	OutputDir string
	usecase.ExportResult
}

// Export cuts every clip of the manifest from the single video in
// InputDir. The output folder is locked for the duration.
func (r *Runner) Export(ctx context.Context, req ExportRequest) (ExportReport, error) {
	dir, err := inputFolder(req.InputDir)
	if err != nil {
		return ExportReport{}, err
	}
	outDir := r.OutputDir(dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ExportReport{}, fmt.Errorf("create output dir: %w", err)
	}
	unlock, err := lockDir(outDir)
	if err != nil {
		return ExportReport{}, err
	}
	defer unlock()

	manifestPath := req.Manifest
	if manifestPath == "" {
		manifestPath = filepath.Join(outDir, ManifestFile)
	}
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return ExportReport{}, err
	}
	if len(m.Clips) == 0 {
		r.log.Info("manifest has no clips", "path", manifestPath)
		return ExportReport{OutputDir: outDir}, nil
	}

	r.correctBestEffort(dir)
	video, err := fileutil.FindUnique(dir, fileutil.VideoExts...)
	if err != nil {
		return ExportReport{}, fmt.Errorf("source video: %w", err)
	}
	srtPath, err := fileutil.FindOptional(dir, fileutil.SubtitleExts...)
	if err != nil {
		return ExportReport{}, fmt.Errorf("subtitle file: %w", err)
	}
	subs, err := r.loadSubtitles(srtPath)
	if err != nil {
		return ExportReport{}, err
	}
	if err := fileutil.WriteSourceMeta(outDir, fileutil.SourceMeta{SourceVideo: video, SRTFile: srtPath}); err != nil {
		return ExportReport{}, fmt.Errorf("write source meta: %w", err)
	}

	opts := r.exportOptions(video, subs, req.ForceASS)
	if !req.Covers {
		opts.Covers = 0
	}
	r.log.Info("export started", "clips", len(m.Clips), "video", filepath.Base(video), "out", outDir)
	res, err := r.uc.Export(ctx, usecase.ExportInput{ExportOptions: opts, OutDir: outDir, Clips: m.Clips})
	report := ExportReport{OutputDir: outDir, ExportResult: res}
	if err != nil {
		return report, err
	}
	r.log.Info("export finished", "exported", len(res.Clips), "failed", res.Failed)
	return report, nil
}

// Regen re-renders one exported clip folder from its clip.json, locating
// the source video through the nearest source meta file. Covers are rebuilt
// when cover.count is positive; with zero, covers already in the folder are
// left alone.
func (r *Runner) Regen(ctx context.Context, clipDir string, forceASS bool) (types.ExportedClip, error) {
	dir, err := inputFolder(clipDir)
	if err != nil {
		return types.ExportedClip{}, err
	}
	clip, err := usecase.ReadClipFile(dir)
	if err != nil {
		return types.ExportedClip{}, err
	}
	meta, err := fileutil.LoadSourceMeta(dir)
	if err != nil {
		return types.ExportedClip{}, fmt.Errorf("source meta: %w", err)
	}
	if meta.SourceVideo == "" {
		return types.ExportedClip{}, errors.New("source meta has no source_video")
	}
	unlock, err := lockDir(filepath.Dir(dir))
	if err != nil {
		return types.ExportedClip{}, err
	}
	defer unlock()

	subs, err := r.loadSubtitles(meta.SRTFile)
	if err != nil {
		return types.ExportedClip{}, err
	}
	r.log.Info("regenerating clip", "dir", dir, "title", clip.Title)
	return r.uc.ExportClip(ctx, clip, dir, r.exportOptions(meta.SourceVideo, subs, forceASS))
}

// Correct applies the replacement dictionary to every subtitle file in dir.
func (r *Runner) Correct(dir string) (int, error) {
	dict := r.cfg.Correction.Dictionary
	c, err := loadCorrector(dict, r.log)
	if err != nil {
		return 0, err
	}
	return c.CorrectDir(dir, dict, r.log)
}

// Shift moves every clip in the manifest at path by offset seconds and
// writes it back. It returns the new manifest and how many clips fell
// entirely before the start of the recording and were dropped.
func (r *Runner) Shift(path string, offset float64) (types.Manifest, int, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return types.Manifest{}, 0, err
	}
	var dropped int
	m.Clips, dropped = usecase.ShiftClips(m.Clips, offset)
	if dropped > 0 {
		r.log.Warn("clips before the start of the recording dropped", "dropped", dropped)
	}
	if err := WriteManifest(path, m); err != nil {
		return types.Manifest{}, 0, err
	}
	r.log.Info("manifest shifted", "path", path, "offset", offset, "clips", len(m.Clips))
	return m, dropped, nil
}

func (r *Runner) exportOptions(video string, subs []types.SubtitleEntry, forceASS bool) usecase.ExportOptions {
	return usecase.ExportOptions{
		Video:     video,
		Subtitles: subs,
		Pre:       r.cfg.Padding.PreSentences,
		Post:      r.cfg.Padding.PostSentences,
		Style:     subtitleStyle(r.cfg),
		Covers:    r.cfg.Cover.Count,
		ForceASS:  forceASS,
	}
}

func (r *Runner) loadSubtitles(path string) ([]types.SubtitleEntry, error) {
	if path == "" {
		r.log.Warn("no subtitle file, clips are cut without alignment or subtitles")
		return nil, nil
	}
	subs, err := readFile(path, subtitles.ReadSRT)
	if err != nil {
		return nil, fmt.Errorf("parse subtitles: %w", err)
	}
	return subs, nil
}

// correctBestEffort runs the dictionary over dir when correction is on. A
// missing or broken dictionary is logged, not fatal.
func (r *Runner) correctBestEffort(dir string) {
	if !r.cfg.Correction.Enabled {
		return
	}
	n, err := r.Correct(dir)
	if err != nil {
		r.log.Warn("subtitle correction skipped", "error", err)
		return
	}
	r.log.Info("subtitle correction applied", "files", n)
}

func loadCorrector(path string, log *slog.Logger) (*subtitles.Corrector, error) {
	if path == "" {
		return nil, errors.New("correction.dictionary is not set")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return subtitles.LoadDictionary(f, log)
}

func lockDir(dir string) (func(), error) {
	lock := flock.New(filepath.Join(dir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, dir)
	}
	return func() { _ = lock.Unlock() }, nil
}

func inputFolder(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("input folder is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("input %s is not a folder", abs)
	}
	return abs, nil
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
