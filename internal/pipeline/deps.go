package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/forPelevin/dmcut/internal/config"
	"github.com/forPelevin/dmcut/internal/domain/subtitles"
	"github.com/forPelevin/dmcut/internal/logging"
	"github.com/forPelevin/dmcut/internal/ports"
	"github.com/forPelevin/dmcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/dmcut/internal/ports/adapters/llm"
	"github.com/forPelevin/dmcut/internal/store"
)

// Deps are the adapters a Runner drives. Close releases whatever Open
// acquired.
type Deps struct {
	Video ports.VideoTool
	Meta  ports.MetadataGenerator
	Runs  ports.RunRecorder
	Close func() error
}

// OpenDeps builds the production adapters from cfg. With noLLM the
// metadata generator is the offline placeholder and no API key is needed.
// withHistory opens the run store.
func OpenDeps(ctx context.Context, cfg *config.Config, log *slog.Logger, noLLM, withHistory bool) (Deps, error) {
	d := Deps{
		Video: ffmpeg.New(ffmpegOptions(cfg)),
		Close: func() error { return nil },
	}

	if noLLM {
		d.Meta = llm.Placeholder{}
	} else {
		a, err := llm.New(llm.Config{
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			Model:        cfg.LLM.Model,
			AllowedHosts: cfg.LLM.AllowedHosts,
			Timeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			MaxTokens:    cfg.LLM.MaxTokens,
			Temperature:  float32(cfg.LLM.Temperature),
		})
		if err != nil {
			return Deps{}, fmt.Errorf("config: %w", err)
		}
		d.Meta = a
	}

	if withHistory {
		s, err := store.Open(ctx, cfg.Paths.StateDB)
		if err != nil {
			logging.NewComponentLogger(log, "pipeline").Warn("run history unavailable", "db", cfg.Paths.StateDB, "error", err)
		} else {
			d.Runs = s
			d.Close = s.Close
		}
	}
	return d, nil
}

func ffmpegOptions(cfg *config.Config) ffmpeg.Options {
	return ffmpeg.Options{
		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
		Preset:      cfg.FFmpeg.Preset,
		CRF:         cfg.FFmpeg.CRF,
		AudioCodec:  cfg.FFmpeg.AudioCodec,
		AudioRate:   cfg.FFmpeg.AudioBitrate,
		FontsDir:    cfg.Paths.FontsDir,
		Cover: ffmpeg.CoverStyle{
			FontFile:    cfg.Cover.FontFile,
			FontSize:    cfg.Cover.FontSize,
			TopColor:    cfg.Cover.TopColor,
			BottomColor: cfg.Cover.BottomColor,
			StrokeColor: cfg.Cover.StrokeColor,
			StrokeWidth: cfg.Cover.StrokeWidth,
			TopY:        cfg.Cover.TopY,
			BottomY:     cfg.Cover.BottomY,
		},
	}
}

func subtitleStyle(cfg *config.Config) subtitles.Style {
	s := cfg.Subtitle
	return subtitles.Style{
		Orientation:  s.Orientation,
		FontFamily:   s.FontFamily,
		FontSize:     s.FontSize,
		PrimaryColor: s.PrimaryColor,
		OutlineColor: s.OutlineColor,
		OutlineWidth: s.OutlineWidth,
		ShadowDepth:  s.ShadowDepth,
		MarginV:      s.MarginV,
		MaxChars:     s.MaxChars,
	}
}

// ErrBusy means another dmcut process holds the output folder lock.
var ErrBusy = errors.New("another dmcut export is running for this output folder")

var (
	_ ports.VideoTool         = (*ffmpeg.Adapter)(nil)
	_ ports.MetadataGenerator = (*llm.Adapter)(nil)
	_ ports.MetadataGenerator = llm.Placeholder{}
	_ ports.RunRecorder       = (*store.Store)(nil)
)
