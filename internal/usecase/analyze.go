package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/forPelevin/dmcut/internal/domain/excerpt"
	"github.com/forPelevin/dmcut/internal/domain/highlights"
	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

// FailedTitle marks a clip whose metadata could not be generated.
const FailedTitle = "AI生成失败"

type AnalyzeInput struct {
	InputDir     string
	ChatFile     string
	SubtitleFile string
	Events       []types.ChatEvent
	Subtitles    []types.SubtitleEntry
	Engine       highlights.Config
	Window       excerpt.Window
	Broadcast    string
	Members      []string
}

type AnalyzeResult struct {
	Manifest  types.Manifest
	Detection highlights.Result
	// Fallbacks counts clips that got placeholder metadata after a
	// generator failure.
	Fallbacks int
}

// Analyze finds highlights in the chat track and asks the metadata
// generator to describe each one. A generator failure never aborts the run.
func (u Usecase) Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeResult, error) {
	log := u.d.Log
	det, err := highlights.Detect(in.Events, in.Engine)
	if err != nil {
		return AnalyzeResult{}, err
	}
	log.Info("density scored",
		"events", len(in.Events),
		"points", len(det.Points),
		"threshold", det.Threshold,
		"eligible", det.EligibleCount(),
		"highlights", len(det.Highlights),
	)

	m := types.Manifest{
		RunID:    uuid.NewString(),
		Input:    in.InputDir,
		Chat:     in.ChatFile,
		Subtitle: in.SubtitleFile,
		Clips:    make([]types.ManifestClip, 0, len(det.Highlights)),
	}
	res := AnalyzeResult{Detection: det}

	for _, h := range det.Highlights {
		if err := ctx.Err(); err != nil {
			return AnalyzeResult{}, err
		}
		ts := timecode.FormatRange(h.Start, h.End)
		ex := excerpt.Build(in.Events, in.Subtitles, h.Start, h.End, in.Window)
		req := types.MetadataRequest{
			Broadcast:  in.Broadcast,
			Members:    in.Members,
			SourceName: filepath.Base(in.ChatFile),
			Timestamp:  ts,
			Subtitles:  ex.SubtitleText(),
			Chat:       ex.ChatText(),
		}

		log.Info("describing highlight", "clip", h.Rank, "total", len(det.Highlights), "range", ts)
		meta, err := u.d.Meta.Generate(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return AnalyzeResult{}, ctx.Err()
			}
			log.Warn("metadata generation failed, using placeholder", "clip", h.Rank, "error", err)
			meta = types.ClipMeta{Title: FailedTitle}
			res.Fallbacks++
		}

		m.Clips = append(m.Clips, types.ManifestClip{
			Index:     h.Rank,
			Timestamp: ts,
			StartSec:  h.Start,
			EndSec:    h.End,
			Score:     h.Score,
			ChatCount: h.Count,
			ClipMeta:  meta,
		})
	}
	res.Manifest = m

	if u.d.Runs != nil {
		rec := types.RunRecord{
			ID:           m.RunID,
			InputDir:     in.InputDir,
			ChatFile:     in.ChatFile,
			SubtitleFile: in.SubtitleFile,
			Threshold:    det.Threshold,
			Points:       len(det.Points),
			CreatedAt:    u.d.Now(),
			Clips:        m.Clips,
		}
		if err := u.d.Runs.SaveRun(ctx, rec); err != nil {
			log.Warn("run history not recorded", "run_id", m.RunID, "error", fmt.Errorf("save run: %w", err))
		}
	}
	return res, nil
}
