package ports

import (
	"context"
	"time"

	"github.com/forPelevin/dmcut/internal/types"
)

type VideoTool interface {
	RenderClip(ctx context.Context, in string, start, end time.Duration, out string, burnASS string) error
	ExtractCover(ctx context.Context, in string, at time.Duration, out string, text types.CoverText) error
	ProbeDuration(ctx context.Context, in string) (time.Duration, error)
}

type MetadataGenerator interface {
	Generate(ctx context.Context, req types.MetadataRequest) (types.ClipMeta, error)
}

type RunRecorder interface {
	SaveRun(ctx context.Context, run types.RunRecord) error
}
