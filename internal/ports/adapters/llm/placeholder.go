package llm

import (
	"context"

	"github.com/forPelevin/dmcut/internal/types"
)

// Placeholder fills metadata without calling any service. Titles are derived
// from the clip timestamp so every clip folder gets a distinct name.
type Placeholder struct{}

func (Placeholder) Generate(_ context.Context, req types.MetadataRequest) (types.ClipMeta, error) {
	return types.ClipMeta{
		Title:           "高光 " + req.Timestamp,
		Summary:         "",
		CoverText1:      "高能片段",
		CoverText2:      "",
		HighlightReason: "弹幕密度峰值",
	}, nil
}
