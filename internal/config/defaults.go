package config

import "github.com/forPelevin/dmcut/internal/domain/highlights"

const (
	defaultOutputDir = "dmcut_output"
	defaultStateDB   = "~/.local/share/dmcut/dmcut.db"
	defaultDict      = "~/.config/dmcut/asr_dict.txt"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	engine := highlights.DefaultConfig()
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDB:   defaultStateDB,
		},
		Analysis: Analysis{
			WindowSize:  engine.WindowSize,
			MinDensity:  engine.MinDensity,
			TopN:        engine.TopN,
			Oversample:  engine.Oversample,
			Lookback:    engine.Lookback,
			MergeGap:    engine.MergeGap,
			MaxDuration: engine.MaxDuration,
			MinDuration: engine.MinDuration,
		},
		Weights: Weights{
			LongTextChars: highlights.DefaultLongTextChars,
			LongTextBonus: highlights.DefaultLongTextBonus,
		},
		Padding: Padding{PreSentences: 5, PostSentences: 2},
		Subtitle: Subtitle{
			Orientation:  "horizontal",
			FontFamily:   "Microsoft YaHei",
			FontSize:     120,
			PrimaryColor: "&H0000E1FF",
			OutlineColor: "&H00000000",
			OutlineWidth: 7,
			ShadowDepth:  2,
			MarginV:      50,
		},
		Cover: Cover{
			Count:       5,
			FontSize:    150,
			TopColor:    "white",
			BottomColor: "0xFFE100",
			StrokeColor: "black",
			StrokeWidth: 12,
			TopY:        0.2,
			BottomY:     0.75,
		},
		LLM: LLM{
			TimeoutSeconds: 60,
			MaxTokens:      600,
			Temperature:    0.7,
		},
		FFmpeg: FFmpeg{
			FFmpegPath:   "ffmpeg",
			FFprobePath:  "ffprobe",
			Preset:       "veryfast",
			CRF:          23,
			AudioCodec:   "aac",
			AudioBitrate: "192k",
		},
		Correction: Correction{Dictionary: defaultDict},
		Logging:    Logging{Format: "console", Level: "info"},
	}
}
