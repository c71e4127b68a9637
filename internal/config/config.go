package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/dmcut/internal/domain/highlights"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and state locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDB   string `toml:"state_db"`
	FontsDir  string `toml:"fonts_dir"`
}

// Analysis holds the highlight engine tunables.
type Analysis struct {
	WindowSize      int     `toml:"window_size"`
	MinDensity      float64 `toml:"min_density"`
	TopN            int     `toml:"top_n"`
	Oversample      int     `toml:"oversample"`
	Lookback        int     `toml:"lookback"`
	MergeGap        float64 `toml:"merge_gap"`
	MaxDuration     float64 `toml:"max_duration"`
	MinDuration     float64 `toml:"min_duration"`
	MaxKeepDuration float64 `toml:"max_keep_duration"`
}

type WeightRule struct {
	Pattern string  `toml:"pattern"`
	Score   float64 `toml:"score"`
}

// Weights configures chat line weighting. Empty Rules means the built-in
// rule set.
type Weights struct {
	LongTextChars int          `toml:"long_text_chars"`
	LongTextBonus float64      `toml:"long_text_bonus"`
	Rules         []WeightRule `toml:"rules"`
}

// Padding is how many subtitle sentences a clip is widened by.
type Padding struct {
	PreSentences  int `toml:"pre_sentences"`
	PostSentences int `toml:"post_sentences"`
}

type Subtitle struct {
	Orientation  string  `toml:"orientation"`
	FontFamily   string  `toml:"font_family"`
	FontSize     int     `toml:"font_size"`
	PrimaryColor string  `toml:"primary_color"`
	OutlineColor string  `toml:"outline_color"`
	OutlineWidth float64 `toml:"outline_width"`
	ShadowDepth  float64 `toml:"shadow_depth"`
	MarginV      int     `toml:"margin_v"`
	MaxChars     int     `toml:"max_chars"`
}

type Cover struct {
	Count       int     `toml:"count"`
	FontFile    string  `toml:"font_file"`
	FontSize    int     `toml:"font_size"`
	TopColor    string  `toml:"top_color"`
	BottomColor string  `toml:"bottom_color"`
	StrokeColor string  `toml:"stroke_color"`
	StrokeWidth int     `toml:"stroke_width"`
	TopY        float64 `toml:"top_y"`
	BottomY     float64 `toml:"bottom_y"`
}

// Broadcast describes the stream for the metadata prompt. Members lists who
// appeared in this broadcast.
type Broadcast struct {
	Group   string   `toml:"group"`
	Members []string `toml:"members"`
}

type LLM struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	AllowedHosts   []string `toml:"allowed_hosts"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	MaxTokens      int      `toml:"max_tokens"`
	Temperature    float64  `toml:"temperature"`
}

type FFmpeg struct {
	FFmpegPath   string `toml:"ffmpeg_path"`
	FFprobePath  string `toml:"ffprobe_path"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	AudioCodec   string `toml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate"`
}

// Correction rewrites subtitle files with a replacement dictionary before
// they are read.
type Correction struct {
	Enabled    bool   `toml:"enabled"`
	Dictionary string `toml:"dictionary"`
}

type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for dmcut.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Analysis   Analysis   `toml:"analysis"`
	Weights    Weights    `toml:"weights"`
	Padding    Padding    `toml:"padding"`
	Subtitle   Subtitle   `toml:"subtitle"`
	Cover      Cover      `toml:"cover"`
	Broadcast  Broadcast  `toml:"broadcast"`
	LLM        LLM        `toml:"llm"`
	FFmpeg     FFmpeg     `toml:"ffmpeg"`
	Correction Correction `toml:"correction"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dmcut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has path fields expanded and environment overrides applied. A
// missing file is not an error; defaults are used.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config %s: unknown key(s) %s", resolvedPath, unknownKeys(strict))
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("dmcut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EngineConfig converts the analysis and weight sections for the highlight
// engine.
func (c *Config) EngineConfig() highlights.Config {
	rules := highlights.DefaultRules
	if len(c.Weights.Rules) > 0 {
		rules = make([]highlights.Rule, len(c.Weights.Rules))
		for i, r := range c.Weights.Rules {
			rules[i] = highlights.Rule{Pattern: r.Pattern, Score: r.Score}
		}
	}
	return highlights.Config{
		WindowSize:      c.Analysis.WindowSize,
		MinDensity:      c.Analysis.MinDensity,
		TopN:            c.Analysis.TopN,
		Oversample:      c.Analysis.Oversample,
		Lookback:        c.Analysis.Lookback,
		MergeGap:        c.Analysis.MergeGap,
		MaxDuration:     c.Analysis.MaxDuration,
		MinDuration:     c.Analysis.MinDuration,
		MaxKeepDuration: c.Analysis.MaxKeepDuration,
		Rules:           rules,
		LongTextChars:   c.Weights.LongTextChars,
		LongTextBonus:   c.Weights.LongTextBonus,
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func unknownKeys(err *toml.StrictMissingError) string {
	keys := make([]string, 0, len(err.Errors))
	for _, e := range err.Errors {
		keys = append(keys, strings.Join(e.Key(), "."))
	}
	return strings.Join(keys, ", ")
}
