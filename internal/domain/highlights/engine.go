package highlights

import (
	"github.com/forPelevin/dmcut/internal/types"
)

// Config holds every tunable of the highlight engine. It is read-only input;
// callers build one per run.
type Config struct {
	WindowSize int
	MinDensity float64
	TopN       int
	Oversample int
	Lookback   int
	MergeGap   float64
	// MaxDuration caps a merged run while merging.
	MaxDuration float64
	MinDuration float64
	// MaxKeepDuration is the upper duration bound of the final filter.
	// Zero means MaxDuration.
	MaxKeepDuration float64

	Rules         []Rule
	LongTextChars int
	LongTextBonus float64
}

func DefaultConfig() Config {
	return Config{
		WindowSize:    10,
		MinDensity:    5,
		TopN:          25,
		Oversample:    5,
		Lookback:      5,
		MergeGap:      10,
		MaxDuration:   90,
		MinDuration:   10,
		Rules:         DefaultRules,
		LongTextChars: DefaultLongTextChars,
		LongTextBonus: DefaultLongTextBonus,
	}
}

func (c Config) Validate() error {
	switch {
	case c.WindowSize <= 0:
		return &ConfigError{Field: "window_size", Reason: "must be positive"}
	case c.TopN <= 0:
		return &ConfigError{Field: "top_n", Reason: "must be positive"}
	case c.Oversample <= 0:
		return &ConfigError{Field: "oversample", Reason: "must be positive"}
	case c.Lookback < 0:
		return &ConfigError{Field: "lookback", Reason: "must not be negative"}
	case c.MergeGap < 0:
		return &ConfigError{Field: "merge_gap", Reason: "must not be negative"}
	case c.MinDuration < 0:
		return &ConfigError{Field: "min_duration", Reason: "must not be negative"}
	case c.MaxDuration <= 0:
		return &ConfigError{Field: "max_duration", Reason: "must be positive"}
	case c.MinDuration > c.MaxDuration:
		return &ConfigError{Field: "min_duration", Reason: "must be <= max_duration"}
	case c.MaxKeepDuration != 0 && c.MaxKeepDuration < c.MinDuration:
		return &ConfigError{Field: "max_keep_duration", Reason: "must be >= min_duration"}
	case c.LongTextChars < 0:
		return &ConfigError{Field: "long_text_chars", Reason: "must not be negative"}
	}
	return nil
}

func (c Config) buildParams() BuildParams {
	keep := c.MaxKeepDuration
	if keep == 0 {
		keep = c.MaxDuration
	}
	return BuildParams{
		Window:          c.WindowSize,
		Lookback:        c.Lookback,
		TopLimit:        c.TopN * c.Oversample,
		MergeGap:        c.MergeGap,
		MaxDuration:     c.MaxDuration,
		MinDuration:     c.MinDuration,
		MaxKeepDuration: keep,
	}
}

// Result carries the final highlights together with the intermediate values
// worth reporting.
type Result struct {
	Points     []types.DensityPoint
	Threshold  float64
	Candidates []types.Candidate
	Highlights []types.HighlightInterval
}

// Detect runs weighting, density, threshold, interval building and ranking.
// It returns ErrEmptyInput when no event scored and a *ConfigError for an
// unusable config. An empty Highlights slice with a nil error means the run
// worked and found nothing.
func Detect(events []types.ChatEvent, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	w, err := NewWeigher(cfg.Rules, cfg.LongTextChars, cfg.LongTextBonus)
	if err != nil {
		return Result{}, err
	}

	points := SortedPoints(EstimateDensity(events, w, cfg.WindowSize))
	threshold, err := SelectThreshold(points, cfg.MinDensity)
	if err != nil {
		return Result{}, err
	}

	cands := BuildCandidates(points, threshold, cfg.buildParams())
	return Result{
		Points:     points,
		Threshold:  threshold,
		Candidates: cands,
		Highlights: Rank(cands, cfg.TopN),
	}, nil
}

// EligibleCount reports how many density points reach the threshold.
func (r Result) EligibleCount() int {
	n := 0
	for _, p := range r.Points {
		if p.Score >= r.Threshold {
			n++
		}
	}
	return n
}
