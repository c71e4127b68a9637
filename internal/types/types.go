package types

import "time"

// ChatEvent is one bullet comment. Time is seconds from the start of the
// source media.
type ChatEvent struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}

// SubtitleEntry is one sentence-level subtitle cue.
type SubtitleEntry struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DensityPoint is the forward-window chat density at one integer second.
type DensityPoint struct {
	Second int
	Score  float64
	Count  int
}

type Candidate struct {
	Start float64
	End   float64
	Score float64
	Count int
}

func (c Candidate) Duration() float64 { return c.End - c.Start }

// HighlightInterval is a ranked engine result. Rank is the 1-based
// chronological position among the surviving highlights.
type HighlightInterval struct {
	Candidate
	Rank int
}

type ExpandedRange struct {
	Start float64
	End   float64
}

func (r ExpandedRange) Duration() float64 { return r.End - r.Start }

// ClipMeta is the generated presentation metadata for one highlight.
type ClipMeta struct {
	Title           string `json:"title"`
	Summary         string `json:"summary"`
	CoverText1      string `json:"cover_text_1"`
	CoverText2      string `json:"cover_text_2"`
	HighlightReason string `json:"highlight_reason"`
}

// Manifest is the hand-off file between analyze and export. Clips may be
// edited by hand before export.
type Manifest struct {
	RunID    string         `json:"run_id,omitempty"`
	Input    string         `json:"input"`
	Chat     string         `json:"chat,omitempty"`
	Subtitle string         `json:"subtitle,omitempty"`
	Clips    []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	Index     int     `json:"index"`
	Timestamp string  `json:"timestamp"`
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`
	Score     float64 `json:"score"`
	ChatCount int     `json:"danmaku_count"`
	ClipMeta
}

// ExportedClip describes the files produced for one manifest clip.
type ExportedClip struct {
	Index    int
	Title    string
	Dir      string
	Video    string
	Subtitle string
	Covers   []string
	Range    ExpandedRange
	Aligned  bool
}

// MetadataRequest is the context handed to the metadata generator for one
// highlight. Subtitles and Chat are pre-formatted excerpts.
type MetadataRequest struct {
	Broadcast  string
	Members    []string
	SourceName string
	Timestamp  string
	Subtitles  string
	Chat       string
}

// CoverText is burned onto cover frames; Bottom may be empty.
type CoverText struct {
	Top    string
	Bottom string
}

// RunRecord is one analyze run as kept in the history store.
type RunRecord struct {
	ID           string
	InputDir     string
	ChatFile     string
	SubtitleFile string
	Threshold    float64
	Points       int
	CreatedAt    time.Time
	Clips        []ManifestClip
}
