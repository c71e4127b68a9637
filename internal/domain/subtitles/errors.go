package subtitles

import "errors"

// ErrNoOverlap reports that no subtitle entry intersects the target range.
// The range returned alongside it is the unchanged target and is usable.
var ErrNoOverlap = errors.New("subtitles: no entry overlaps the target range")

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string { return "subtitles: " + e.Field + " " + e.Reason }
