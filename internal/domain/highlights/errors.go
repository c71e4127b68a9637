package highlights

import "errors"

// ErrEmptyInput means there was nothing to score: no chat events produced a
// density point. It is distinct from a run that scored events but kept no
// highlights.
var ErrEmptyInput = errors.New("highlights: no scoreable density points")

// ConfigError reports an unusable engine setting before any work starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "highlights: " + e.Field + " " + e.Reason
}
