// Package timecode converts between seconds and the clock strings used in
// manifests, ASS files and SRT files.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders seconds as HH:MM:SS, truncating fractions.
func Format(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// FormatASS renders seconds as H:MM:SS.cc.
func FormatASS(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int(math.Round(sec * 100))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// Parse accepts H:MM:SS, H:MM:SS.frac, H:MM:SS,mmm and MM:SS[.frac].
func Parse(value string) (float64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("timecode: empty value")
	}
	parts := strings.Split(strings.Replace(raw, ",", ".", 1), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("timecode: unrecognised %q", value)
	}

	var hours, minutes int
	var err error
	if len(parts) == 3 {
		if hours, err = strconv.Atoi(parts[0]); err != nil || hours < 0 {
			return 0, fmt.Errorf("timecode: bad hours in %q", value)
		}
		parts = parts[1:]
	}
	if minutes, err = strconv.Atoi(parts[0]); err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("timecode: bad minutes in %q", value)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("timecode: bad seconds in %q", value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}

// ParseRange parses "START-END" where both sides are accepted by Parse.
func ParseRange(value string) (float64, float64, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok {
		return 0, 0, fmt.Errorf("timecode: range %q has no separator", value)
	}
	start, err := Parse(left)
	if err != nil {
		return 0, 0, err
	}
	end, err := Parse(right)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("timecode: range %q ends before it starts", value)
	}
	return start, end, nil
}

// FormatRange is the inverse of ParseRange at whole-second precision.
func FormatRange(start, end float64) string {
	return Format(start) + "-" + Format(end)
}
