package schedule

import (
	"fmt"

	"tavolo/models"
)

// NewWeeklyPattern builds a validated weekly pattern from seven day windows.
// The pattern must carry exactly one window per weekday 0-6; every open day
// needs well-formed "HH:MM" times with openTime != closeTime (a zero-length
// window is a data-entry error, use isOpen=false for an always-closed day).
// Closed days keep whatever times they arrived with; evaluation ignores them.
func NewWeeklyPattern(days []models.DayWindow) (models.WeeklyPattern, error) {
	if len(days) != 7 {
		return models.WeeklyPattern{}, &InvalidPatternError{Day: -1, Message: fmt.Sprintf("expected 7 day windows, got %d", len(days))}
	}

	var seen [7]bool
	for _, d := range days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return models.WeeklyPattern{}, &InvalidPatternError{Day: d.DayOfWeek, Message: "dayOfWeek must be 0-6"}
		}
		if seen[d.DayOfWeek] {
			return models.WeeklyPattern{}, &InvalidPatternError{Day: d.DayOfWeek, Message: "duplicate dayOfWeek"}
		}
		seen[d.DayOfWeek] = true

		if !d.IsOpen {
			continue
		}
		open, err := ParseClock(d.OpenTime)
		if err != nil {
			return models.WeeklyPattern{}, &InvalidPatternError{Day: d.DayOfWeek, Message: fmt.Sprintf("bad openTime %q", d.OpenTime)}
		}
		close, err := ParseClock(d.CloseTime)
		if err != nil {
			return models.WeeklyPattern{}, &InvalidPatternError{Day: d.DayOfWeek, Message: fmt.Sprintf("bad closeTime %q", d.CloseTime)}
		}
		if open == close {
			return models.WeeklyPattern{}, &InvalidPatternError{Day: d.DayOfWeek, Message: "openTime and closeTime are equal; use isOpen=false for a closed day"}
		}
	}

	out := make([]models.DayWindow, len(days))
	copy(out, days)
	return models.WeeklyPattern{Days: out}, nil
}

// ParseClock converts a minute-resolution "HH:MM" wall-clock string into
// minutes from midnight. All four positions must be digits; signs and
// spaces are rejected.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("malformed clock value %q", s)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("malformed clock value %q", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}
