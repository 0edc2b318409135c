package schedule

import (
	"sort"
	"time"

	"tavolo/models"
)

// The evaluator is pure: it reads no wall clock and has no side effects, so
// it is safe to call concurrently and to memoize per (schedule version,
// minute-bucketed instant). All windows are half-open [openTime, closeTime)
// in elapsed time, so a midnight-crossing window and the following day's
// lookup partition the full 24h without double-counting the boundary minute.

// nextTransitionHorizon bounds the forward scan. The pattern repeats weekly,
// so any transition shows up within eight days of the query instant.
const nextTransitionHorizon = 8

// IsOpenAt reports whether the schedule holds the entity open at the given
// instant. Inactive schedules and instants outside [effectiveFrom,
// effectiveTo) are closed; "no governing schedule means open" is a consumer
// policy applied a level above, not here.
func IsOpenAt(s *models.Schedule, at time.Time) bool {
	if !withinEffectiveRange(s, at) {
		return false
	}
	loc, err := ResolveTimezone(s.Timezone)
	if err != nil {
		// Zone validity is enforced on write; a stale tzdb entry reads closed.
		return false
	}

	local := at.In(loc)
	minute := local.Hour()*60 + local.Minute()
	today := int(local.Weekday())

	if w := s.WeeklyPattern.Window(today); w.IsOpen {
		open, close, ok := windowBounds(w)
		if ok {
			if close > open {
				if open <= minute && minute < close {
					return true
				}
			} else if minute >= open { // crosses midnight; the tail is checked via tomorrow's lookup
				return true
			}
		}
	}

	// Yesterday's window may cross midnight into the current day.
	yesterday := (today + 6) % 7
	if w := s.WeeklyPattern.Window(yesterday); w.IsOpen {
		if open, close, ok := windowBounds(w); ok && close < open && minute < close {
			return true
		}
	}
	return false
}

// NextTransition returns the first instant strictly after at where the
// schedule's open/closed answer flips, or nil when no flip occurs before
// effectiveTo (or within the weekly repetition horizon).
func NextTransition(s *models.Schedule, at time.Time) *time.Time {
	if !s.IsActive {
		return nil
	}
	loc, err := ResolveTimezone(s.Timezone)
	if err != nil {
		return nil
	}

	current := IsOpenAt(s, at)
	for _, b := range boundaryInstants(s, at, loc) {
		if !b.After(at) {
			continue
		}
		if s.EffectiveTo != nil && b.After(*s.EffectiveTo) {
			break
		}
		if IsOpenAt(s, b) != current {
			t := b
			return &t
		}
		// A cutoff at effectiveTo itself evaluates closed above; anything
		// later cannot flip the answer back.
		if s.EffectiveTo != nil && b.Equal(*s.EffectiveTo) {
			break
		}
	}
	return nil
}

func withinEffectiveRange(s *models.Schedule, at time.Time) bool {
	if !s.IsActive || at.Before(s.EffectiveFrom) {
		return false
	}
	if s.EffectiveTo != nil && !at.Before(*s.EffectiveTo) {
		return false
	}
	return true
}

func windowBounds(w models.DayWindow) (open, close int, ok bool) {
	open, err := ParseClock(w.OpenTime)
	if err != nil {
		return 0, 0, false
	}
	close, err = ParseClock(w.CloseTime)
	if err != nil {
		return 0, 0, false
	}
	return open, close, true
}

// boundaryInstants materializes every candidate transition instant within the
// scan horizon: each day's open and close (close lands on the next calendar
// day for midnight-crossing windows) plus the effective-range edges.
func boundaryInstants(s *models.Schedule, at time.Time, loc *time.Location) []time.Time {
	local := at.In(loc)
	year, month, day := local.Date()

	var out []time.Time
	if s.EffectiveFrom.After(at) {
		out = append(out, s.EffectiveFrom)
	}
	if s.EffectiveTo != nil && s.EffectiveTo.After(at) {
		out = append(out, *s.EffectiveTo)
	}

	// Start one day back so a midnight-crossing window already in progress
	// contributes its close boundary.
	for offset := -1; offset <= nextTransitionHorizon; offset++ {
		date := time.Date(year, month, day+offset, 0, 0, 0, 0, loc)
		w := s.WeeklyPattern.Window(int(date.Weekday()))
		if !w.IsOpen {
			continue
		}
		open, close, ok := windowBounds(w)
		if !ok {
			continue
		}
		dy, dm, dd := date.Date()
		out = append(out, localInstant(dy, dm, dd, open, loc))
		if close > open {
			out = append(out, localInstant(dy, dm, dd, close, loc))
		} else {
			out = append(out, localInstant(dy, dm, dd+1, close, loc))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
