package schedule

import (
	"sync"
	"time"
)

// locationCache memoizes time.LoadLocation results; tzdata lookups hit the
// filesystem and every evaluation needs the schedule's zone.
var locationCache sync.Map // name -> *time.Location

// ResolveTimezone resolves an IANA zone name to its location, returning
// InvalidTimezoneError for names the tz database does not know.
func ResolveTimezone(name string) (*time.Location, error) {
	if name == "" {
		return nil, &InvalidTimezoneError{Name: name}
	}
	if loc, ok := locationCache.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &InvalidTimezoneError{Name: name}
	}
	locationCache.Store(name, loc)
	return loc, nil
}

// localInstant materializes a wall-clock minute-of-day on a calendar date in
// loc as an absolute instant. Two DST cases are resolved deliberately rather
// than left to time.Date: a time inside a spring-forward gap resolves to the
// first valid instant after the gap (the transition itself), and a time
// repeated by a fall-back shift resolves to its first occurrence.
func localInstant(year int, month time.Month, day, minuteOfDay int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, minuteOfDay/60, minuteOfDay%60, 0, 0, loc)
	if wallMinute(t) != minuteOfDay {
		return gapEnd(t, minuteOfDay)
	}
	if first := t.Add(-time.Hour); wallMinute(first) == minuteOfDay && first.Day() == t.Day() {
		return first
	}
	return t
}

func wallMinute(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// gapEnd resolves a wall-clock time that does not exist in its zone.
// time.Date lands the requested time on one side of the offset change;
// binary-search the change between the two sides and return the first
// instant carrying the new offset (02:30 inside a 02:00-03:00 gap
// resolves to 03:00).
func gapEnd(t time.Time, minuteOfDay int) time.Time {
	diff := minuteOfDay - wallMinute(t)
	// A transition close to midnight can wrap the minute-of-day comparison.
	if diff > 12*60 {
		diff -= 24 * 60
	} else if diff < -12*60 {
		diff += 24 * 60
	}

	lo, hi := t, t.Add(time.Duration(diff)*time.Minute)
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	_, loOffset := lo.Zone()
	for hi.Sub(lo) > time.Minute {
		half := hi.Sub(lo) / 2
		half -= half % time.Minute
		mid := lo.Add(half)
		if _, offset := mid.Zone(); offset == loOffset {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}
