package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tavolo/models"
)

// 2025-06-01 is a Sunday; 2025-06-02 a Monday; 2025-06-06 a Friday.
var farPast = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func testSchedule(t *testing.T, tz string, days ...models.DayWindow) *models.Schedule {
	t.Helper()
	pattern, err := NewWeeklyPattern(weekOf(days...))
	require.NoError(t, err)
	return &models.Schedule{
		ID:            "sched-1",
		BoundType:     models.BoundTypeVenue,
		BoundEntityID: "v1",
		RestaurantID:  "r1",
		Timezone:      tz,
		WeeklyPattern: pattern,
		EffectiveFrom: farPast,
		IsActive:      true,
		Version:       1,
	}
}

func TestIsOpenAtSameDayWindow(t *testing.T) {
	s := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00"},
	)

	monday := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "just before open", at: monday.Add(8*time.Hour + 59*time.Minute), want: false},
		{name: "at open", at: monday.Add(9 * time.Hour), want: true},
		{name: "mid window", at: monday.Add(15 * time.Hour), want: true},
		{name: "at close, half-open upper bound", at: monday.Add(22 * time.Hour), want: false},
		{name: "closed weekday", at: monday.Add(24*time.Hour + 12*time.Hour), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpenAt(s, tt.at))
		})
	}
}

func TestIsOpenAtMidnightCrossingWindow(t *testing.T) {
	s := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 5, IsOpen: true, OpenTime: "20:00", CloseTime: "02:00"},
	)

	friday := time.Date(2025, time.June, 6, 0, 0, 0, 0, time.UTC)
	saturday := friday.Add(24 * time.Hour)
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "before open", at: friday.Add(19*time.Hour + 59*time.Minute), want: false},
		{name: "friday evening", at: friday.Add(23 * time.Hour), want: true},
		{name: "past midnight continuation", at: saturday.Add(1 * time.Hour), want: true},
		{name: "at close", at: saturday.Add(2 * time.Hour), want: false},
		{name: "after close", at: saturday.Add(3 * time.Hour), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpenAt(s, tt.at))
		})
	}
}

func TestIsOpenAtRespectsEffectiveRange(t *testing.T) {
	s := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00"},
	)
	openMonday := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)

	s.EffectiveFrom = openMonday.Add(time.Hour)
	assert.False(t, IsOpenAt(s, openMonday), "before effectiveFrom")

	s.EffectiveFrom = farPast
	cutoff := openMonday
	s.EffectiveTo = &cutoff
	assert.False(t, IsOpenAt(s, openMonday), "at effectiveTo the range is already over")

	s.EffectiveTo = nil
	s.IsActive = false
	assert.False(t, IsOpenAt(s, openMonday), "inactive schedules never report open")
}

func TestIsOpenAtLocalZone(t *testing.T) {
	// Addis Ababa is UTC+3 year-round: local 09:00 is 06:00 UTC.
	s := testSchedule(t, "Africa/Addis_Ababa",
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
	)

	assert.False(t, IsOpenAt(s, time.Date(2025, time.June, 2, 5, 59, 0, 0, time.UTC)))
	assert.True(t, IsOpenAt(s, time.Date(2025, time.June, 2, 6, 0, 0, 0, time.UTC)))
	assert.False(t, IsOpenAt(s, time.Date(2025, time.June, 2, 14, 0, 0, 0, time.UTC)))
}

func TestNextTransition(t *testing.T) {
	s := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00"},
	)

	sundayEvening := time.Date(2025, time.June, 1, 23, 0, 0, 0, time.UTC)
	next := NextTransition(s, sundayEvening)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC), next.UTC())

	mondayMorning := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	next = NextTransition(s, mondayMorning)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, time.June, 2, 22, 0, 0, 0, time.UTC), next.UTC())
}

func TestNextTransitionMidnightCrossing(t *testing.T) {
	s := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 5, IsOpen: true, OpenTime: "20:00", CloseTime: "02:00"},
	)

	// Inside the tail of Friday's window: the close boundary lands on Saturday.
	saturdayNight := time.Date(2025, time.June, 7, 1, 0, 0, 0, time.UTC)
	next := NextTransition(s, saturdayNight)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, time.June, 7, 2, 0, 0, 0, time.UTC), next.UTC())
}

func TestNextTransitionEffectiveToCutoff(t *testing.T) {
	s := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00"},
	)
	cutoff := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	s.EffectiveTo = &cutoff

	// Open at 10:00 but the effective range ends at noon: the flip happens there.
	next := NextTransition(s, time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC))
	require.NotNil(t, next)
	assert.Equal(t, cutoff, next.UTC())
}

func TestNextTransitionSpringForwardGap(t *testing.T) {
	// 2025-03-09 is the US spring-forward Sunday: 02:00-02:59 EST does not
	// exist. A window opening at 02:30 must open at 03:00 EDT (07:00 UTC),
	// not an hour early.
	s := testSchedule(t, "America/New_York",
		models.DayWindow{DayOfWeek: 0, IsOpen: true, OpenTime: "02:30", CloseTime: "04:00"},
	)

	beforeGap := time.Date(2025, time.March, 9, 6, 0, 0, 0, time.UTC) // 01:00 EST
	next := NextTransition(s, beforeGap)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, time.March, 9, 7, 0, 0, 0, time.UTC), next.UTC())

	assert.False(t, IsOpenAt(s, time.Date(2025, time.March, 9, 6, 30, 0, 0, time.UTC)), "01:30 EST is before the window")
	assert.True(t, IsOpenAt(s, *next))
}

func TestIsOpenAtFallBackRepeatedHour(t *testing.T) {
	// 2025-11-02 is the US fall-back Sunday: 01:00-01:59 occurs twice. A
	// Saturday window running past midnight stays open through both
	// occurrences and closes at 02:00 EST.
	s := testSchedule(t, "America/New_York",
		models.DayWindow{DayOfWeek: 6, IsOpen: true, OpenTime: "20:00", CloseTime: "02:00"},
	)

	firstOccurrence := time.Date(2025, time.November, 2, 5, 30, 0, 0, time.UTC)  // 01:30 EDT
	secondOccurrence := time.Date(2025, time.November, 2, 6, 30, 0, 0, time.UTC) // 01:30 EST
	assert.True(t, IsOpenAt(s, firstOccurrence))
	assert.True(t, IsOpenAt(s, secondOccurrence))
	assert.False(t, IsOpenAt(s, time.Date(2025, time.November, 2, 7, 30, 0, 0, time.UTC)), "02:30 EST is past close")

	next := NextTransition(s, secondOccurrence)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, time.November, 2, 7, 0, 0, 0, time.UTC), next.UTC(), "closes at 02:00 EST")
}

func TestNextTransitionNoneWithoutFlip(t *testing.T) {
	s := testSchedule(t, "UTC") // every day closed

	assert.Nil(t, NextTransition(s, time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)))

	// Closed schedule whose effective range ends before the only open window.
	s2 := testSchedule(t, "UTC",
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00"},
	)
	cutoff := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	s2.EffectiveTo = &cutoff
	assert.Nil(t, NextTransition(s2, time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)))
}
