package schedule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tavolo/models"
)

func weekOf(days ...models.DayWindow) []models.DayWindow {
	out := make([]models.DayWindow, 7)
	for i := range out {
		out[i] = models.DayWindow{DayOfWeek: i, IsOpen: false, OpenTime: "09:00", CloseTime: "17:00"}
	}
	for _, d := range days {
		out[d.DayOfWeek] = d
	}
	return out
}

func TestNewWeeklyPatternValid(t *testing.T) {
	pattern, err := NewWeeklyPattern(weekOf(
		models.DayWindow{DayOfWeek: 1, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00"},
		models.DayWindow{DayOfWeek: 5, IsOpen: true, OpenTime: "20:00", CloseTime: "02:00"},
	))
	require.NoError(t, err)
	require.Len(t, pattern.Days, 7)

	seen := map[int]int{}
	for _, d := range pattern.Days {
		seen[d.DayOfWeek]++
	}
	for dow := 0; dow <= 6; dow++ {
		assert.Equal(t, 1, seen[dow], "dayOfWeek %d should appear exactly once", dow)
	}
}

func TestNewWeeklyPatternRejectsBadInput(t *testing.T) {
	base := weekOf()

	tests := []struct {
		name string
		days []models.DayWindow
	}{
		{name: "six entries", days: base[:6]},
		{name: "eight entries", days: append(append([]models.DayWindow{}, base...), base[0])},
		{
			name: "duplicate dayOfWeek",
			days: func() []models.DayWindow {
				days := weekOf()
				days[3].DayOfWeek = 2
				return days
			}(),
		},
		{
			name: "out of range dayOfWeek",
			days: func() []models.DayWindow {
				days := weekOf()
				days[6].DayOfWeek = 7
				return days
			}(),
		},
		{
			name: "malformed openTime",
			days: weekOf(models.DayWindow{DayOfWeek: 2, IsOpen: true, OpenTime: "9am", CloseTime: "17:00"}),
		},
		{
			name: "missing closeTime",
			days: weekOf(models.DayWindow{DayOfWeek: 2, IsOpen: true, OpenTime: "09:00", CloseTime: ""}),
		},
		{
			name: "hour out of range",
			days: weekOf(models.DayWindow{DayOfWeek: 2, IsOpen: true, OpenTime: "24:00", CloseTime: "17:00"}),
		},
		{
			name: "zero-length window",
			days: weekOf(models.DayWindow{DayOfWeek: 2, IsOpen: true, OpenTime: "09:00", CloseTime: "09:00"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWeeklyPattern(tt.days)
			var patternErr *InvalidPatternError
			require.Error(t, err)
			assert.True(t, errors.As(err, &patternErr), "expected InvalidPatternError, got %T", err)
		})
	}
}

func TestNewWeeklyPatternIgnoresClosedDayTimes(t *testing.T) {
	// Closed days may carry junk times (UI defaults); only open days validate.
	_, err := NewWeeklyPattern(weekOf(
		models.DayWindow{DayOfWeek: 4, IsOpen: false, OpenTime: "garbage", CloseTime: ""},
	))
	assert.NoError(t, err)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1:30", wantErr: true},
		{in: "12-30", wantErr: true},
		{in: "+1:30", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "12:+5", wantErr: true},
		{in: " 9:30", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
