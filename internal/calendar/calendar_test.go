package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTodayTruncatesToMidnightUTC(t *testing.T) {
	cal := New(fixedClock(time.Date(2025, 3, 14, 17, 45, 12, 99, time.UTC)), nil)

	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), cal.Today())
	assert.Equal(t, "2025-03-14", cal.TodayKey())
}

func TestTodayUsesConfiguredZone(t *testing.T) {
	// 23:30 UTC is already the next day in Berlin.
	cal, err := Load("Europe/Berlin", fixedClock(time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-15", cal.TodayKey())
	assert.Equal(t, 0, cal.Today().Hour())
}

func TestLoadRejectsUnknownZone(t *testing.T) {
	_, err := Load("Mars/Olympus", nil)
	assert.Error(t, err)
}

func TestWindowCoversPeriodEndingToday(t *testing.T) {
	cal := New(fixedClock(time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)), time.UTC)

	from, to := cal.Window(7)
	assert.Equal(t, "2025-01-01", from)
	assert.Equal(t, "2025-01-07", to)

	from, to = cal.Window(1)
	assert.Equal(t, "2025-01-07", from)
	assert.Equal(t, "2025-01-07", to)
}

func TestDayStart(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	cal := New(nil, loc)

	got, err := cal.DayStart("2025-07-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, loc), got)

	_, err = cal.DayStart("07/04/2025")
	assert.Error(t, err)
}
