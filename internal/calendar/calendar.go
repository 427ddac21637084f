// Package calendar turns an injected clock into calendar-day keys in a fixed time zone.
package calendar

import (
	"fmt"
	"time"
)

// DayLayout is the storage format of a calendar day.
const DayLayout = "2006-01-02"

// Calendar buckets instants into days of Location using Now as the clock.
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

// New returns a calendar for loc; a nil now uses time.Now and a nil loc uses UTC.
func New(now func() time.Time, loc *time.Location) Calendar {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Now: now, Location: loc}
}

// Load builds a calendar from an IANA zone name such as "Europe/Berlin".
func Load(zone string, now func() time.Time) (Calendar, error) {
	if zone == "" {
		return New(now, time.UTC), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Calendar{}, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return New(now, loc), nil
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Calendar) clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Instant returns the current time in the calendar's zone.
func (c Calendar) Instant() time.Time {
	return c.clock().In(c.location())
}

// Today is the current day at 00:00:00 in the calendar's zone.
func (c Calendar) Today() time.Time {
	return StartOfDay(c.Instant())
}

// TodayKey is Today formatted with DayLayout.
func (c Calendar) TodayKey() string {
	return c.Today().Format(DayLayout)
}

// Window returns the first and last day keys of a period ending today.
// A period of 7 covers today and the six days before it.
func (c Calendar) Window(days int) (from, to string) {
	today := c.Today()
	if days < 1 {
		days = 1
	}
	start := today.AddDate(0, 0, -(days - 1))
	return start.Format(DayLayout), today.Format(DayLayout)
}

// DayStart parses a day key into midnight of that day in the calendar's zone.
func (c Calendar) DayStart(day string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DayLayout, day, c.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return parsed, nil
}

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
