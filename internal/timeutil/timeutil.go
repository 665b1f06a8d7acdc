// Package timeutil holds the calendar and duration arithmetic shared by the
// record store and the statistics aggregator. All calendar functions work in
// the location of the time value they are given.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day key format used across the worklog.
const DateLayout = "2006-01-02"

// DurationMode selects the duration formula.
type DurationMode string

const (
	// ModeClock computes durations from time-of-day components only.
	ModeClock DurationMode = "clock"
	// ModeElapsed computes true elapsed minutes.
	ModeElapsed DurationMode = "elapsed"
)

// DurationFunc returns the duration between start and end in whole minutes.
type DurationFunc func(start, end time.Time) int

// DurationFor returns the duration function for a mode. Unknown modes fall back to clock.
func DurationFor(mode DurationMode) DurationFunc {
	if mode == ModeElapsed {
		return ElapsedMinutes
	}
	return ClockMinutes
}

// ClockMinutes returns (endHour*60+endMinute) - (startHour*60+startMinute),
// adding 24 hours to the end when its hour is numerically less than the start's.
// Calendar dates are ignored, so spans longer than a day are not measured.
func ClockMinutes(start, end time.Time) int {
	end = end.In(start.Location())
	startHours := start.Hour()
	endHours := end.Hour()
	if endHours < startHours {
		endHours += 24
	}
	return (endHours-startHours)*60 + (end.Minute() - start.Minute())
}

// ElapsedMinutes returns the elapsed wall-clock time between start and end in whole minutes.
func ElapsedMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// FormatClock renders a time as 24-hour "HH:MM".
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}

// ParseClock parses "HH:MM" (hours 0-23, minutes 0-59).
func ParseClock(s string) (int, int, error) {
	hStr, mStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("missing ':' in %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hours in %q", s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(mStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minutes in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("time of day out of range: %q", s)
	}
	return h, m, nil
}

// ApplyClock keeps t's calendar day and replaces hour and minute with the parsed
// "HH:MM" value. Seconds are zeroed. On error t is returned unchanged.
func ApplyClock(t time.Time, s string) (time.Time, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return t, err
	}
	return At(t, h, m), nil
}

// At returns hour:minute on day's calendar date.
func At(day time.Time, hour, minute int) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location())
}

// StartOfDay returns midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	return At(t, 0, 0)
}

// StartOfWeek returns midnight of the Monday of t's week. Sunday belongs to the
// week that started six days earlier.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	return StartOfDay(t).AddDate(0, 0, -offset+1)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns midnight of January 1 of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateKey formats t as "2006-01-02".
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses "2006-01-02" as local midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// FormatMinutes renders minutes as "1 h 30 min" or "30 min".
func FormatMinutes(minutes int) string {
	hours := minutes / 60
	rest := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("%d h %d min", hours, rest)
	}
	return fmt.Sprintf("%d min", rest)
}

// WeekInterval renders the Monday-Sunday span containing t as "01/02 - 01/08".
func WeekInterval(t time.Time) string {
	start := StartOfWeek(t)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s - %s", start.Format("01/02"), end.Format("01/02"))
}
