// Package stats aggregates worklog records into per-tag totals over calendar ranges.
package stats

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/timeutil"
	"github.com/hpungsan/worklog/internal/worklog"
)

// EmptyTagLabel is shown for records without a tag.
const EmptyTagLabel = "*empty*"

// PomodoroMinutes is the length of one pomodoro.
const PomodoroMinutes = 30

// Range is a calendar window anchored on a selected date.
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// Ranges lists every range in display order.
var Ranges = []Range{RangeDay, RangeWeek, RangeMonth, RangeYear, RangeAll}

// ParseRange validates a range name.
func ParseRange(s string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Ranges {
		if r == known {
			return r, nil
		}
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("range must be one of: day, week, month, year, all (got %q)", s))
}

// StartOfRange returns the first instant of the range containing anchor.
func StartOfRange(anchor time.Time, r Range) time.Time {
	switch r {
	case RangeDay:
		return timeutil.StartOfDay(anchor)
	case RangeWeek:
		return timeutil.StartOfWeek(anchor)
	case RangeMonth:
		return timeutil.StartOfMonth(anchor)
	case RangeYear:
		return timeutil.StartOfYear(anchor)
	default:
		return time.Unix(0, 0).In(anchor.Location())
	}
}

// InRange reports whether rec belongs to the range around anchor. Membership is
// decided by the record's start alone, truncated to its calendar day in
// anchor's location.
func InRange(rec worklog.Record, r Range, anchor time.Time) bool {
	if r == RangeAll {
		return true
	}
	day := timeutil.StartOfDay(rec.Start.In(anchor.Location()))
	return StartOfRange(day, r).Equal(StartOfRange(anchor, r))
}

// Filter returns the records inside the range, preserving order.
func Filter(records []worklog.Record, r Range, anchor time.Time) []worklog.Record {
	var out []worklog.Record
	for _, rec := range records {
		if InRange(rec, r, anchor) {
			out = append(out, rec)
		}
	}
	return out
}

// Entry is the total for one tag.
type Entry struct {
	Tag       string  `json:"tag"`
	Duration  int     `json:"duration"`
	Pomodoros float64 `json:"pomodoros"`
}

// Result is an aggregation: one entry per distinct tag plus the grand total.
type Result struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// AggregateByTag sums durations per tag. Entries keep the order in which each
// tag first appears; running records are measured up to now.
func AggregateByTag(records []worklog.Record, now time.Time, fn timeutil.DurationFunc) Result {
	index := make(map[string]int)
	var res Result

	for _, rec := range records {
		label := rec.Tag
		if label == "" {
			label = EmptyTagLabel
		}
		i, ok := index[label]
		if !ok {
			i = len(res.Entries)
			index[label] = i
			res.Entries = append(res.Entries, Entry{Tag: label})
		}
		minutes := rec.Minutes(now, fn)
		res.Entries[i].Duration += minutes
		res.Total += minutes
	}

	for i := range res.Entries {
		res.Entries[i].Pomodoros = float64(res.Entries[i].Duration) / PomodoroMinutes
	}
	return res
}

// SplitPomodoros separates a pomodoro count into whole icons and the fractional rest.
func SplitPomodoros(p float64) (int, float64) {
	whole := math.Floor(p)
	return int(whole), p - whole
}

// ActiveHours marks every "day-hour" slot of anchor's month touched by a
// non-idle record. Keys are "D-H" with D the day of month and H the hour.
func ActiveHours(records []worklog.Record, anchor, now time.Time) map[string]bool {
	out := make(map[string]bool)
	loc := anchor.Location()
	monthStart := timeutil.StartOfMonth(anchor)
	monthEnd := monthStart.AddDate(0, 1, 0)

	for _, rec := range records {
		if rec.Tag == worklog.IdleTag {
			continue
		}
		start := rec.Start.In(loc)
		end := rec.EndOr(now).In(loc)
		if !end.After(start) {
			end = start.Add(time.Minute)
		}
		for h := start.Truncate(time.Hour); h.Before(end); h = h.Add(time.Hour) {
			if h.Before(monthStart) || !h.Before(monthEnd) {
				continue
			}
			out[fmt.Sprintf("%d-%d", h.Day(), h.Hour())] = true
		}
	}
	return out
}

// RangeLabel renders the human caption for a range around anchor.
func RangeLabel(anchor time.Time, r Range) string {
	switch r {
	case RangeDay:
		return anchor.Format("01/02")
	case RangeWeek:
		return timeutil.WeekInterval(anchor)
	case RangeMonth:
		return anchor.Month().String()
	case RangeYear:
		return anchor.Format("2006")
	default:
		return ""
	}
}

// Query bundles the inputs of Compute.
type Query struct {
	Range    Range
	Anchor   time.Time
	Now      time.Time
	Duration timeutil.DurationFunc
	SortBy   SortKey
	Order    Order
}

// Compute filters records to the query range, aggregates them by tag and sorts the entries.
func Compute(records []worklog.Record, q Query) Result {
	fn := q.Duration
	if fn == nil {
		fn = timeutil.ClockMinutes
	}
	res := AggregateByTag(Filter(records, q.Range, q.Anchor), q.Now, fn)
	if q.SortBy != "" {
		res.Entries = Sort(res.Entries, q.SortBy, q.Order)
	}
	return res
}
