package persist

import (
	"strings"
	"time"

	"github.com/hpungsan/worklog/internal/stats"
	"github.com/hpungsan/worklog/internal/timeutil"
)

// AppState is the user's view state, stored next to the records.
type AppState struct {
	SelectedDate  time.Time     `json:"selectedDate"`
	StatRange     stats.Range   `json:"statRange"`
	SortBy        stats.SortKey `json:"sortBy"`
	SortOrder     stats.Order   `json:"sortOrder"`
	SkipEmptyDays bool          `json:"skipEmptyDays"`
	JiraHost      string        `json:"jiraHost"`
}

// DefaultAppState selects today with daily stats sorted by tag.
func DefaultAppState(now time.Time) AppState {
	return AppState{
		SelectedDate: timeutil.StartOfDay(now),
		StatRange:    stats.RangeDay,
		SortBy:       stats.SortByTag,
		SortOrder:    stats.Asc,
	}
}

// Normalize replaces unknown or missing values with defaults and trims the Jira host.
func (a AppState) Normalize(now time.Time) AppState {
	def := DefaultAppState(now)
	if a.SelectedDate.IsZero() {
		a.SelectedDate = def.SelectedDate
	} else {
		a.SelectedDate = timeutil.StartOfDay(a.SelectedDate.Local())
	}
	if _, err := stats.ParseRange(string(a.StatRange)); err != nil {
		a.StatRange = def.StatRange
	}
	if _, err := stats.ParseSortKey(string(a.SortBy)); err != nil {
		a.SortBy = def.SortBy
	}
	if _, err := stats.ParseOrder(string(a.SortOrder)); err != nil {
		a.SortOrder = def.SortOrder
	}
	a.JiraHost = NormalizeJiraHost(a.JiraHost)
	return a
}

// NormalizeJiraHost trims whitespace and trailing slashes.
func NormalizeJiraHost(host string) string {
	return strings.TrimRight(strings.TrimSpace(host), "/")
}
