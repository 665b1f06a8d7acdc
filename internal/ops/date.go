package ops

import (
	"sort"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/persist"
	"github.com/hpungsan/worklog/internal/timeutil"
)

// DateOutput reports the selected date and the navigation available from it.
type DateOutput struct {
	SelectedDate string `json:"selected_date"`
	IsToday      bool   `json:"is_today"`
	CanPrev      bool   `json:"can_prev"`
	CanNext      bool   `json:"can_next"`
}

func (s *Session) dateOutput() *DateOutput {
	today := timeutil.StartOfDay(s.now())
	sel := s.app.SelectedDate
	out := &DateOutput{
		SelectedDate: timeutil.DateKey(sel),
		IsToday:      timeutil.SameDay(today, sel),
		CanPrev:      true,
		CanNext:      sel.Before(today),
	}
	if s.app.SkipEmptyDays {
		dates := s.store.Dates(today)
		i := sort.SearchStrings(dates, out.SelectedDate)
		next := i
		if i < len(dates) && dates[i] == out.SelectedDate {
			next = i + 1
		}
		out.CanPrev = i > 0
		out.CanNext = out.CanNext && next < len(dates)
	}
	return out
}

// MoveDateInput contains parameters for the MoveDate operation.
type MoveDateInput struct {
	Delta int // days, negative = back
}

// MoveDate steps the selected date. With skip-empty-days set it steps between
// days that have records instead of calendar days. It never moves past today.
func MoveDate(s *Session, input MoveDateInput) (*DateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Delta == 0 {
		return s.dateOutput(), nil
	}

	today := timeutil.StartOfDay(s.now())
	next := s.app.SelectedDate.AddDate(0, 0, input.Delta)
	if s.app.SkipEmptyDays {
		dates := s.store.Dates(today)
		key := timeutil.DateKey(s.app.SelectedDate)
		i := sort.SearchStrings(dates, key)
		if i < len(dates) && dates[i] != key && input.Delta > 0 {
			// Selected day has no records; SearchStrings already points past it.
			i--
		}
		j := i + input.Delta
		if j < 0 || j >= len(dates) {
			return s.dateOutput(), nil
		}
		t, err := timeutil.ParseDate(dates[j])
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		next = t
	}
	if next.After(today) {
		next = today
	}

	s.app.SelectedDate = timeutil.StartOfDay(next)
	if err := s.saveApp(); err != nil {
		return nil, err
	}
	return s.dateOutput(), nil
}

// SetDateInput contains parameters for the SetDate operation.
type SetDateInput struct {
	Date string // "YYYY-MM-DD"
}

// SetDate selects a date. Future dates are rejected.
func SetDate(s *Session, input SetDateInput) (*DateOutput, error) {
	day, err := timeutil.ParseDate(input.Date)
	if err != nil {
		return nil, errors.NewInvalidTimestamp(input.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if day.After(timeutil.StartOfDay(s.now())) {
		return nil, errors.NewInvalidRequest("date must not be in the future")
	}
	s.app.SelectedDate = day
	if err := s.saveApp(); err != nil {
		return nil, err
	}
	return s.dateOutput(), nil
}

// Today selects the current date.
func Today(s *Session) (*DateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.app.SelectedDate = timeutil.StartOfDay(s.now())
	if err := s.saveApp(); err != nil {
		return nil, err
	}
	return s.dateOutput(), nil
}

// SettingsOutput contains the user-editable settings.
type SettingsOutput struct {
	SkipEmptyDays bool   `json:"skip_empty_days"`
	JiraHost      string `json:"jira_host"`
	StatRange     string `json:"stat_range"`
	SortBy        string `json:"sort_by"`
	SortOrder     string `json:"sort_order"`
	SelectedDate  string `json:"selected_date"`
}

func (s *Session) settingsOutput() *SettingsOutput {
	return &SettingsOutput{
		SkipEmptyDays: s.app.SkipEmptyDays,
		JiraHost:      s.app.JiraHost,
		StatRange:     string(s.app.StatRange),
		SortBy:        string(s.app.SortBy),
		SortOrder:     string(s.app.SortOrder),
		SelectedDate:  timeutil.DateKey(s.app.SelectedDate),
	}
}

// Settings returns the current app settings.
func Settings(s *Session) (*SettingsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsOutput(), nil
}

// UpdateSettingsInput contains parameters for the UpdateSettings operation.
type UpdateSettingsInput struct {
	SkipEmptyDays *bool
	JiraHost      *string
}

// UpdateSettings changes user settings. The Jira host is stored without
// trailing slashes.
func UpdateSettings(s *Session, input UpdateSettingsInput) (*SettingsOutput, error) {
	if input.SkipEmptyDays == nil && input.JiraHost == nil {
		return nil, errors.NewInvalidRequest("at least one setting must be provided")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if input.SkipEmptyDays != nil {
		s.app.SkipEmptyDays = *input.SkipEmptyDays
	}
	if input.JiraHost != nil {
		s.app.JiraHost = persist.NormalizeJiraHost(*input.JiraHost)
	}
	if err := s.saveApp(); err != nil {
		return nil, err
	}
	return s.settingsOutput(), nil
}
