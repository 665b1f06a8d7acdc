package ops

import (
	"github.com/hpungsan/worklog/internal/stats"
	"github.com/hpungsan/worklog/internal/timeutil"
)

// StatsInput contains parameters for the Stats operation. Empty fields fall
// back to the persisted app state. Range and sort changes are saved back.
type StatsInput struct {
	Range string
	Date  string // anchor, "YYYY-MM-DD"
	Sort  string // tag | duration
	Order string // asc | desc

	// Toggle applies a column-header click to the current sort state.
	Toggle string
}

// StatsOutput contains the result of the Stats operation.
type StatsOutput struct {
	Range     stats.Range   `json:"range"`
	Label     string        `json:"label"`
	Anchor    string        `json:"anchor"`
	SortBy    stats.SortKey `json:"sort_by"`
	SortOrder stats.Order   `json:"sort_order"`
	Entries   []stats.Entry `json:"entries"`
	Total     int           `json:"total"`
	TotalText string        `json:"total_text"`
}

// Stats aggregates durations per tag over a calendar range.
func Stats(s *Session, input StatsInput) (*StatsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.app
	if input.Range != "" {
		r, err := stats.ParseRange(input.Range)
		if err != nil {
			return nil, err
		}
		state.StatRange = r
	}
	anchor, err := parseDateOr(input.Date, state.SelectedDate)
	if err != nil {
		return nil, err
	}
	if input.Sort != "" {
		k, err := stats.ParseSortKey(input.Sort)
		if err != nil {
			return nil, err
		}
		state.SortBy = k
	}
	if input.Order != "" {
		o, err := stats.ParseOrder(input.Order)
		if err != nil {
			return nil, err
		}
		state.SortOrder = o
	}
	if input.Toggle != "" {
		k, err := stats.ParseSortKey(input.Toggle)
		if err != nil {
			return nil, err
		}
		state.SortBy, state.SortOrder = stats.Toggle(state.SortBy, state.SortOrder, k)
	}

	if state != s.app {
		s.app = state
		if err := s.saveApp(); err != nil {
			return nil, err
		}
	}

	res := stats.Compute(s.store.Snapshot(), stats.Query{
		Range:    state.StatRange,
		Anchor:   anchor,
		Now:      s.now(),
		Duration: s.duration,
		SortBy:   state.SortBy,
		Order:    state.SortOrder,
	})
	if res.Entries == nil {
		res.Entries = []stats.Entry{}
	}

	return &StatsOutput{
		Range:     state.StatRange,
		Label:     stats.RangeLabel(anchor, state.StatRange),
		Anchor:    timeutil.DateKey(anchor),
		SortBy:    state.SortBy,
		SortOrder: state.SortOrder,
		Entries:   res.Entries,
		Total:     res.Total,
		TotalText: timeutil.FormatMinutes(res.Total),
	}, nil
}
