package ops

import (
	"time"

	"github.com/hpungsan/worklog/internal/timeutil"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Date string // "YYYY-MM-DD", default: selected date
	All  bool   // every record regardless of date
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Date       string       `json:"date,omitempty"`
	Items      []RecordView `json:"items"`
	Total      int          `json:"total_minutes"`
	InProgress bool         `json:"in_progress"`
}

// List returns the records of one day in store order, newest first.
func List(s *Session, input ListInput) (*ListOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &ListOutput{InProgress: s.store.IsInProgress()}
	if input.All {
		out.Items = s.views(s.store.Snapshot())
	} else {
		day, err := parseDateOr(input.Date, s.app.SelectedDate)
		if err != nil {
			return nil, err
		}
		out.Date = timeutil.DateKey(day)
		out.Items = s.views(s.store.ItemsAtDate(day))
	}
	for _, it := range out.Items {
		out.Total += it.Minutes
	}
	return out, nil
}

// StatusOutput contains the result of the Status operation.
type StatusOutput struct {
	InProgress   bool       `json:"in_progress"`
	Head         RecordView `json:"head"`
	Elapsed      string     `json:"elapsed"`
	SelectedDate string     `json:"selected_date"`
	Records      int        `json:"records"`
	SavedAt      *time.Time `json:"saved_at,omitempty"` // last write to storage
}

// Status reports the head record and whether it is running.
func Status(s *Session) (*StatusOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head := s.view(s.store.Head())
	out := &StatusOutput{
		InProgress:   head.InProgress,
		Head:         head,
		Elapsed:      timeutil.FormatMinutes(head.Minutes),
		SelectedDate: timeutil.DateKey(s.app.SelectedDate),
		Records:      s.store.Len(),
	}
	saved, ok, err := s.mirror.SavedAt()
	if err != nil {
		return nil, err
	}
	if ok {
		out.SavedAt = &saved
	}
	return out, nil
}
