package ops

import (
	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/timeutil"
	"github.com/hpungsan/worklog/internal/worklog"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID string

	// Editable fields (nil = don't change)
	Tag         *string
	Description *string
	Start       *string // "HH:MM", keeps the date
	End         *string // "HH:MM", keeps the date
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	Record RecordView `json:"record"`
}

// Update edits a record in place. All values are validated before any is
// applied, so a rejected edit leaves the record untouched.
func Update(s *Session, input UpdateInput) (*UpdateOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}
	if input.Tag == nil && input.Description == nil && input.Start == nil && input.End == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(id)
	if !ok {
		return nil, errors.NewNotFound(id)
	}
	if input.End != nil && rec.InProgress() {
		return nil, errors.NewInProgress("edit end")
	}

	for _, v := range []*string{input.Start, input.End} {
		if v == nil {
			continue
		}
		if _, _, err := timeutil.ParseClock(*v); err != nil {
			return nil, errors.NewInvalidTimestamp(*v)
		}
	}

	if input.Tag != nil || input.Description != nil {
		if err := s.store.Update(id, worklog.Patch{Tag: input.Tag, Description: input.Description}); err != nil {
			return nil, err
		}
	}
	if input.Start != nil {
		if err := s.store.UpdateClock(id, worklog.FieldStart, *input.Start); err != nil {
			return nil, err
		}
	}
	if input.End != nil {
		if err := s.store.UpdateClock(id, worklog.FieldEnd, *input.End); err != nil {
			return nil, err
		}
	}

	rec, _ = s.store.Get(id)
	return &UpdateOutput{Record: s.view(rec)}, nil
}
