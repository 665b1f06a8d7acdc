package ops

import (
	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/worklog"
)

// StartInput contains parameters for the Start operation.
type StartInput struct {
	Tag         *string
	Description *string

	// FromID copies tag and description from an existing record.
	FromID string
}

// StartOutput contains the result of the Start operation.
type StartOutput struct {
	Started RecordView  `json:"started"`
	Idle    *RecordView `json:"idle,omitempty"`
}

// Start begins a new running record. A gap since the last record inside the
// configured window is first filled with an idle record.
func Start(s *Session, input StartInput) (*StartOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch := worklog.Patch{Tag: input.Tag, Description: input.Description}
	if input.FromID == "" {
		rec, idle, err := s.store.StartLog(patch)
		if err != nil {
			return nil, err
		}
		return &StartOutput{Started: s.view(rec), Idle: s.viewPtr(idle)}, nil
	}

	id, err := requireID(input.FromID)
	if err != nil {
		return nil, err
	}
	var (
		rec  worklog.Record
		idle *worklog.Record
	)
	if patch.IsEmpty() {
		rec, idle, err = s.store.StartSelected(id)
	} else {
		src, ok := s.store.Get(id)
		if !ok {
			return nil, errors.NewNotFound(id)
		}
		if patch.Tag == nil {
			patch.Tag = &src.Tag
		}
		if patch.Description == nil {
			patch.Description = &src.Description
		}
		rec, idle, err = s.store.StartLog(patch)
	}
	if err != nil {
		return nil, err
	}

	return &StartOutput{Started: s.view(rec), Idle: s.viewPtr(idle)}, nil
}

// FillInput contains parameters for the Fill operation.
type FillInput struct {
	Tag         *string
	Description *string
}

// FillOutput contains the result of the Fill operation.
type FillOutput struct {
	Filled RecordView `json:"filled"`
}

// Fill logs a finished record covering the time since the last record ended.
func Fill(s *Session, input FillInput) (*FillOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.FillLog(worklog.Patch{Tag: input.Tag, Description: input.Description})
	if err != nil {
		return nil, err
	}
	return &FillOutput{Filled: s.view(rec)}, nil
}

// FinishOutput contains the result of the Finish operation.
type FinishOutput struct {
	Finished RecordView `json:"finished"`
}

// Finish stops the running record.
func Finish(s *Session) (*FinishOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.FinishLog()
	if err != nil {
		return nil, err
	}
	return &FinishOutput{Finished: s.view(rec)}, nil
}

// TapOutput contains the result of the Tap operation.
type TapOutput struct {
	Finished RecordView `json:"finished"`
	Started  RecordView `json:"started"`
}

// Tap finishes the running record and immediately starts an untagged one.
func Tap(s *Session) (*TapOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	finished, started, err := s.store.TapLog()
	if err != nil {
		return nil, err
	}
	return &TapOutput{Finished: s.view(finished), Started: s.view(started)}, nil
}

// StartSelectedInput contains parameters for the StartSelected operation.
type StartSelectedInput struct {
	ID string
}

// StartSelected starts a new record carrying the tag and description of an
// existing one.
func StartSelected(s *Session, input StartSelectedInput) (*StartOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}
	return Start(s, StartInput{FromID: id})
}
