package ops

import (
	"fmt"
	"strings"

	"github.com/hpungsan/worklog/internal/errors"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Date string // "YYYY-MM-DD", default: selected date
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	Added RecordView `json:"added"`
}

// Add inserts a 12:00-12:05 placeholder record on a day.
func Add(s *Session, input AddInput) (*AddOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, err := parseDateOr(input.Date, s.app.SelectedDate)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.AddRow(day)
	if err != nil {
		return nil, err
	}
	return &AddOutput{Added: s.view(rec)}, nil
}

// DuplicateInput contains parameters for the Duplicate operation.
type DuplicateInput struct {
	ID string
}

// DuplicateOutput contains the result of the Duplicate operation.
type DuplicateOutput struct {
	Duplicate RecordView `json:"duplicate"`
}

// Duplicate copies a finished record and places the copy right after it.
func Duplicate(s *Session, input DuplicateInput) (*DuplicateOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.DuplicateRow(id)
	if err != nil {
		return nil, err
	}
	return &DuplicateOutput{Duplicate: s.view(rec)}, nil
}

// Direction is the way a row moves in the list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// MoveInput contains parameters for the Move operation.
type MoveInput struct {
	ID        string
	Direction Direction
}

// MoveOutput contains the result of the Move operation.
type MoveOutput struct {
	ID       string `json:"id"`
	Position int    `json:"position"` // index after the move, 0 = most recent
}

// Move swaps a record with its neighbour. Moving past either end is a no-op.
func Move(s *Session, input MoveInput) (*MoveOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch Direction(strings.ToLower(string(input.Direction))) {
	case DirectionUp:
		err = s.store.MoveRowUp(id)
	case DirectionDown:
		err = s.store.MoveRowDown(id)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("direction must be one of: up, down (got %q)", input.Direction))
	}
	if err != nil {
		return nil, err
	}

	pos := -1
	for i, r := range s.store.Snapshot() {
		if r.ID == id {
			pos = i
			break
		}
	}
	return &MoveOutput{ID: id, Position: pos}, nil
}
