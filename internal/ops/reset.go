package ops

import (
	"fmt"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/persist"
)

// ResetMode selects what Reset replaces the records with.
type ResetMode string

const (
	ResetDefault ResetMode = "default" // the example dataset
	ResetEmpty   ResetMode = "empty"   // a single placeholder record
)

// ResetInput contains parameters for the Reset operation.
type ResetInput struct {
	Mode ResetMode // default: default

	// Settings also drops the stored app state (selected date, stats view,
	// skip-empty-days, Jira host).
	Settings bool
}

// ResetOutput contains the result of the Reset operation.
type ResetOutput struct {
	Mode          ResetMode `json:"mode"`
	Records       int       `json:"records"`
	SettingsReset bool      `json:"settings_reset,omitempty"`
}

// Reset discards every record.
func Reset(s *Session, input ResetInput) (*ResetOutput, error) {
	mode := input.Mode
	if mode == "" {
		mode = ResetDefault
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if mode != ResetDefault && mode != ResetEmpty {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("mode must be one of: default, empty (got %q)", input.Mode))
	}

	if input.Settings {
		if err := s.mirror.Clear(); err != nil {
			return nil, err
		}
		s.app = persist.DefaultAppState(s.now())
		if err := s.saveApp(); err != nil {
			return nil, err
		}
	}
	if mode == ResetEmpty {
		s.store.ResetEmpty()
	} else {
		s.store.ResetToDefault()
	}
	return &ResetOutput{Mode: mode, Records: s.store.Len(), SettingsReset: input.Settings}, nil
}
