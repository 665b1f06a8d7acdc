package ops

import (
	"fmt"
	"strings"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/worklog"
)

// Suggestion limits
const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)

// TagsOutput contains the result of the Tags operation.
type TagsOutput struct {
	Tags []string `json:"tags"`
}

// Tags lists every distinct non-empty tag in collation order.
func Tags(s *Session) (*TagsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := s.store.Tags()
	if tags == nil {
		tags = []string{}
	}
	return &TagsOutput{Tags: tags}, nil
}

// RenameTagInput contains parameters for the RenameTag operation.
type RenameTagInput struct {
	From string
	To   string
}

// RenameTagOutput contains the result of the RenameTag operation.
type RenameTagOutput struct {
	Renamed int `json:"renamed"`
}

// RenameTag retags every record carrying From.
func RenameTag(s *Session, input RenameTagInput) (*RenameTagOutput, error) {
	if strings.TrimSpace(input.From) == "" {
		return nil, errors.NewInvalidRequest("from is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return &RenameTagOutput{Renamed: s.store.RenameTag(input.From, strings.TrimSpace(input.To))}, nil
}

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	Field string // tag | description, default: tag
	Query string
	Limit int // default 10, max 50
}

// SuggestOutput contains the result of the Suggest operation.
type SuggestOutput struct {
	Field       string   `json:"field"`
	Suggestions []string `json:"suggestions"`
}

// Suggest returns autocomplete values previously used for a field.
func Suggest(s *Session, input SuggestInput) (*SuggestOutput, error) {
	field := worklog.SuggestField(strings.ToLower(strings.TrimSpace(input.Field)))
	if field == "" {
		field = worklog.SuggestTag
	}
	if field != worklog.SuggestTag && field != worklog.SuggestDescription {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("field must be one of: tag, description (got %q)", input.Field))
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.store.Suggest(field, input.Query, limit)
	if out == nil {
		out = []string{}
	}
	return &SuggestOutput{Field: string(field), Suggestions: out}, nil
}
