package ops

// RemoveInput contains parameters for the Remove operation.
type RemoveInput struct {
	ID string
}

// RemoveOutput contains the result of the Remove operation.
type RemoveOutput struct {
	Removed bool   `json:"removed"`
	ID      string `json:"id"`
	NextID  string `json:"next_id,omitempty"` // record that followed the removed one
}

// Remove deletes a record. The last remaining record cannot be removed.
func Remove(s *Session, input RemoveInput) (*RemoveOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.store.RemoveRow(id)
	if err != nil {
		return nil, err
	}
	return &RemoveOutput{Removed: true, ID: id, NextID: next}, nil
}
