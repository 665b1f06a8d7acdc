package ops

import (
	"context"
	"fmt"
	"io"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/persist"
)

// MaxImportBytes caps the size of a backup file accepted by Import.
const MaxImportBytes = 32 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path   string // required
	DryRun bool   // validate only, leave the store untouched
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported   int  `json:"imported"`
	Replaced   int  `json:"replaced"` // records discarded from the previous state
	InProgress bool `json:"in_progress"`
	DryRun     bool `json:"dry_run,omitempty"`
}

// Import replaces every record with the contents of a backup file. Both the
// current backup format and the older {"json": ..., "meta": ...} documents are
// accepted. A file that fails validation leaves the store untouched.
func Import(ctx context.Context, s *Session, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, s.cfg, s.BackupsDir()); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.WorklogError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open backup file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read backup file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("backup file exceeds %d bytes", MaxImportBytes))
	}

	records, err := persist.Decode(data)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, errors.NewCancelled("import")
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := &ImportOutput{
		Imported:   len(records),
		Replaced:   s.store.Len(),
		InProgress: records[0].InProgress(),
		DryRun:     input.DryRun,
	}
	if input.DryRun {
		return out, nil
	}
	if err := s.store.ReplaceAll(records); err != nil {
		return nil, err
	}
	return out, nil
}
