package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/persist"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path  string // optional, default: <backups>/worklog-backup-YYYY-MM-DD.json
	Label string // optional suffix for the default file name
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a backup document of every record.
func Export(ctx context.Context, s *Session, input ExportInput) (*ExportOutput, error) {
	s.mu.Lock()
	records := s.store.Snapshot()
	s.mu.Unlock()

	now := s.now()

	exportPath := input.Path
	if exportPath == "" {
		name := persist.BackupFileName(now)
		if label := strings.TrimSpace(input.Label); label != "" {
			name = strings.TrimSuffix(name, BackupExt) + "-" + SanitizeForFilename(label) + BackupExt
		}
		exportPath = filepath.Join(s.BackupsDir(), name)
	}

	// Default paths are validated too so a hostile label cannot escape the backups dir.
	if err := ValidatePath(exportPath, PathCheckWrite, s.cfg, s.BackupsDir()); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, errors.NewCancelled("export")
	default:
	}

	data, err := persist.EncodeBackup(records, now)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create backup directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create backup file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close backup file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("backup path is a symlink"))
	}

	// Windows refuses to rename over an existing file; fail rather than
	// delete-then-rename and risk losing the previous backup.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("backup destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize backup: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(records),
		ExportedAt: now.Unix(),
	}, nil
}
