package persist

import (
	"encoding/json"
	"time"

	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/worklog"
)

// BackupSchemaVersion is written into every backup document.
const BackupSchemaVersion = "1.0"

// Backup is the portable export document.
type Backup struct {
	Marker        bool   `json:"_worklog_backup"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
	Items         []Item `json:"items"`
}

// NewBackup builds a backup document for records.
func NewBackup(records []worklog.Record, now time.Time) Backup {
	return Backup{
		Marker:        true,
		SchemaVersion: BackupSchemaVersion,
		ExportedAt:    now.Unix(),
		Items:         ToItems(records),
	}
}

// EncodeBackup renders an indented backup document.
func EncodeBackup(records []worklog.Record, now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(NewBackup(records, now), "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// BackupFileName returns the default backup file name for now's date.
func BackupFileName(now time.Time) string {
	return "worklog-backup-" + now.Format("2006-01-02") + ".json"
}
