package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/worklog/internal/config"
	"github.com/hpungsan/worklog/internal/errors"
)

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	dbPath := filepath.Join(tmpDir, "worklog.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	backupsDir := filepath.Join(tmpDir, BackupsDir)
	info, err := os.Stat(backupsDir)
	if os.IsNotExist(err) {
		t.Errorf("backups directory not created at %s", backupsDir)
	} else if !info.IsDir() {
		t.Errorf("backups path is not a directory")
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&tableName)
	if err != nil {
		t.Fatalf("kv table not found: %v", err)
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "path", ".worklog")

	db, err := Init(baseDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		t.Errorf("base directory not created at %s", baseDir)
	}
}

func TestUserVersion(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version after Init = %d, want %d", version, CurrentSchemaVersion)
	}

	if err := SetUserVersion(db, 99); err != nil {
		t.Fatalf("SetUserVersion() error = %v", err)
	}
	version, err = GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != 99 {
		t.Errorf("user_version = %d, want 99", version)
	}
}

func TestInit_MigrationIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	db1, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	if err := Put(db1, "worklog-store", `{"items":[]}`); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	db1.Close()

	db2, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer db2.Close()

	version, err := GetUserVersion(db2)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version after second Init = %d, want %d", version, CurrentSchemaVersion)
	}
	if _, ok, _ := Get(db2, "worklog-store"); !ok {
		t.Error("value lost across reopen")
	}
}

func TestConfigurePool(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	ConfigurePool(db, nil)
	ConfigurePool(db, &config.Config{DBMaxOpenConns: 3, DBMaxIdleConns: 1})
	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Errorf("MaxOpenConnections = %d, want 3", got)
	}
}

func TestKV_PutGetDelete(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, ok, err := Get(db, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if _, err := GetEntry(db, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("GetEntry(missing) error = %v, want NOT_FOUND", err)
	}

	if err := Put(db, "b", "one"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := Put(db, "b", "two"); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	if err := Put(db, "a", "x"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	v, ok, err := Get(db, "b")
	if err != nil || !ok || v != "two" {
		t.Errorf("Get(b) = %q, %v, %v; want two", v, ok, err)
	}
	e, err := GetEntry(db, "b")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if e.Value != "two" || e.UpdatedAt == 0 {
		t.Errorf("GetEntry() = %+v", e)
	}

	keys, err := Keys(db)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}

	if err := Delete(db, "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := Delete(db, "b"); err != nil {
		t.Fatalf("Delete() twice error = %v", err)
	}
	if _, ok, _ := Get(db, "b"); ok {
		t.Error("Get() after Delete found value")
	}
}
