package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/worklog/internal/config"
	"github.com/hpungsan/worklog/internal/errors"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(`{"items":[]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestValidatePath_Rejections(t *testing.T) {
	backups := t.TempDir()
	cfg := config.DefaultConfig()

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"parent traversal", "../backup.json"},
		{"mid-path traversal", filepath.Join(backups, "..", "x", "backup.json")},
		{"no extension", filepath.Join(backups, "backup")},
		{"jsonl extension", filepath.Join(backups, "backup.jsonl")},
		{"outside backups", filepath.Join(t.TempDir(), "backup.json")},
		{"nested in backups", filepath.Join(backups, "sub", "backup.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, PathCheckWrite, cfg, backups)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("ValidatePath(%q) error = %v, want INVALID_REQUEST", tt.path, err)
			}
		})
	}
}

func TestValidatePath_BackupsDir(t *testing.T) {
	backups := t.TempDir()
	cfg := config.DefaultConfig()

	path := filepath.Join(backups, "worklog-backup-2026-10-17.json")
	if err := ValidatePath(path, PathCheckWrite, cfg, backups); err != nil {
		t.Fatalf("ValidatePath(write) error = %v", err)
	}

	if err := ValidatePath(path, PathCheckRead, cfg, backups); !errors.Is(err, errors.ErrFileNotFound) {
		t.Fatalf("ValidatePath(read missing) error = %v, want FILE_NOT_FOUND", err)
	}
	writeFile(t, path)
	if err := ValidatePath(path, PathCheckRead, cfg, backups); err != nil {
		t.Errorf("ValidatePath(read) error = %v", err)
	}
	if err := ValidatePath(filepath.Join(backups, "UPPER.JSON"), PathCheckWrite, cfg, backups); err != nil {
		t.Errorf("ValidatePath(upper-case extension) error = %v", err)
	}
}

func TestValidatePath_AllowedPaths(t *testing.T) {
	extra := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{extra, "relative/ignored"}

	path := filepath.Join(extra, "backup.json")
	writeFile(t, path)
	if err := ValidatePath(path, PathCheckRead, cfg, t.TempDir()); err != nil {
		t.Errorf("ValidatePath(allowed path) error = %v", err)
	}
}

func TestValidatePath_AllowUnsafePaths(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	if err := ValidatePath(filepath.Join(dir, "nested-ok.json"), PathCheckWrite, cfg, t.TempDir()); err != nil {
		t.Errorf("ValidatePath(unsafe write) error = %v", err)
	}
	if err := ValidatePath(filepath.Join(dir, "missing.json"), PathCheckRead, cfg, ""); !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("ValidatePath(unsafe read missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if err := ValidatePath(filepath.Join(dir, "backup.txt"), PathCheckWrite, cfg, ""); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("extension still required with allow_unsafe_paths, got %v", err)
	}
}

func TestValidatePath_Symlinks(t *testing.T) {
	backups := t.TempDir()
	target := filepath.Join(t.TempDir(), "secret.json")
	writeFile(t, target)

	link := filepath.Join(backups, "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	for _, unsafe := range []bool{false, true} {
		cfg := config.DefaultConfig()
		cfg.AllowUnsafePaths = unsafe
		for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
			if err := ValidatePath(link, mode, cfg, backups); !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("unsafe=%v mode=%d: error = %v, want INVALID_REQUEST", unsafe, mode, err)
			}
		}
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := map[string]bool{
		"/home/user/backup.json":   false,
		"../backup.json":           true,
		"/home/../etc/passwd":      true,
		"./backup.json":            false,
		"backup..2026.json":        false,
		"/tmp/a/b/../c.json":       true,
		"/home/user/.worklog/x.js": false,
	}
	for path, want := range tests {
		if got := containsTraversal(path); got != want {
			t.Errorf("containsTraversal(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"weekly", "weekly"},
		{"before reset", "before reset"},
		{"a/b\\c", "a-b-c"},
		{"../../../etc/passwd", "etc-passwd"},
		{"foo\x00bar\x01", "foobar"},
		{"../..", "unnamed"},
		{"---x---", "x"},
		{"zeit-übersicht", "zeit-übersicht"},
	}
	for _, tt := range tests {
		if got := SanitizeForFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
