package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Duration modes accepted by DurationMode.
const (
	DurationModeClock   = "clock"
	DurationModeElapsed = "elapsed"
)

// Config holds application configuration.
type Config struct {
	// GapFillMinMinutes is the shortest gap between the last finished record and a new
	// start that gets an automatic idle record. Shorter gaps are treated as noise.
	GapFillMinMinutes int `json:"gap_fill_min_minutes"`

	// GapFillMaxMinutes is the longest gap that gets an automatic idle record.
	// Longer gaps are left for manual entry.
	GapFillMaxMinutes int `json:"gap_fill_max_minutes"`

	// DurationMode selects how record durations are computed:
	// "clock" uses time-of-day arithmetic (wraps once past midnight),
	// "elapsed" uses true elapsed minutes.
	DurationMode string `json:"duration_mode"`

	// TickSeconds is how often `worklog watch` polls the clock (1-60).
	TickSeconds int `json:"tick_seconds"`

	// AllowedPaths is an allowlist of directories for backup import/export.
	// Paths outside ~/.worklog/backups require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GapFillMinMinutes: 20,
		GapFillMaxMinutes: 120,
		DurationMode:      DurationModeClock,
		TickSeconds:       60,
	}
}

// GapFillBounds returns the gap-fill window as durations.
func (c *Config) GapFillBounds() (time.Duration, time.Duration) {
	return time.Duration(c.GapFillMinMinutes) * time.Minute, time.Duration(c.GapFillMaxMinutes) * time.Minute
}

// TickInterval returns the watch polling interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// Validate checks value ranges after merging.
func (c *Config) Validate() error {
	if c.GapFillMinMinutes < 0 || c.GapFillMaxMinutes < c.GapFillMinMinutes {
		return fmt.Errorf("gap fill window invalid: min=%d max=%d", c.GapFillMinMinutes, c.GapFillMaxMinutes)
	}
	if c.DurationMode != DurationModeClock && c.DurationMode != DurationModeElapsed {
		return fmt.Errorf("duration_mode must be one of: clock, elapsed (got %q)", c.DurationMode)
	}
	if c.TickSeconds < 1 || c.TickSeconds > 60 {
		return fmt.Errorf("tick_seconds must be between 1 and 60 (got %d)", c.TickSeconds)
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.worklog.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.worklog) and repo (.worklog) directories.
// Repo config is found by walking upward from startDir to find the nearest .worklog/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .worklog/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".worklog", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	raw, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Merge(DefaultConfig(), raw)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.GapFillMinMinutes = pickInt(overlay.GapFillMinMinutes, base.GapFillMinMinutes)
	result.GapFillMaxMinutes = pickInt(overlay.GapFillMaxMinutes, base.GapFillMaxMinutes)
	result.TickSeconds = pickInt(overlay.TickSeconds, base.TickSeconds)
	result.DBMaxOpenConns = pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.DurationMode = strings.TrimSpace(overlay.DurationMode)
	if result.DurationMode == "" {
		result.DurationMode = base.DurationMode
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
