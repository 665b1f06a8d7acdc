package ops

import (
	"database/sql"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/worklog/internal/config"
	"github.com/hpungsan/worklog/internal/db"
	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/persist"
	"github.com/hpungsan/worklog/internal/timeutil"
	"github.com/hpungsan/worklog/internal/worklog"
)

// Session owns the record store, its storage mirror and the app state. Every
// operation holds the session lock, so one Session may be shared by the MCP
// server and the web handlers.
type Session struct {
	mu sync.Mutex

	db      *sql.DB
	cfg     *config.Config
	baseDir string

	mirror   *persist.Mirror
	store    *worklog.Store
	app      persist.AppState
	detach   func()
	now      func() time.Time
	newID    func() string
	duration timeutil.DurationFunc
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now for the session and its store.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the record ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// Open loads the persisted store and app state from database. baseDir is the
// worklog home directory; its backups subdirectory is the default export location.
func Open(database *sql.DB, cfg *config.Config, baseDir string, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Session{
		db:       database,
		cfg:      cfg,
		baseDir:  baseDir,
		mirror:   persist.NewMirror(database),
		now:      time.Now,
		newID:    worklog.NewID,
		duration: timeutil.DurationFor(timeutil.DurationMode(cfg.DurationMode)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) storeOptions() []worklog.Option {
	min, max := s.cfg.GapFillBounds()
	return []worklog.Option{
		worklog.WithClock(s.now),
		worklog.WithIDGenerator(s.newID),
		worklog.WithGapFill(min, max),
	}
}

func (s *Session) load() error {
	store, err := s.mirror.LoadStore(s.storeOptions()...)
	if err != nil {
		return err
	}
	app, err := s.mirror.LoadAppState(s.now())
	if err != nil {
		return err
	}
	if s.detach != nil {
		s.detach()
	}
	s.store = store
	s.app = app
	s.detach = s.mirror.Attach(store)
	return nil
}

// Reload re-reads storage, picking up writes made by another process.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Close stops mirroring store changes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}

// Now returns the session's current instant.
func (s *Session) Now() time.Time {
	return s.now()
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// BackupsDir returns the default backup directory.
func (s *Session) BackupsDir() string {
	return filepath.Join(s.baseDir, db.BackupsDir)
}

// Snapshot returns a copy of all records.
func (s *Session) Snapshot() []worklog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Subscribe registers fn for store changes; see worklog.Store.Subscribe.
func (s *Session) Subscribe(fn func(worklog.Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsubscribe := s.store.Subscribe(fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsubscribe()
	}
}

// saveApp persists the app state. Callers hold the lock.
func (s *Session) saveApp() error {
	return s.mirror.SaveAppState(s.app)
}

// RecordView is the output form of a record.
type RecordView struct {
	ID          string     `json:"id"`
	Tag         string     `json:"tag"`
	Description string     `json:"description"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end"`
	InProgress  bool       `json:"in_progress"`
	Minutes     int        `json:"minutes"`
}

func (s *Session) view(r worklog.Record) RecordView {
	return RecordView{
		ID:          r.ID,
		Tag:         r.Tag,
		Description: r.Description,
		Start:       r.Start,
		End:         r.End,
		InProgress:  r.InProgress(),
		Minutes:     r.Minutes(s.now(), s.duration),
	}
}

func (s *Session) viewPtr(r *worklog.Record) *RecordView {
	if r == nil {
		return nil
	}
	v := s.view(*r)
	return &v
}

func (s *Session) views(records []worklog.Record) []RecordView {
	out := make([]RecordView, len(records))
	for i, r := range records {
		out[i] = s.view(r)
	}
	return out
}

// requireID trims and checks a record ID argument.
func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}

// parseDateOr parses a "YYYY-MM-DD" argument, returning fallback when empty.
func parseDateOr(value string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, errors.NewInvalidTimestamp(value)
	}
	return t, nil
}
