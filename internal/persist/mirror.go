package persist

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/hpungsan/worklog/internal/db"
	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/worklog"
)

// Storage keys.
const (
	StoreKey = "worklog-store"
	AppKey   = "worklog-app"
)

// Mirror reads and writes the store and app state through the kv table.
type Mirror struct {
	db *sql.DB
}

// NewMirror wraps an initialised database.
func NewMirror(database *sql.DB) *Mirror {
	return &Mirror{db: database}
}

// load fetches key and hands it to decode. A missing key reports false. A value
// that fails to decode is logged and deleted so the caller falls back to defaults.
func (m *Mirror) load(key string, decode func([]byte) error) (bool, error) {
	raw, ok, err := db.Get(m.db, key)
	if err != nil || !ok {
		return false, err
	}
	if err := decode([]byte(raw)); err != nil {
		log.Printf("worklog: discarding unreadable %s: %v", key, err)
		if err := db.Delete(m.db, key); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// LoadStore hydrates a store from storage, or seeds the default dataset when
// nothing usable is stored.
func (m *Mirror) LoadStore(opts ...worklog.Option) (*worklog.Store, error) {
	var records []worklog.Record
	found, err := m.load(StoreKey, func(data []byte) error {
		var err error
		records, err = Decode(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return worklog.New(opts...), nil
	}
	return worklog.NewWithRecords(records, opts...)
}

// LoadAppState returns the stored app state, normalised, or the defaults.
func (m *Mirror) LoadAppState(now time.Time) (AppState, error) {
	var state AppState
	found, err := m.load(AppKey, func(data []byte) error {
		return json.Unmarshal(data, &state)
	})
	if err != nil {
		return AppState{}, err
	}
	if !found {
		return DefaultAppState(now), nil
	}
	return state.Normalize(now), nil
}

// SaveStore writes the store's current snapshot.
func (m *Mirror) SaveStore(s *worklog.Store) error {
	data, err := Encode(s.Snapshot())
	if err != nil {
		return err
	}
	return db.Put(m.db, StoreKey, string(data))
}

// SaveAppState writes the app state.
func (m *Mirror) SaveAppState(state AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.NewInternal(err)
	}
	return db.Put(m.db, AppKey, string(data))
}

// Attach writes the store to storage after every change and returns the
// unsubscribe function. Write failures are logged; the in-memory store stays
// authoritative.
func (m *Mirror) Attach(s *worklog.Store) func() {
	return s.Subscribe(func(c worklog.Change) {
		if err := m.SaveStore(s); err != nil {
			log.Printf("worklog: failed to persist %s change: %v", c.Kind, err)
		}
	})
}

// SavedAt reports when the record collection was last written.
func (m *Mirror) SavedAt() (time.Time, bool, error) {
	e, err := db.GetEntry(m.db, StoreKey)
	if errors.Is(err, errors.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(e.UpdatedAt, 0), true, nil
}

// Clear removes both stored blobs.
func (m *Mirror) Clear() error {
	if err := db.Delete(m.db, StoreKey); err != nil {
		return err
	}
	return db.Delete(m.db, AppKey)
}
