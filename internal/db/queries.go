package db

import (
	"database/sql"
	"time"

	"github.com/hpungsan/worklog/internal/errors"
)

// Entry is one stored key-value pair.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt int64
}

// Get returns the value stored under key. The second result is false when the
// key is absent.
func Get(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return value, true, nil
}

// GetEntry returns the full row stored under key, or NOT_FOUND.
func GetEntry(db *sql.DB, key string) (*Entry, error) {
	var e Entry
	err := db.QueryRow(`SELECT key, value, updated_at FROM kv WHERE key = ?`, key).
		Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(key)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &e, nil
}

// Put stores value under key, replacing any previous value.
func Put(db *sql.DB, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.Exec(query, key, value, time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func Delete(db *sql.DB, key string) error {
	if _, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Keys lists all stored keys in ascending order.
func Keys(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errors.NewInternal(err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return keys, nil
}
