// Package localstore persists the portal client's state in a local SQLite
// file as a key/value table, one key per collection.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Persisted state keys
const (
	KeyUser          = "simia_user"
	KeyUsers         = "simia_users"
	KeyTasks         = "simia_tasks"
	KeyNotifications = "simia_notifications"
	KeyToken         = "token"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Store is a key/value store over a local SQLite file
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("localstore path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// GetRaw returns the raw bytes stored under key, and whether the key exists
func (s *Store) GetRaw(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// SetRaw stores raw bytes under key, replacing any previous value
func (s *Store) SetRaw(key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(value),
	)
	return err
}

// Delete removes a key; deleting a missing key is not an error
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// Get unmarshals the JSON stored under key into v. Returns false when the
// key does not exist, leaving v untouched.
func (s *Store) Get(key string, v interface{}) (bool, error) {
	raw, ok, err := s.GetRaw(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Set marshals v as JSON and stores it under key
func (s *Store) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetRaw(key, raw)
}
