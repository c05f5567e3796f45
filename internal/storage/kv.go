// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrClosed is returned when the store is used after Close.
	ErrClosed = errors.New("storage: store is closed")
)

// =============================================================================
// KV STORE
// =============================================================================

// Store is a string-keyed blob store backed by SQLite.
//
// Values are opaque byte slices (JSON in practice). All reads and writes
// are whole-value: there are no partial updates.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value BLOB NOT NULL
);`

// Open opens (creating if needed) the store at the given path.
// Parent directories are created automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps the single-writer chat loop from blocking readers
	// (the sessions CLI can list while the TUI is running).
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// DefaultPath returns the default database location, ~/.disha/disha.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".disha", "disha.db"), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// BLOB OPERATIONS
// =============================================================================

// Get reads the value stored under key. The second return value reports
// whether the key was present.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, ErrClosed
	}

	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put writes the value under key, replacing any previous value.
func (s *Store) Put(key string, value []byte) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Delete removes the value under key. Missing keys are a no-op.
func (s *Store) Delete(key string) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}
