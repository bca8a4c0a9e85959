// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package waterstore is the durable local store for the WaterWise
// client: key-value persistence of the last-known session (producer,
// property, sensor snapshot), the offline-account list, and the queue
// of registrations pending remote sync. Values are JSON-serialized
// records in a single SQLite file so a process restart can restore the
// session without a network round trip.
package waterstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed keys of the local state table.
const (
	KeyCurrentProducer  = "currentProducer"
	KeyCurrentProperty  = "currentProperty"
	KeySensorSnapshot   = "sensorSnapshot"
	KeyOfflineAccounts  = "offlineAccounts"
	KeyPendingSyncQueue = "pendingSyncQueue"
)

// Store is a string-keyed JSON value store backed by SQLite.
//
// There is no transactional guarantee across keys: a crash between the
// producer write and the property write leaves an inconsistent pair.
type Store struct {
	db     *sql.DB
	ownsDB bool
}

// Open opens (or creates) the store at the given SQLite path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	// One writer connection. Keeps :memory: databases coherent and
	// avoids SQLITE_BUSY between pooled connections on file stores.
	db.SetMaxOpenConns(1)
	s, err := OpenDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// OpenDB wraps an existing SQLite handle. The caller keeps ownership of
// the handle unless the store was created with Open.
func OpenDB(db *sql.DB) (*Store, error) {
	if err := initializeDatabase(db); err != nil {
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}
	return &Store{db: db}, nil
}

func initializeDatabase(db *sql.DB) error {
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS local_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`)
	if err != nil {
		return fmt.Errorf("failed to create local_state table: %w", err)
	}
	return nil
}

// Close closes the underlying handle when the store owns it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// Get returns the raw value for key. The second result is false when
// the key is absent.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set writes the raw value for key, replacing any previous value.
func (s *Store) Set(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO local_state (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM local_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// ClearSession removes the session-related keys only. The offline
// account list and the pending sync queue are durable history
// independent of the active session and must survive.
func (s *Store) ClearSession() error {
	for _, key := range []string{KeyCurrentProducer, KeyCurrentProperty, KeySensorSnapshot} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// getJSON loads and decodes the value for key into out.
func getJSON(s *Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("corrupt value for key %q: %w", key, err)
	}
	return true, nil
}

// setJSON encodes v and stores it under key.
func setJSON(s *Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %q: %w", key, err)
	}
	return s.Set(key, raw)
}
