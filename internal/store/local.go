// Package store persists cipherprobe sessions in SQLite so that separate CLI
// invocations share maps, matrices and cached oracle replies.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cipherprobe/internal/logging"

	_ "modernc.org/sqlite"
)

// LocalStore keeps per-identity maps and matrices, the oracle reply cache and
// a small settings table in a single SQLite file.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore opens (or creates) the database at path. ":memory:" is
// accepted for tests.
func NewLocalStore(path string) (*LocalStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.StoreDebug("Opened store at %s", path)
	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	mapsTable := `
	CREATE TABLE IF NOT EXISTS maps (
		identity TEXT PRIMARY KEY,
		segment_length INTEGER NOT NULL,
		forward_json TEXT NOT NULL,
		run_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	matricesTable := `
	CREATE TABLE IF NOT EXISTS matrices (
		identity TEXT PRIMARY KEY,
		repeat_count INTEGER NOT NULL,
		data_json TEXT NOT NULL,
		run_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	cacheTable := `
	CREATE TABLE IF NOT EXISTS oracle_cache (
		identity TEXT NOT NULL,
		plaintext TEXT NOT NULL,
		ciphertext TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (identity, plaintext)
	);
	`

	settingsTable := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	for _, table := range []string{mapsTable, matricesTable, cacheTable, settingsTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Path returns the database path the store was opened with.
func (s *LocalStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// GetStats returns row counts per table.
func (s *LocalStore) GetStats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{"maps", "matrices", "oracle_cache"} {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

func now() int64 {
	return time.Now().Unix()
}
