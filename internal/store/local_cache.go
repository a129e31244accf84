package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Lookup returns a cached oracle reply for (identity, plaintext).
func (s *LocalStore) Lookup(identity, plaintext string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ciphertext string
	err := s.db.QueryRow(
		"SELECT ciphertext FROM oracle_cache WHERE identity = ? AND plaintext = ?",
		identity, plaintext,
	).Scan(&ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup failed: %w", err)
	}
	return ciphertext, true, nil
}

// Remember caches an oracle reply.
func (s *LocalStore) Remember(identity, plaintext, ciphertext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO oracle_cache (identity, plaintext, ciphertext, created_at) VALUES (?, ?, ?, ?)",
		identity, plaintext, ciphertext, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache reply: %w", err)
	}
	return nil
}

// ClearCache drops cached replies for identity, or all of them when identity
// is empty. It returns the number of rows removed.
func (s *LocalStore) ClearCache(identity string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	var err error
	if identity == "" {
		res, err = s.db.Exec("DELETE FROM oracle_cache")
	} else {
		res, err = s.db.Exec("DELETE FROM oracle_cache WHERE identity = ?", identity)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return res.RowsAffected()
}
