package store

import (
	"database/sql"
	"errors"
	"fmt"

	"cipherprobe/internal/cipher"
	"cipherprobe/internal/logging"
)

// =============================================================================
// SESSION STATE
// =============================================================================

const activeIdentityKey = "active_identity"

// SetActiveIdentity records which identity the session last committed.
func (s *LocalStore) SetActiveIdentity(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setActiveIdentity(s.db, identity)
}

func setActiveIdentity(db execer, identity string) error {
	_, err := db.Exec("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", activeIdentityKey, identity)
	if err != nil {
		return fmt.Errorf("failed to set active identity: %w", err)
	}
	return nil
}

// ActiveIdentity returns the last committed identity, or "" if none.
func (s *LocalStore) ActiveIdentity() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var identity string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", activeIdentityKey).Scan(&identity)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active identity: %w", err)
	}
	return identity, nil
}

// SaveState persists a whole session state in one transaction: the map, the
// matrix (deleted when empty) and the active identity.
func (s *LocalStore) SaveState(st cipher.State) error {
	timer := logging.StartTimer(logging.CategoryStore, "SaveState")
	defer timer.Stop()

	if st.Identity == "" {
		return cipher.ErrNoIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(st.Forward) > 0 {
		if _, err := saveMap(tx, st.Identity, st.Forward, st.SegmentLength); err != nil {
			return err
		}
	}
	if len(st.Matrix) > 0 {
		if _, err := saveMatrix(tx, st.Identity, st.Matrix, st.RepeatCount); err != nil {
			return err
		}
	} else if _, err := tx.Exec("DELETE FROM matrices WHERE identity = ?", st.Identity); err != nil {
		return fmt.Errorf("failed to clear matrix for %q: %w", st.Identity, err)
	}
	if err := setActiveIdentity(tx, st.Identity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logging.StoreError("Failed to commit state for %q: %v", st.Identity, err)
		return fmt.Errorf("failed to commit state: %w", err)
	}

	logging.Audit().StateSaved(st.Identity, len(st.Forward), len(st.Matrix))
	logging.Store("Saved state for %q (%d chars, %d matrix rows)", st.Identity, len(st.Forward), len(st.Matrix))
	return nil
}

// LoadState rebuilds the state of the active identity. A store with no active
// identity yields a zero State.
func (s *LocalStore) LoadState() (cipher.State, error) {
	identity, err := s.ActiveIdentity()
	if err != nil || identity == "" {
		return cipher.State{}, err
	}

	st := cipher.State{Identity: identity}

	mapRec, err := s.LoadMap(identity)
	if err != nil {
		return cipher.State{}, err
	}
	if mapRec != nil {
		st.Forward = mapRec.Forward
		st.SegmentLength = mapRec.SegmentLength
	}

	matRec, err := s.LoadMatrix(identity)
	if err != nil {
		return cipher.State{}, err
	}
	if matRec != nil {
		st.Matrix = matRec.Data
		st.RepeatCount = matRec.RepeatCount
	}

	logging.StoreDebug("Loaded state for %q", identity)
	return st, nil
}
