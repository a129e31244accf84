package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"cipherprobe/internal/cipher"
	"cipherprobe/internal/logging"

	"github.com/google/uuid"
)

// =============================================================================
// MAPS AND MATRICES
// =============================================================================

// MapRecord is a stored forward map.
type MapRecord struct {
	Identity      string
	SegmentLength int
	Forward       cipher.ForwardMap
	RunID         string
	CreatedAt     time.Time
}

// MatrixRecord is stored matrix data.
type MatrixRecord struct {
	Identity    string
	RepeatCount int
	Data        cipher.MatrixData
	RunID       string
	CreatedAt   time.Time
}

// IdentitySummary describes one identity with a stored map.
type IdentitySummary struct {
	Identity      string
	SegmentLength int
	Chars         int
	HasMatrix     bool
	CreatedAt     time.Time
}

// encodeRunes stores rune keys as one-character strings so the JSON stays
// readable ("a" rather than "97").
func encodeRunes(m map[rune]string) (string, error) {
	out := make(map[string]string, len(m))
	for r, v := range m {
		out[string(r)] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRunes(data string) (map[rune]string, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	out := make(map[rune]string, len(raw))
	for k, v := range raw {
		r, size := utf8.DecodeRuneInString(k)
		if (r == utf8.RuneError && size <= 1) || size != len(k) {
			return nil, fmt.Errorf("invalid character key %q", k)
		}
		out[r] = v
	}
	return out, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveMap(db execer, identity string, forward cipher.ForwardMap, segmentLength int) (string, error) {
	forwardJSON, err := encodeRunes(forward)
	if err != nil {
		return "", fmt.Errorf("failed to encode map: %w", err)
	}
	runID := uuid.NewString()
	_, err = db.Exec(
		`INSERT OR REPLACE INTO maps (identity, segment_length, forward_json, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		identity, segmentLength, forwardJSON, runID, now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save map for %q: %w", identity, err)
	}
	return runID, nil
}

func saveMatrix(db execer, identity string, data cipher.MatrixData, repeatCount int) (string, error) {
	dataJSON, err := encodeRunes(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode matrix: %w", err)
	}
	runID := uuid.NewString()
	_, err = db.Exec(
		`INSERT OR REPLACE INTO matrices (identity, repeat_count, data_json, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		identity, repeatCount, dataJSON, runID, now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save matrix for %q: %w", identity, err)
	}
	return runID, nil
}

// SaveMap stores the forward map for identity, replacing any previous one.
// It returns the run ID assigned to this save.
func (s *LocalStore) SaveMap(identity string, forward cipher.ForwardMap, segmentLength int) (string, error) {
	if identity == "" {
		return "", cipher.ErrNoIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	runID, err := saveMap(s.db, identity, forward, segmentLength)
	if err != nil {
		logging.StoreError("%v", err)
		return "", err
	}
	logging.StoreDebug("Saved map for %q: %d chars, run %s", identity, len(forward), runID)
	return runID, nil
}

// LoadMap returns the stored map for identity, or nil if there is none.
func (s *LocalStore) LoadMap(identity string) (*MapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec MapRecord
	var forwardJSON string
	var createdAt int64
	err := s.db.QueryRow(
		"SELECT identity, segment_length, forward_json, run_id, created_at FROM maps WHERE identity = ?",
		identity,
	).Scan(&rec.Identity, &rec.SegmentLength, &forwardJSON, &rec.RunID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load map for %q: %w", identity, err)
	}

	forward, err := decodeRunes(forwardJSON)
	if err != nil {
		return nil, fmt.Errorf("corrupt map for %q: %w", identity, err)
	}
	rec.Forward = forward
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// SaveMatrix stores matrix data for identity, replacing any previous one.
func (s *LocalStore) SaveMatrix(identity string, data cipher.MatrixData, repeatCount int) (string, error) {
	if identity == "" {
		return "", cipher.ErrNoIdentity
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	runID, err := saveMatrix(s.db, identity, data, repeatCount)
	if err != nil {
		logging.StoreError("%v", err)
		return "", err
	}
	logging.StoreDebug("Saved matrix for %q: %d rows x%d, run %s", identity, len(data), repeatCount, runID)
	return runID, nil
}

// LoadMatrix returns the stored matrix for identity, or nil if there is none.
func (s *LocalStore) LoadMatrix(identity string) (*MatrixRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec MatrixRecord
	var dataJSON string
	var createdAt int64
	err := s.db.QueryRow(
		"SELECT identity, repeat_count, data_json, run_id, created_at FROM matrices WHERE identity = ?",
		identity,
	).Scan(&rec.Identity, &rec.RepeatCount, &dataJSON, &rec.RunID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load matrix for %q: %w", identity, err)
	}

	data, err := decodeRunes(dataJSON)
	if err != nil {
		return nil, fmt.Errorf("corrupt matrix for %q: %w", identity, err)
	}
	rec.Data = data
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// DeleteMatrix removes the stored matrix for identity, if any.
func (s *LocalStore) DeleteMatrix(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM matrices WHERE identity = ?", identity); err != nil {
		return fmt.Errorf("failed to delete matrix for %q: %w", identity, err)
	}
	return nil
}

// Identities lists every identity with a stored map, sorted by identity.
func (s *LocalStore) Identities() ([]IdentitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT m.identity, m.segment_length, m.forward_json, m.created_at, x.identity IS NOT NULL
		 FROM maps m LEFT JOIN matrices x ON x.identity = m.identity`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	defer rows.Close()

	var out []IdentitySummary
	for rows.Next() {
		var sum IdentitySummary
		var forwardJSON string
		var createdAt int64
		if err := rows.Scan(&sum.Identity, &sum.SegmentLength, &forwardJSON, &createdAt, &sum.HasMatrix); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		if forward, err := decodeRunes(forwardJSON); err == nil {
			sum.Chars = len(forward)
		} else {
			logging.Get(logging.CategoryStore).Warn("Skipping char count for %q: %v", sum.Identity, err)
		}
		sum.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, nil
}
