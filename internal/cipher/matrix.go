package cipher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cipherprobe/internal/logging"
)

// DefaultRepeatCount is how many times each character is repeated for the matrix.
const DefaultRepeatCount = 50

// MatrixData maps a character to the ciphertext of that character repeated.
type MatrixData map[rune]string

// Clone returns an independent copy.
func (m MatrixData) Clone() MatrixData {
	if m == nil {
		return nil
	}
	out := make(MatrixData, len(m))
	for c, ct := range m {
		out[c] = ct
	}
	return out
}

// Chars returns the characters in ascending order.
func (m MatrixData) Chars() []rune {
	chars := make([]rune, 0, len(m))
	for c := range m {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return chars
}

// MatrixResult is a successfully built matrix.
type MatrixResult struct {
	Identity    string
	RepeatCount int
	Data        MatrixData
	Failures    []QueryFailure
}

// BuildMatrix queries each alphabet character repeated repeatCount times and
// keeps the raw ciphertext. Failed characters are skipped; the build fails
// with *EmptyMatrixError only if nothing succeeded.
func (b *Builder) BuildMatrix(ctx context.Context, identity string, alphabet Alphabet, repeatCount int) (*MatrixResult, error) {
	if repeatCount <= 0 {
		return nil, &InvalidRepeatCountError{Count: repeatCount}
	}

	timer := logging.StartTimer(logging.CategoryMatrix, "BuildMatrix")
	defer timer.StopWithInfo()

	logging.Matrix("Building matrix for identity %q: %d characters x %d", identity, len(alphabet), repeatCount)

	data := make(MatrixData, len(alphabet))
	var failures []QueryFailure

	for i, char := range alphabet {
		if i > 0 {
			if err := b.pause(ctx); err != nil {
				return nil, err
			}
		}

		plaintext := strings.Repeat(string(char), repeatCount)
		start := time.Now()
		ciphertext, err := b.query(ctx, identity, plaintext)
		dur := time.Since(start)
		b.notify(QueryEvent{Phase: PhaseMatrix, Identity: identity, Index: i + 1, Total: len(alphabet), Char: char, Duration: dur, Err: err})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				logging.MatrixWarn("Matrix build for %q cancelled at %q: %v", identity, char, ctxErr)
				return nil, ctxErr
			}
			logging.MatrixWarn("Query for %q x %d failed: %v", char, repeatCount, err)
			failures = append(failures, QueryFailure{Char: char, Err: err})
			continue
		}
		data[char] = ciphertext
		logging.MatrixDebug("Query %d/%d answered with %d chars in %v", i+1, len(alphabet), len(ciphertext), dur)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &EmptyMatrixError{Identity: identity, Failures: len(failures)}
	}

	logging.Matrix("Generated matrix data for %d characters, %d failures", len(data), len(failures))
	return &MatrixResult{
		Identity:    identity,
		RepeatCount: repeatCount,
		Data:        data,
		Failures:    failures,
	}, nil
}

// MismatchKind classifies a cross-check failure.
type MismatchKind int

const (
	// MismatchUnmapped: the character has matrix data but no forward segment.
	MismatchUnmapped MismatchKind = iota
	// MismatchWindowCount: the number of full windows differs from the repeat count.
	MismatchWindowCount
	// MismatchSegment: at least one window differs from the forward segment.
	MismatchSegment
)

// Mismatch flags a character whose matrix ciphertext does not decompose into
// repeated copies of its forward segment.
type Mismatch struct {
	Char rune
	Kind MismatchKind
	// Window is the first differing window (MismatchSegment) and Count the
	// number of differing windows. For MismatchWindowCount, Count is the
	// number of full windows found.
	Window int
	Count  int
	Got    string
	Want   string
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MismatchUnmapped:
		return fmt.Sprintf("%q: no forward segment to compare against", m.Char)
	case MismatchWindowCount:
		return fmt.Sprintf("%q: expected %s windows, found %d", m.Char, m.Want, m.Count)
	default:
		return fmt.Sprintf("%q: %d window(s) differ, first at #%d: got %q want %q",
			m.Char, m.Count, m.Window, m.Got, m.Want)
	}
}

// CrossCheck verifies that every matrix entry splits into exactly repeatCount
// windows, each equal to the forward segment of the same character. It only
// reports; nothing is rejected.
func CrossCheck(matrix MatrixData, forward ForwardMap, segmentLength, repeatCount int) ([]Mismatch, error) {
	if segmentLength <= 0 {
		return nil, &InvalidSegmentLengthError{Length: segmentLength}
	}

	var mismatches []Mismatch
	for _, char := range matrix.Chars() {
		want, ok := forward[char]
		if !ok {
			mismatches = append(mismatches, Mismatch{Char: char, Kind: MismatchUnmapped})
			continue
		}

		windows := Segments(matrix[char], segmentLength)
		if len(windows) != repeatCount {
			mismatches = append(mismatches, Mismatch{
				Char:  char,
				Kind:  MismatchWindowCount,
				Count: len(windows),
				Want:  fmt.Sprint(repeatCount),
			})
		}

		bad := Mismatch{Char: char, Kind: MismatchSegment, Want: want}
		for i, w := range windows {
			if w == want {
				continue
			}
			if bad.Count == 0 {
				bad.Window = i
				bad.Got = w
			}
			bad.Count++
		}
		if bad.Count > 0 {
			mismatches = append(mismatches, bad)
		}
	}

	if len(mismatches) > 0 {
		logging.MatrixWarn("Cross-check found %d mismatches", len(mismatches))
	}
	return mismatches, nil
}
