package cipher

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMap is returned by Decode when there is no forward map to invert.
	ErrNoMap = errors.New("no decryption map available")

	// ErrNoIdentity is returned by Session operations that need an active identity.
	ErrNoIdentity = errors.New("no identity set")

	// ErrEmptyCiphertext marks an oracle reply with no content.
	ErrEmptyCiphertext = errors.New("oracle returned an empty ciphertext")
)

// QueryFailure records one oracle call that failed. The character is left out of
// the map or matrix being built; it never aborts the build.
type QueryFailure struct {
	Char rune
	Err  error
}

func (f QueryFailure) Error() string {
	return fmt.Sprintf("query for %q failed: %v", f.Char, f.Err)
}

func (f QueryFailure) Unwrap() error { return f.Err }

// InconsistentSegmentLengthError aborts a map build when two single-character
// ciphertexts differ in length.
type InconsistentSegmentLengthError struct {
	Identity string
	Expected int
	Got      int
	Char     rune
}

func (e *InconsistentSegmentLengthError) Error() string {
	return fmt.Sprintf("inconsistent segment length for identity %q: expected %d, got %d for %q",
		e.Identity, e.Expected, e.Got, e.Char)
}

// EmptyMapError is returned when no character could be mapped.
type EmptyMapError struct {
	Identity string
	Failures int
}

func (e *EmptyMapError) Error() string {
	return fmt.Sprintf("no characters mapped for identity %q (%d failed queries)", e.Identity, e.Failures)
}

// EmptyMatrixError is returned when no repeated-character query succeeded.
type EmptyMatrixError struct {
	Identity string
	Failures int
}

func (e *EmptyMatrixError) Error() string {
	return fmt.Sprintf("no matrix data generated for identity %q (%d failed queries)", e.Identity, e.Failures)
}

// InvalidSegmentLengthError is returned by Decode for a non-positive segment length.
type InvalidSegmentLengthError struct {
	Length int
}

func (e *InvalidSegmentLengthError) Error() string {
	return fmt.Sprintf("invalid segment length %d", e.Length)
}

// InvalidRepeatCountError is returned by BuildMatrix for a non-positive repeat count.
type InvalidRepeatCountError struct {
	Count int
}

func (e *InvalidRepeatCountError) Error() string {
	return fmt.Sprintf("invalid repeat count %d", e.Count)
}

// WarningKind classifies a non-fatal condition.
type WarningKind int

const (
	WarnAmbiguousMap WarningKind = iota
	WarnUnknownSegment
	WarnTruncatedInput
)

func (k WarningKind) String() string {
	switch k {
	case WarnAmbiguousMap:
		return "ambiguous_map"
	case WarnUnknownSegment:
		return "unknown_segment"
	case WarnTruncatedInput:
		return "truncated_input"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal diagnostic surfaced to the caller.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return w.Message
}
