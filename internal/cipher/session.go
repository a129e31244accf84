package cipher

import (
	"context"
	"fmt"

	"cipherprobe/internal/logging"
)

// State is everything a session derives for its active identity. It is a plain
// value so it can be persisted and restored.
type State struct {
	Identity      string
	Forward       ForwardMap
	SegmentLength int
	Matrix        MatrixData
	RepeatCount   int
}

func (s State) clone() State {
	s.Forward = s.Forward.Clone()
	s.Matrix = s.Matrix.Clone()
	return s
}

// Session owns the active identity and everything derived from it. State is
// only ever replaced as a whole after a build succeeds; a failed build leaves
// the previous identity and its map in place.
//
// A Session is not safe for concurrent use.
type Session struct {
	builder     *Builder
	alphabet    Alphabet
	repeatCount int
	state       State
}

// NewSession creates an empty session.
func NewSession(builder *Builder, alphabet Alphabet, repeatCount int) *Session {
	if repeatCount <= 0 {
		repeatCount = DefaultRepeatCount
	}
	return &Session{builder: builder, alphabet: alphabet, repeatCount: repeatCount}
}

// SetIdentity builds a fresh map for identity and, on success, makes it the
// active identity. Switching to a different identity drops the matrix.
func (s *Session) SetIdentity(ctx context.Context, identity string) (*MapResult, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity cannot be empty")
	}

	res, err := s.builder.BuildMap(ctx, identity, s.alphabet)
	if err != nil {
		logging.SessionWarn("Map build for %q failed, keeping identity %q: %v", identity, s.state.Identity, err)
		logging.Audit().BuildFailed(string(PhaseMap), identity, err)
		return nil, err
	}

	next := State{
		Identity:      identity,
		Forward:       res.Forward.Clone(),
		SegmentLength: res.SegmentLength,
	}
	if identity == s.state.Identity {
		next.Matrix = s.state.Matrix
		next.RepeatCount = s.state.RepeatCount
	} else if s.state.Identity != "" {
		logging.Session("Identity changed from %q to %q, clearing matrix data", s.state.Identity, identity)
	}
	s.state = next

	logging.Session("Identity %q active: %d chars mapped, segment length %d", identity, len(next.Forward), next.SegmentLength)
	logging.Audit().BuildComplete(string(PhaseMap), identity, len(res.Forward), len(res.Failures))
	return res, nil
}

// BuildMatrix builds the repetition matrix for the active identity.
func (s *Session) BuildMatrix(ctx context.Context) (*MatrixResult, error) {
	if s.state.Identity == "" {
		return nil, ErrNoIdentity
	}

	res, err := s.builder.BuildMatrix(ctx, s.state.Identity, s.alphabet, s.repeatCount)
	if err != nil {
		logging.SessionWarn("Matrix build for %q failed, keeping previous matrix: %v", s.state.Identity, err)
		logging.Audit().BuildFailed(string(PhaseMatrix), s.state.Identity, err)
		return nil, err
	}
	s.state.Matrix = res.Data.Clone()
	s.state.RepeatCount = res.RepeatCount
	logging.Audit().BuildComplete(string(PhaseMatrix), s.state.Identity, len(res.Data), len(res.Failures))
	return res, nil
}

// Decode decodes ciphertext with the active map.
func (s *Session) Decode(ciphertext string) (*DecodeResult, error) {
	if s.state.Identity == "" {
		return nil, ErrNoIdentity
	}
	res, err := Decode(ciphertext, s.state.Forward, s.state.SegmentLength)
	if err != nil {
		return nil, err
	}
	logging.Decoder("Decoded %d segments for %q, %d warnings", len([]rune(res.Plaintext)), s.state.Identity, len(res.Warnings))
	logging.Audit().Decode(s.state.Identity, len([]rune(res.Plaintext)), res.Unknown)
	return res, nil
}

// CrossCheck compares the active matrix with the active map.
func (s *Session) CrossCheck() ([]Mismatch, error) {
	if len(s.state.Matrix) == 0 {
		return nil, nil
	}
	return CrossCheck(s.state.Matrix, s.state.Forward, s.state.SegmentLength, s.state.RepeatCount)
}

// SetRepeatCount changes the repeat count used by the next BuildMatrix.
func (s *Session) SetRepeatCount(n int) error {
	if n <= 0 {
		return &InvalidRepeatCountError{Count: n}
	}
	s.repeatCount = n
	return nil
}

// Alphabet returns the characters this session maps.
func (s *Session) Alphabet() Alphabet { return s.alphabet }

// Identity returns the active identity, or "" if none.
func (s *Session) Identity() string { return s.state.Identity }

// SegmentLength returns the active segment length, or 0 if none.
func (s *Session) SegmentLength() int { return s.state.SegmentLength }

// RepeatCount returns the repeat count of the active matrix, or 0 if none.
func (s *Session) RepeatCount() int { return s.state.RepeatCount }

// Forward returns a copy of the active forward map.
func (s *Session) Forward() ForwardMap { return s.state.Forward.Clone() }

// Matrix returns a copy of the active matrix data.
func (s *Session) Matrix() MatrixData { return s.state.Matrix.Clone() }

// Snapshot returns a copy of the full session state.
func (s *Session) Snapshot() State { return s.state.clone() }

// Restore replaces the session state with a previously saved one.
func (s *Session) Restore(st State) error {
	if len(st.Forward) > 0 && st.SegmentLength <= 0 {
		return &InvalidSegmentLengthError{Length: st.SegmentLength}
	}
	if st.Identity == "" && (len(st.Forward) > 0 || len(st.Matrix) > 0) {
		return ErrNoIdentity
	}
	s.state = st.clone()
	logging.SessionDebug("Restored identity %q (%d chars, %d matrix rows)", st.Identity, len(st.Forward), len(st.Matrix))
	return nil
}
