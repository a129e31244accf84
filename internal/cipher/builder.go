package cipher

import (
	"context"
	"strings"
	"time"

	"cipherprobe/internal/logging"
)

// DefaultDelay is the pause between two consecutive oracle queries.
const DefaultDelay = 100 * time.Millisecond

// Oracle encrypts plaintext under an identity. Implementations must be
// deterministic for a given (identity, plaintext) during one session.
type Oracle interface {
	Encrypt(ctx context.Context, identity, plaintext string) (string, error)
}

// Builder issues the oracle queries for map and matrix builds. Queries are
// strictly sequential, one per alphabet character, never retried.
type Builder struct {
	oracle Oracle

	// Delay separates consecutive queries. Zero disables pacing.
	Delay time.Duration

	// Observer, if set, is notified after every query.
	Observer Observer
}

// NewBuilder returns a Builder using DefaultDelay.
func NewBuilder(oracle Oracle) *Builder {
	return &Builder{oracle: oracle, Delay: DefaultDelay}
}

// MapResult is a successfully built forward map.
type MapResult struct {
	Identity      string
	Forward       ForwardMap
	SegmentLength int
	Failures      []QueryFailure
}

// BuildMap queries every alphabet character on its own and assembles the
// forward map. Per-character failures are collected and skipped. A segment
// length mismatch aborts the build with *InconsistentSegmentLengthError; an
// empty result fails with *EmptyMapError. A cancelled context returns the
// context error even when it lands during the last query. Nothing partial is
// ever returned.
func (b *Builder) BuildMap(ctx context.Context, identity string, alphabet Alphabet) (*MapResult, error) {
	timer := logging.StartTimer(logging.CategoryMapper, "BuildMap")
	defer timer.StopWithInfo()

	logging.Mapper("Building map for identity %q over %d characters", identity, len(alphabet))

	forward := make(ForwardMap, len(alphabet))
	model := segmentModel{identity: identity}
	var failures []QueryFailure

	for i, char := range alphabet {
		if i > 0 {
			if err := b.pause(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		ciphertext, err := b.query(ctx, identity, string(char))
		dur := time.Since(start)
		b.notify(QueryEvent{Phase: PhaseMap, Identity: identity, Index: i + 1, Total: len(alphabet), Char: char, Duration: dur, Err: err})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				logging.MapperWarn("Build for %q cancelled at %q: %v", identity, char, ctxErr)
				return nil, ctxErr
			}
			logging.MapperWarn("Query for %q failed: %v", char, err)
			failures = append(failures, QueryFailure{Char: char, Err: err})
			continue
		}

		if err := model.observe(char, ciphertext); err != nil {
			logging.MapperError("Aborting build for %q: %v", identity, err)
			return nil, err
		}
		if len(forward) == 0 {
			logging.Mapper("Detected segment length %d", model.length)
		}
		forward[char] = ciphertext
		logging.MapperDebug("Query %d/%d answered in %v", i+1, len(alphabet), dur)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(forward) == 0 || model.length <= 0 {
		return nil, &EmptyMapError{Identity: identity, Failures: len(failures)}
	}

	logging.Mapper("Mapped %d/%d characters, segment length %d, %d failures",
		len(forward), len(alphabet), model.length, len(failures))

	return &MapResult{
		Identity:      identity,
		Forward:       forward,
		SegmentLength: model.length,
		Failures:      failures,
	}, nil
}

// query performs one oracle call. An empty reply counts as a failure.
func (b *Builder) query(ctx context.Context, identity, plaintext string) (string, error) {
	ciphertext, err := b.oracle.Encrypt(ctx, identity, plaintext)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(ciphertext) == "" {
		return "", ErrEmptyCiphertext
	}
	return ciphertext, nil
}

// pause waits Delay, returning early with the context error on cancellation.
func (b *Builder) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(b.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (b *Builder) notify(ev QueryEvent) {
	logging.Audit().OracleQuery(string(ev.Phase), ev.Identity, ev.Index, ev.Total, ev.Duration, ev.Err)
	if b.Observer != nil {
		b.Observer.OnQuery(ev)
	}
}
