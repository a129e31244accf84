package cipher

import (
	"context"
	"errors"
	"strings"
)

var errTransport = errors.New("connection refused")

// fakeOracle records every query and answers through encrypt.
type fakeOracle struct {
	encrypt func(identity, plaintext string) (string, error)
	calls   []string
}

func (f *fakeOracle) Encrypt(_ context.Context, identity, plaintext string) (string, error) {
	f.calls = append(f.calls, identity+"|"+plaintext)
	return f.encrypt(identity, plaintext)
}

// substitution returns an oracle that encrypts by concatenating per-character
// segments, the way a real fixed-width substitution cipher behaves. Characters
// missing from table fail.
func substitution(table map[rune]string) *fakeOracle {
	return &fakeOracle{encrypt: func(_, plaintext string) (string, error) {
		var b strings.Builder
		for _, r := range plaintext {
			seg, ok := table[r]
			if !ok {
				return "", errTransport
			}
			b.WriteString(seg)
		}
		return b.String(), nil
	}}
}

// perIdentity returns an oracle that uses a different table per identity.
func perIdentity(tables map[string]map[rune]string) *fakeOracle {
	return &fakeOracle{encrypt: func(identity, plaintext string) (string, error) {
		table, ok := tables[identity]
		if !ok {
			return "", errTransport
		}
		return substitution(table).encrypt(identity, plaintext)
	}}
}

func newTestBuilder(o Oracle) *Builder {
	b := NewBuilder(o)
	b.Delay = 0
	return b
}

// cancelOn wraps table so that querying a plaintext starting with char
// cancels the build context and fails the way an HTTP client does.
func cancelOn(table map[rune]string, char rune, cancel context.CancelFunc) *fakeOracle {
	inner := substitution(table)
	return &fakeOracle{encrypt: func(identity, plaintext string) (string, error) {
		if strings.HasPrefix(plaintext, string(char)) {
			cancel()
			return "", context.Canceled
		}
		return inner.encrypt(identity, plaintext)
	}}
}
