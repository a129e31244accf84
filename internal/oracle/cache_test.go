package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	entries    map[string]string
	lookupErr  error
	remembered int
}

func (m *mapCache) Lookup(identity, plaintext string) (string, bool, error) {
	if m.lookupErr != nil {
		return "", false, m.lookupErr
	}
	ct, ok := m.entries[identity+"|"+plaintext]
	return ct, ok, nil
}

func (m *mapCache) Remember(identity, plaintext, ciphertext string) error {
	m.entries[identity+"|"+plaintext] = ciphertext
	m.remembered++
	return nil
}

type countingEncrypter struct {
	calls int
	err   error
}

func (c *countingEncrypter) Encrypt(_ context.Context, identity, plaintext string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return identity + ":" + plaintext, nil
}

func TestCachedEncrypter_HitsCacheOnRepeat(t *testing.T) {
	next := &countingEncrypter{}
	cache := &mapCache{entries: map[string]string{}}
	enc := NewCachedEncrypter(next, cache)

	for i := 0; i < 3; i++ {
		ct, err := enc.Encrypt(context.Background(), "id", "a")
		require.NoError(t, err)
		assert.Equal(t, "id:a", ct)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.remembered)

	// Different identity is a different key.
	_, err := enc.Encrypt(context.Background(), "other", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedEncrypter_DoesNotCacheFailures(t *testing.T) {
	next := &countingEncrypter{err: errors.New("boom")}
	cache := &mapCache{entries: map[string]string{}}
	enc := NewCachedEncrypter(next, cache)

	_, err := enc.Encrypt(context.Background(), "id", "a")
	assert.Error(t, err)
	assert.Zero(t, cache.remembered)
}

func TestCachedEncrypter_LookupErrorFallsThrough(t *testing.T) {
	next := &countingEncrypter{}
	cache := &mapCache{entries: map[string]string{}, lookupErr: errors.New("db locked")}
	enc := NewCachedEncrypter(next, cache)

	ct, err := enc.Encrypt(context.Background(), "id", "a")
	require.NoError(t, err)
	assert.Equal(t, "id:a", ct)
	assert.Equal(t, 1, next.calls)
}
