package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRemember(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Lookup("1", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Remember("1", "a", "XY"))

	ct, ok, err := store.Lookup("1", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "XY", ct)

	// Identity is part of the key.
	_, ok, err = store.Lookup("2", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearCache(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Remember("1", "a", "XY"))
	require.NoError(t, store.Remember("1", "b", "ZZ"))
	require.NoError(t, store.Remember("2", "a", "QQ"))

	n, err := store.ClearCache("1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, err := store.Lookup("2", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = store.ClearCache("")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
