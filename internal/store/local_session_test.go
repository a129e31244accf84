package store

import (
	"testing"

	"cipherprobe/internal/cipher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveIdentity(t *testing.T) {
	store := newTestStore(t)

	id, err := store.ActiveIdentity()
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SetActiveIdentity("42"))
	id, err = store.ActiveIdentity()
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestSaveLoadState(t *testing.T) {
	store := newTestStore(t)
	st := cipher.State{
		Identity:      "7",
		Forward:       cipher.ForwardMap{'a': "XY", 'b': "ZZ"},
		SegmentLength: 2,
		Matrix:        cipher.MatrixData{'a': "XYXY"},
		RepeatCount:   2,
	}

	require.NoError(t, store.SaveState(st))

	got, err := store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestSaveState_EmptyMatrixDeletesStaleRow(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SaveMatrix("7", cipher.MatrixData{'a': "OLD"}, 1)
	require.NoError(t, err)

	require.NoError(t, store.SaveState(cipher.State{
		Identity:      "7",
		Forward:       cipher.ForwardMap{'a': "XY"},
		SegmentLength: 2,
	}))

	rec, err := store.LoadMatrix("7")
	require.NoError(t, err)
	assert.Nil(t, rec)

	got, err := store.LoadState()
	require.NoError(t, err)
	assert.Nil(t, got.Matrix)
	assert.Zero(t, got.RepeatCount)
}

func TestSaveState_KeepsOtherIdentities(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveState(cipher.State{Identity: "a", Forward: cipher.ForwardMap{'a': "X"}, SegmentLength: 1}))
	require.NoError(t, store.SaveState(cipher.State{Identity: "b", Forward: cipher.ForwardMap{'a': "YY"}, SegmentLength: 2}))

	got, err := store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "b", got.Identity)

	rec, err := store.LoadMap("a")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.SegmentLength)
}

func TestSaveState_RequiresIdentity(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.SaveState(cipher.State{}), cipher.ErrNoIdentity)
}

func TestLoadState_Empty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadState()
	require.NoError(t, err)
	assert.Equal(t, cipher.State{}, got)
}
