package store

import (
	"path/filepath"
	"testing"

	"cipherprobe/internal/cipher"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to create local store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewLocalStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "probe.db")
	store, err := NewLocalStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, path)
	assert.Equal(t, path, store.Path())
}

func TestSaveLoadMap(t *testing.T) {
	store := newTestStore(t)
	forward := cipher.ForwardMap{'a': "XY", 'b': "ZZ", 'é': "Q1"}

	runID, err := store.SaveMap("7", forward, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	rec, err := store.LoadMap("7")
	require.NoError(t, err)
	require.NotNil(t, rec)
	if diff := cmp.Diff(forward, rec.Forward); diff != "" {
		t.Errorf("forward map mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, rec.SegmentLength)
	assert.Equal(t, runID, rec.RunID)
	assert.False(t, rec.CreatedAt.IsZero())

	// Saving again replaces the row with a new run ID.
	runID2, err := store.SaveMap("7", cipher.ForwardMap{'a': "AB"}, 2)
	require.NoError(t, err)
	assert.NotEqual(t, runID, runID2)

	rec, err = store.LoadMap("7")
	require.NoError(t, err)
	assert.Equal(t, cipher.ForwardMap{'a': "AB"}, rec.Forward)
}

func TestLoadMap_Missing(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.LoadMap("nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSaveMap_RequiresIdentity(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveMap("", cipher.ForwardMap{'a': "X"}, 1)
	assert.ErrorIs(t, err, cipher.ErrNoIdentity)
}

func TestSaveLoadDeleteMatrix(t *testing.T) {
	store := newTestStore(t)
	data := cipher.MatrixData{'a': "XYXYXY", 'b': "ZZZZZZ"}

	_, err := store.SaveMatrix("7", data, 3)
	require.NoError(t, err)

	rec, err := store.LoadMatrix("7")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, data, rec.Data)
	assert.Equal(t, 3, rec.RepeatCount)

	require.NoError(t, store.DeleteMatrix("7"))
	rec, err = store.LoadMatrix("7")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIdentities(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveMap("b", cipher.ForwardMap{'a': "X", 'b': "Y"}, 1)
	require.NoError(t, err)
	_, err = store.SaveMap("a", cipher.ForwardMap{'a': "XY"}, 2)
	require.NoError(t, err)
	_, err = store.SaveMatrix("b", cipher.MatrixData{'a': "XX"}, 2)
	require.NoError(t, err)

	ids, err := store.Identities()
	require.NoError(t, err)
	require.Len(t, ids, 2)

	assert.Equal(t, "a", ids[0].Identity)
	assert.Equal(t, 2, ids[0].SegmentLength)
	assert.Equal(t, 1, ids[0].Chars)
	assert.False(t, ids[0].HasMatrix)

	assert.Equal(t, "b", ids[1].Identity)
	assert.Equal(t, 2, ids[1].Chars)
	assert.True(t, ids[1].HasMatrix)
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveMap("a", cipher.ForwardMap{'a': "XY"}, 2)
	require.NoError(t, err)
	require.NoError(t, store.Remember("a", "a", "XY"))
	require.NoError(t, store.Remember("a", "b", "ZZ"))

	stats, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["maps"])
	assert.Equal(t, int64(0), stats["matrices"])
	assert.Equal(t, int64(2), stats["oracle_cache"])
}

func TestDecodeRunes_RejectsMultiCharKey(t *testing.T) {
	_, err := decodeRunes(`{"ab":"XY"}`)
	assert.Error(t, err)
}

func TestDecodeRunes_RejectsEmptyKey(t *testing.T) {
	_, err := decodeRunes(`{"":"XY"}`)
	assert.Error(t, err)
}

func TestSaveLoadMap_ReplacementCharacterKey(t *testing.T) {
	store := newTestStore(t)
	forward := cipher.ForwardMap{'\uFFFD': "XY", 'a': "ZZ"}

	_, err := store.SaveMap("7", forward, 2)
	require.NoError(t, err)

	rec, err := store.LoadMap("7")
	require.NoError(t, err)
	require.NotNil(t, rec)
	if diff := cmp.Diff(forward, rec.Forward); diff != "" {
		t.Errorf("forward map mismatch (-want +got):\n%s", diff)
	}
}
