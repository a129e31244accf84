package cipher

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioMap = ForwardMap{'a': "XY", 'b': "ZZ"}

func TestDecode_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		ciphertext string
		want       string
		unknown    int
		discarded  string
	}{
		{"all known", "XYZZXY", "aba", 0, ""},
		{"trailing partial discarded", "XYZZQ", "ab", 0, "Q"},
		{"unknown segment", "XYWW", "a?", 1, ""},
		{"empty input", "", "", 0, ""},
		{"shorter than one segment", "X", "", 0, "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(tt.ciphertext, scenarioMap, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Plaintext)
			assert.Equal(t, tt.unknown, res.Unknown)
			assert.Equal(t, tt.discarded, res.Discarded)
		})
	}
}

func TestDecode_Preconditions(t *testing.T) {
	_, err := Decode("XY", nil, 2)
	assert.ErrorIs(t, err, ErrNoMap)

	_, err = Decode("XY", ForwardMap{}, 2)
	assert.ErrorIs(t, err, ErrNoMap)

	for _, n := range []int{0, -3} {
		_, err = Decode("XY", scenarioMap, n)
		var segErr *InvalidSegmentLengthError
		require.True(t, errors.As(err, &segErr), "length %d", n)
		assert.Equal(t, n, segErr.Length)
	}
}

func TestDecode_TruncationPolicy(t *testing.T) {
	forward := ForwardMap{'a': "abc", 'b': "def", 'c': "ghi"}
	const segLen = 3

	for n := 0; n < 5; n++ {
		for r := 1; r < segLen; r++ {
			ciphertext := strings.Repeat("abcxyz", n)[:segLen*n] + strings.Repeat("j", r)
			res, err := Decode(ciphertext, forward, segLen)
			require.NoError(t, err)
			assert.Equal(t, n, len([]rune(res.Plaintext)), "n=%d r=%d", n, r)
			assert.Equal(t, strings.Repeat("j", r), res.Discarded)

			kinds := warningKinds(res.Warnings)
			assert.Contains(t, kinds, WarnTruncatedInput)
		}
	}
}

func TestDecode_UnknownSegmentsCounted(t *testing.T) {
	ciphertext := "XY" + strings.Repeat("WW", 8) + "ZZ"
	res, err := Decode(ciphertext, scenarioMap, 2)
	require.NoError(t, err)

	assert.Equal(t, "a????????b", res.Plaintext)
	assert.Equal(t, 8, res.Unknown)

	// Five individual warnings, then one suppression notice.
	var unknownWarnings []Warning
	for _, w := range res.Warnings {
		if w.Kind == WarnUnknownSegment {
			unknownWarnings = append(unknownWarnings, w)
		}
	}
	require.Len(t, unknownWarnings, maxUnknownWarnings+1)
	assert.Contains(t, unknownWarnings[0].Message, `"WW"`)
	assert.Contains(t, unknownWarnings[maxUnknownWarnings].Message, "suppressed")
}

func TestDecode_AmbiguousMapWarns(t *testing.T) {
	forward := ForwardMap{'a': "XY", 'b': "XY", 'c': "ZZ"}
	res, err := Decode("XYZZ", forward, 2)
	require.NoError(t, err)

	assert.Equal(t, "ac", res.Plaintext)
	assert.Contains(t, warningKinds(res.Warnings), WarnAmbiguousMap)

	want := []Collision{{Segment: "XY", Chars: []rune{'a', 'b'}}}
	if diff := cmp.Diff(want, res.Collisions); diff != "" {
		t.Errorf("collisions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	forward := ForwardMap{'a': "XY", 'b': "XY", 'c': "ZZ", 'd': "QR"}
	first, err := Decode("XYZZQRWWXYZ", forward, 2)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Decode("XYZZQRWWXYZ", forward, 2)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("decode not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	forward := ForwardMap{}
	for i, r := range DefaultAlphabet {
		forward[r] = string([]rune{'A' + rune(i%26), 'a' + rune(i/26), '#'})
	}
	for c, seg := range forward {
		res, err := Decode(seg, forward, 3)
		require.NoError(t, err)
		assert.Equal(t, string(c), res.Plaintext)
		assert.Zero(t, res.Unknown)
		assert.Empty(t, res.Warnings)
	}
}

func TestDecode_MultiByteSegments(t *testing.T) {
	forward := ForwardMap{'a': "äö", 'b': "üß"}
	res, err := Decode("äöüßä", forward, 2)
	require.NoError(t, err)
	assert.Equal(t, "ab", res.Plaintext)
	assert.Equal(t, "ä", res.Discarded)
}

func warningKinds(ws []Warning) []WarningKind {
	kinds := make([]WarningKind, 0, len(ws))
	for _, w := range ws {
		kinds = append(kinds, w.Kind)
	}
	return kinds
}
