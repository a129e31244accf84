package display

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cipherprobe/internal/cipher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapJSON(t *testing.T) {
	out, err := MapJSON(cipher.ForwardMap{'b': "ZZ", 'a': "XY", '<': "Q1"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]string{"a": "XY", "b": "ZZ", "<": "Q1"}, decoded)

	// Keys are sorted and HTML characters are left alone.
	assert.Less(t, strings.Index(out, `"<"`), strings.Index(out, `"a"`))
	assert.Less(t, strings.Index(out, `"a"`), strings.Index(out, `"b"`))
	assert.Contains(t, out, "\n    \"a\": \"XY\"")
}

func TestRenderer_Map(t *testing.T) {
	r := New(80, false)
	out, err := r.Map("7", 2, cipher.ForwardMap{'a': "XY"})
	require.NoError(t, err)
	assert.Contains(t, out, "(Generated using ID: 7)")
	assert.Contains(t, out, "(Detected segment length: 2)")
	assert.Contains(t, out, `"a": "XY"`)
}

func TestRenderer_Decode(t *testing.T) {
	r := New(80, false)
	res, err := cipher.Decode("XYZZQQQ", cipher.ForwardMap{'a': "XY", 'b': "ZZ"}, 2)
	require.NoError(t, err)

	out := r.Decode("7", "XYZZQQQ", 2, res)
	assert.Contains(t, out, "Decrypting using map for ID: 7")
	assert.Contains(t, out, "Encrypted text (length 7):")
	assert.Contains(t, out, "Using segment length: 2")
	assert.Contains(t, out, "Decrypted text: ab?")
	assert.Contains(t, out, "(1 unknown segment(s) replaced with '?')")
	assert.Contains(t, out, "not a multiple")
}

func TestRenderer_DecodeWrapsCiphertext(t *testing.T) {
	r := New(20, false)
	ct := strings.Repeat("XY", 30)
	res, err := cipher.Decode(ct, cipher.ForwardMap{'a': "XY"}, 2)
	require.NoError(t, err)

	out := r.Decode("7", ct, 2, res)
	assert.Contains(t, out, strings.Repeat("XY", 10)+"\n")
	assert.NotContains(t, out, strings.Repeat("XY", 11))
}

func TestRenderer_MatrixFormatted(t *testing.T) {
	r := New(30, false)
	data := cipher.MatrixData{'b': strings.Repeat("ZZ", 20), 'a': strings.Repeat("XY", 20) + "X"}

	out := r.Matrix("7", cipher.MustParseAlphabet("ab"), data, 20, 2, false)
	assert.Contains(t, out, "Character matrix data (ID: 7) - Formatted")
	assert.Contains(t, out, "(Segment length: 2, spaces added between segments)")
	assert.Contains(t, out, "Character: 'a'")
	assert.Less(t, strings.Index(out, "Character: 'a'"), strings.Index(out, "Character: 'b'"))
	assert.Contains(t, out, "  XY XY XY")

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 60, "line too long: %q", line)
		if strings.HasPrefix(line, "  XY") {
			assert.LessOrEqual(t, len(line), 30, "segment line exceeds width: %q", line)
			assert.NotContains(t, line, "XYX ")
		}
	}
}

func TestRenderer_MatrixRawFallback(t *testing.T) {
	r := New(30, false)
	data := cipher.MatrixData{'a': strings.Repeat("XY", 20)}

	out := r.Matrix("7", cipher.MustParseAlphabet("a"), data, 20, 0, false)
	assert.Contains(t, out, "segment length not determined")
	assert.Contains(t, out, "- Raw")
	assert.Contains(t, out, "Encrypted Result (Raw):")
	assert.NotContains(t, out, "XY XY")

	explicit := r.Matrix("7", cipher.MustParseAlphabet("a"), data, 20, 2, true)
	assert.NotContains(t, explicit, "not determined")
	assert.Contains(t, explicit, "- Raw")
}

func TestOrderedChars(t *testing.T) {
	data := cipher.MatrixData{'z': "1", 'b': "2", 'a': "3", '!': "4"}
	got := orderedChars(data, cipher.MustParseAlphabet("ba"))
	assert.Equal(t, []rune{'b', 'a', '!', 'z'}, got)
}

func TestRenderer_CrossCheck(t *testing.T) {
	r := New(80, false)
	assert.Contains(t, r.CrossCheck(nil), "agrees")

	out := r.CrossCheck([]cipher.Mismatch{{Char: 'd', Kind: cipher.MismatchUnmapped}})
	assert.Contains(t, out, "1 disagreement(s)")
	assert.Contains(t, out, "no forward segment")
}

func TestRenderer_Failures(t *testing.T) {
	r := New(80, false)
	assert.Empty(t, r.Failures(nil))

	out := r.Failures([]cipher.QueryFailure{{Char: 'x', Err: assert.AnError}})
	assert.Contains(t, out, "1 queries failed")
	assert.Contains(t, out, `"x"`)
}

func TestStatusMarkdown(t *testing.T) {
	md := StatusMarkdown(Status{
		Identity:      "42",
		SegmentLength: 3,
		MappedChars:   70,
		AlphabetSize:  71,
		MatrixRows:    70,
		RepeatCount:   50,
		Mismatches:    2,
		DatabasePath:  ".probe/probe.db",
		Identities: []IdentityRow{
			{Identity: "42", SegmentLength: 3, Chars: 70, HasMatrix: true, CreatedAt: time.Unix(0, 0)},
		},
	})
	assert.Contains(t, md, "| Identity | `42` |")
	assert.Contains(t, md, "70/71 chars mapped")
	assert.Contains(t, md, "2 disagreement(s)")
	assert.Contains(t, md, "## Stored identities")
	assert.Contains(t, md, "Oracle cache: off")

	empty := StatusMarkdown(Status{})
	assert.Contains(t, empty, "No identity is active")
	assert.NotContains(t, empty, "Stored identities")
}

func TestRenderer_Status(t *testing.T) {
	r := New(80, false)
	out, err := r.Status(Status{Identity: "42", SegmentLength: 3, MappedChars: 1, AlphabetSize: 1})
	require.NoError(t, err)
	assert.Contains(t, out, "Session status")
	assert.Contains(t, out, "42")
}
