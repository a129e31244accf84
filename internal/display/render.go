package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"cipherprobe/internal/cipher"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// DefaultWidth is the output width used when none is configured.
const DefaultWidth = 100

const blockIndent = 2

// Renderer turns session data into terminal text.
type Renderer struct {
	Width  int
	Color  bool
	Styles Styles
}

// New creates a renderer. color selects lipgloss colors and the glamour auto
// style; without it output is plain text.
func New(width int, color bool) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	styles := PlainStyles()
	if color {
		styles = DefaultStyles()
	}
	return &Renderer{Width: width, Color: color, Styles: styles}
}

func (r *Renderer) rule(n int) string {
	return r.Styles.Muted.Render(strings.Repeat("-", n))
}

// block hard-wraps s and indents every line.
func (r *Renderer) block(s string) string {
	return indent.String(wrap.String(s, r.Width-blockIndent), blockIndent)
}

// wordBlock wraps s on spaces without breaking words and indents every line.
func (r *Renderer) wordBlock(s string) string {
	return indent.String(wordwrap.String(s, r.Width-blockIndent), blockIndent)
}

// MapJSON dumps the forward map as indented JSON with sorted keys.
func MapJSON(forward cipher.ForwardMap) (string, error) {
	out := make(map[string]string, len(forward))
	for c, seg := range forward {
		out[string(c)] = seg
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("failed to encode map: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Map renders the current map with its identity and segment length.
func (r *Renderer) Map(identity string, segmentLength int, forward cipher.ForwardMap) (string, error) {
	body, err := MapJSON(forward)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(r.Styles.Title.Render("Current decryption map") + "\n")
	fmt.Fprintf(&b, "(Generated using ID: %s)\n", identity)
	fmt.Fprintf(&b, "(Detected segment length: %d)\n", segmentLength)
	b.WriteString(body + "\n")
	return b.String(), nil
}

// MapBuild summarizes a finished map build.
func (r *Renderer) MapBuild(res *cipher.MapResult, alphabetSize int) string {
	var b strings.Builder
	b.WriteString(r.Styles.OK.Render(fmt.Sprintf("Map generated for ID %s", res.Identity)) + "\n")
	fmt.Fprintf(&b, "Mapped %d/%d characters, segment length %d\n", len(res.Forward), alphabetSize, res.SegmentLength)
	b.WriteString(r.Failures(res.Failures))
	return b.String()
}

// MatrixBuild summarizes a finished matrix build.
func (r *Renderer) MatrixBuild(res *cipher.MatrixResult, alphabetSize int) string {
	var b strings.Builder
	b.WriteString(r.Styles.OK.Render(fmt.Sprintf("Matrix data generated for ID %s", res.Identity)) + "\n")
	fmt.Fprintf(&b, "Generated %d/%d characters, each repeated %d times\n", len(res.Data), alphabetSize, res.RepeatCount)
	b.WriteString(r.Failures(res.Failures))
	return b.String()
}

// Failures lists per-character query failures, or nothing when there are none.
func (r *Renderer) Failures(failures []cipher.QueryFailure) string {
	if len(failures) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(r.Styles.Warn.Render(fmt.Sprintf("Warning: %d queries failed", len(failures))) + "\n")
	for _, f := range failures {
		fmt.Fprintf(&b, "  %q: %v\n", string(f.Char), f.Err)
	}
	return b.String()
}

// Decode renders a decode result the way the interactive tool prints it.
func (r *Renderer) Decode(identity, ciphertext string, segmentLength int, res *cipher.DecodeResult) string {
	var b strings.Builder
	b.WriteString(r.Styles.Title.Render(fmt.Sprintf("Decrypting using map for ID: %s", identity)) + "\n")
	fmt.Fprintf(&b, "Encrypted text (length %d):\n", utf8.RuneCountInString(ciphertext))
	b.WriteString(wrap.String(ciphertext, r.Width) + "\n")
	fmt.Fprintf(&b, "Using segment length: %d\n", segmentLength)

	for _, w := range res.Warnings {
		b.WriteString(r.Styles.Warn.Render("  Warning: "+w.Message) + "\n")
	}
	for _, c := range res.Collisions {
		chars := make([]string, len(c.Chars))
		for i, ch := range c.Chars {
			chars[i] = fmt.Sprintf("%q", string(ch))
		}
		fmt.Fprintf(&b, "  %q <- %s\n", c.Segment, strings.Join(chars, ", "))
	}

	heading := "Decryption result"
	b.WriteString("\n" + r.Styles.Title.Render(heading) + "\n")
	fmt.Fprintf(&b, "Decrypted text: %s\n", r.Styles.Label.Render(res.Plaintext))
	if res.Unknown > 0 {
		fmt.Fprintf(&b, "(%d unknown segment(s) replaced with '%c')\n", res.Unknown, cipher.UnknownPlaceholder)
	}
	b.WriteString(r.rule(len(heading)) + "\n")
	return b.String()
}

// orderedChars returns the matrix characters in alphabet order, followed by
// any characters outside the alphabet in code point order.
func orderedChars(data cipher.MatrixData, alphabet cipher.Alphabet) []rune {
	seen := make(map[rune]bool, len(data))
	var out []rune
	for _, c := range alphabet {
		if _, ok := data[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var rest []rune
	for c := range data {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// Matrix renders matrix data. With a known segment length each ciphertext is
// split into space-separated windows; otherwise it is shown raw.
func (r *Renderer) Matrix(identity string, alphabet cipher.Alphabet, data cipher.MatrixData, repeatCount, segmentLength int, raw bool) string {
	var b strings.Builder

	formatted := !raw && segmentLength > 0
	if !raw && !formatted {
		b.WriteString(r.Styles.Warn.Render("Warning: encrypted segment length not determined or invalid.") + "\n")
		b.WriteString("Cannot format matrix output with spaces between segments.\n")
		b.WriteString("Build the map for the current ID first to determine the segment length.\n\n")
	}

	mode := "Raw"
	ruleWidth := 50
	if formatted {
		mode = "Formatted"
		ruleWidth = 60
	}
	b.WriteString(r.Styles.Title.Render(fmt.Sprintf("Character matrix data (ID: %s) - %s", identity, mode)) + "\n")
	fmt.Fprintf(&b, "(Shows encryption of char repeated %d times)\n", repeatCount)
	if formatted {
		fmt.Fprintf(&b, "(Segment length: %d, spaces added between segments)\n", segmentLength)
	}
	b.WriteString(r.rule(ruleWidth) + "\n")

	for _, c := range orderedChars(data, alphabet) {
		fmt.Fprintf(&b, "\nCharacter: %s\n", r.Styles.Label.Render(fmt.Sprintf("'%c'", c)))
		b.WriteString("Original String:\n")
		b.WriteString(r.block(strings.Repeat(string(c), repeatCount)) + "\n")
		if formatted {
			b.WriteString("Encrypted Result (Formatted):\n")
			b.WriteString(r.wordBlock(strings.Join(cipher.Segments(data[c], segmentLength), " ")) + "\n")
		} else {
			b.WriteString("Encrypted Result (Raw):\n")
			b.WriteString(r.block(data[c]) + "\n")
		}
		b.WriteString(r.rule(30) + "\n")
	}

	fmt.Fprintf(&b, "End of matrix data (%s)\n", strings.ToLower(mode))
	return b.String()
}

// CrossCheck reports disagreements between the matrix and the map.
func (r *Renderer) CrossCheck(mismatches []cipher.Mismatch) string {
	if len(mismatches) == 0 {
		return r.Styles.OK.Render("Cross-check: matrix agrees with the map") + "\n"
	}
	var b strings.Builder
	b.WriteString(r.Styles.Warn.Render(fmt.Sprintf("Cross-check: %d disagreement(s) between matrix and map", len(mismatches))) + "\n")
	for _, m := range mismatches {
		b.WriteString("  " + m.String() + "\n")
	}
	return b.String()
}
