package cipher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cipherprobe/internal/logging"
)

// UnknownPlaceholder stands in for a segment missing from the reverse map.
const UnknownPlaceholder = '?'

// maxUnknownWarnings caps individual unknown-segment warnings per decode.
const maxUnknownWarnings = 5

// DecodeResult is the outcome of one Decode call.
type DecodeResult struct {
	Plaintext  string
	Unknown    int    // segments replaced with UnknownPlaceholder
	Discarded  string // trailing partial window, if any
	Warnings   []Warning
	Collisions []Collision
}

// Decode splits ciphertext into segmentLength-wide windows and maps each one
// back through the inverted forward map. Unknown windows become '?', a
// trailing partial window is dropped. The result depends only on the inputs.
func Decode(ciphertext string, forward ForwardMap, segmentLength int) (*DecodeResult, error) {
	if len(forward) == 0 {
		return nil, ErrNoMap
	}
	if segmentLength <= 0 {
		return nil, &InvalidSegmentLengthError{Length: segmentLength}
	}

	result := &DecodeResult{}

	reverse, collisions := forward.Invert()
	if len(collisions) > 0 {
		result.Collisions = collisions
		result.Warnings = append(result.Warnings, Warning{
			Kind: WarnAmbiguousMap,
			Message: fmt.Sprintf("duplicate encrypted values in map (%d distinct segments for %d characters); decryption might be ambiguous",
				len(reverse), len(forward)),
		})
	}

	total := utf8.RuneCountInString(ciphertext)
	if total%segmentLength != 0 {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarnTruncatedInput,
			Message: fmt.Sprintf("encrypted text length %d is not a multiple of segment length %d", total, segmentLength),
		})
	}

	windows, remainder := Split(ciphertext, segmentLength)

	var plain strings.Builder
	for _, seg := range windows {
		if c, ok := reverse[seg]; ok {
			plain.WriteRune(c)
			continue
		}
		plain.WriteRune(UnknownPlaceholder)
		switch {
		case result.Unknown < maxUnknownWarnings:
			result.Warnings = append(result.Warnings, Warning{
				Kind:    WarnUnknownSegment,
				Message: fmt.Sprintf("unknown encrypted segment %q", seg),
			})
		case result.Unknown == maxUnknownWarnings:
			result.Warnings = append(result.Warnings, Warning{
				Kind:    WarnUnknownSegment,
				Message: "further unknown segment warnings suppressed",
			})
		}
		result.Unknown++
	}

	if remainder != "" {
		result.Discarded = remainder
		result.Warnings = append(result.Warnings, Warning{
			Kind:    WarnTruncatedInput,
			Message: fmt.Sprintf("skipped trailing incomplete segment %q", remainder),
		})
	}

	result.Plaintext = plain.String()
	if result.Unknown > 0 || len(collisions) > 0 || remainder != "" {
		logging.DecoderWarn("%d/%d segments unknown, %d ambiguous entries, %d trailing chars dropped",
			result.Unknown, len(windows), len(collisions), utf8.RuneCountInString(remainder))
	}
	logging.DecoderDebug("Decoded %d windows into %d chars, %d unknown, discarded %d chars",
		len(windows), utf8.RuneCountInString(result.Plaintext), result.Unknown, utf8.RuneCountInString(remainder))
	return result, nil
}
