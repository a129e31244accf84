package cipher

import "unicode/utf8"

// segmentModel tracks the provisional segment length during one map build.
// The first observed ciphertext fixes the length; every later one must match.
type segmentModel struct {
	identity string
	length   int
	set      bool
}

func (m *segmentModel) observe(char rune, ciphertext string) error {
	n := utf8.RuneCountInString(ciphertext)
	if !m.set {
		m.length = n
		m.set = true
		return nil
	}
	if n != m.length {
		return &InconsistentSegmentLengthError{
			Identity: m.identity,
			Expected: m.length,
			Got:      n,
			Char:     char,
		}
	}
	return nil
}

// Split cuts ciphertext into consecutive, non-overlapping windows of length
// characters, left to right. A trailing window shorter than length is returned
// as remainder and is not part of windows. For a non-positive length everything
// is remainder.
func Split(ciphertext string, length int) (windows []string, remainder string) {
	if length <= 0 {
		return nil, ciphertext
	}
	runes := []rune(ciphertext)
	full := len(runes) / length
	windows = make([]string, 0, full)
	for i := 0; i < full; i++ {
		windows = append(windows, string(runes[i*length:(i+1)*length]))
	}
	return windows, string(runes[full*length:])
}

// Segments returns the full windows of ciphertext, dropping a trailing partial one.
func Segments(ciphertext string, length int) []string {
	windows, _ := Split(ciphertext, length)
	return windows
}
