// Package cipher recovers the behavior of a deterministic, fixed-width character
// substitution cipher that is only reachable as an encryption oracle.
//
// The Builder queries the oracle one character at a time to discover the segment
// length and the forward map (character → ciphertext segment). Decode inverts that
// map to turn oracle ciphertext back into plaintext. BuildMatrix queries long runs
// of a single repeated character so CrossCheck can verify the discovered segment
// boundaries. Session ties the three together under one active identity.
package cipher

import (
	"fmt"
	"strings"
)

// DefaultAlphabet is the character set mapped when no alphabet is configured.
const DefaultAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_.,;:?! "

// Alphabet is an ordered set of distinct characters. Order only decides the
// query sequence.
type Alphabet []rune

// ParseAlphabet builds an Alphabet from s, rejecting empty input and duplicates.
func ParseAlphabet(s string) (Alphabet, error) {
	if s == "" {
		return nil, fmt.Errorf("alphabet is empty")
	}
	seen := make(map[rune]int, len(s))
	alphabet := make(Alphabet, 0, len(s))
	for i, r := range []rune(s) {
		if prev, dup := seen[r]; dup {
			return nil, fmt.Errorf("alphabet has duplicate character %q at positions %d and %d", r, prev, i)
		}
		seen[r] = i
		alphabet = append(alphabet, r)
	}
	return alphabet, nil
}

// MustParseAlphabet is ParseAlphabet for compile-time constants.
func MustParseAlphabet(s string) Alphabet {
	a, err := ParseAlphabet(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the characters in query order.
func (a Alphabet) String() string {
	return string(a)
}

// Contains reports whether r is part of the alphabet.
func (a Alphabet) Contains(r rune) bool {
	return strings.ContainsRune(string(a), r)
}
