package cipher

import "sort"

// ForwardMap maps a plaintext character to its ciphertext segment.
type ForwardMap map[rune]string

// ReverseMap maps a ciphertext segment back to a plaintext character.
type ReverseMap map[string]rune

// Collision is a segment produced by more than one character.
type Collision struct {
	Segment string
	Chars   []rune
}

// Chars returns the mapped characters in ascending order.
func (f ForwardMap) Chars() []rune {
	chars := make([]rune, 0, len(f))
	for c := range f {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return chars
}

// Clone returns an independent copy.
func (f ForwardMap) Clone() ForwardMap {
	if f == nil {
		return nil
	}
	out := make(ForwardMap, len(f))
	for c, seg := range f {
		out[c] = seg
	}
	return out
}

// Invert builds the reverse map and reports every segment shared by two or
// more characters. A shared segment resolves to the lowest code point among
// its characters.
func (f ForwardMap) Invert() (ReverseMap, []Collision) {
	reverse := make(ReverseMap, len(f))
	groups := make(map[string][]rune)
	for _, c := range f.Chars() {
		seg := f[c]
		if _, taken := reverse[seg]; !taken {
			reverse[seg] = c
		}
		groups[seg] = append(groups[seg], c)
	}

	var collisions []Collision
	for seg, chars := range groups {
		if len(chars) > 1 {
			collisions = append(collisions, Collision{Segment: seg, Chars: chars})
		}
	}
	sort.Slice(collisions, func(i, j int) bool { return collisions[i].Segment < collisions[j].Segment })
	return reverse, collisions
}
