package model

// Symbol is one glyph of a memorised sequence
type Symbol string

// Bounds on the length of a judge-issued sequence
const (
	MinSequenceLength = 3
	MaxSequenceLength = 7
)

// Alphabet is the fixed set of symbols sequences are drawn from
var Alphabet = []Symbol{"★", "●", "♥", "■", "▲", "◆", "☀", "☂"}

// IsValid reports whether s belongs to the alphabet
func (s Symbol) IsValid() bool {
	for _, a := range Alphabet {
		if a == s {
			return true
		}
	}
	return false
}

// SequencesEqual reports whether two sequences have the same length and
// match element-wise
func SequencesEqual(a, b []Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
