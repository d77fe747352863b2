package random

import (
	"crypto/rand"
	"encoding/binary"
)

// Random is the source of randomness for generated room ids and round
// sequences. Tests swap in a scripted implementation.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given
	// alphabet. The alphabet is read as runes, so symbol alphabets work.
	String(length int, alphabet string) string
}

// CryptoRandom draws from crypto/rand so a player cannot predict the next
// sequence from the ones already shown
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a uniformly distributed int in [0, n), or 0 when n <= 0
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := uint64(n)
	// Reject draws from the final partial block to avoid modulo bias
	limit := ^uint64(0) - (^uint64(0) % bound)
	var buf [8]byte
	for {
		// crypto/rand.Read never fails on supported platforms
		_, _ = rand.Read(buf[:])
		v := binary.LittleEndian.Uint64(buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	symbols := []rune(alphabet)
	if length <= 0 || len(symbols) == 0 {
		return ""
	}
	out := make([]rune, length)
	for i := range out {
		out[i] = symbols[r.Intn(len(symbols))]
	}
	return string(out)
}
