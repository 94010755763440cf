// Package entropy provides the random sources injected into generation and
// the disaster engine. Seeded sources make runs reproducible; seed 0 draws a
// seed from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source is the randomness the simulation consumes.
// *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
	Int63() int64
}

// New returns a source seeded with seed, or with a crypto-random seed when
// seed is 0. The seed actually used is returned so runs can be replayed.
func New(seed int64) (*mrand.Rand, int64) {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mrand.New(mrand.NewSource(seed)), seed
}

// CryptoSeed returns a non-zero seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed odd seed.
		return 0x5eed
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// Scripted replays fixed values, then repeats the last one. Used to pin
// random choices in tests and replays.
type Scripted struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[min(s.fi, len(s.Floats)-1)]
	s.fi++
	return v
}

// Intn returns the next scripted int reduced modulo n.
func (s *Scripted) Intn(n int) int {
	if n <= 0 {
		panic("entropy: Intn with non-positive n")
	}
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[min(s.ii, len(s.Ints)-1)]
	s.ii++
	return ((v % n) + n) % n
}

func (s *Scripted) Int63() int64 {
	return int64(s.Intn(1 << 30))
}
