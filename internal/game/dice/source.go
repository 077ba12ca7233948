package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// SeededSource is a reproducible PCG-backed Source. Two sources built from the
// same seed produce identical streams.
//
// Not safe for concurrent use: every match owns its own SeededSource.
type SeededSource struct {
	seed uint64
	rng  *rand.Rand
}

// seedStream is the fixed second PCG word; only the caller's seed varies.
const seedStream = 0x9e3779b97f4a7c15

// NewSeededSource returns a Source whose stream is fully determined by seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{seed: seed, rng: rand.New(rand.NewPCG(seed, seedStream))}
}

// Seed returns the seed the source was built from.
func (s *SeededSource) Seed() uint64 { return s.seed }

// Intn returns a uniform int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// Uint64 returns the next raw 64-bit value; used to derive child seeds.
func (s *SeededSource) Uint64() uint64 {
	return s.rng.Uint64()
}

// Fork returns a new SeededSource seeded from the next value of s.
func (s *SeededSource) Fork() *SeededSource {
	return NewSeededSource(s.Uint64())
}

// NewSeed returns a high-entropy seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("dice: reading random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
