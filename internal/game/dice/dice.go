// Package dice provides the randomness abstraction used by the combat engine:
// a Source interface, a seeded reproducible implementation, a crypto-backed
// seed generator, and parsed dice expressions describing uniform ranges.
package dice

// Source is the randomness provider for every roll the engine makes.
//
// A Source owned by a single match need not be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a uniform value in [lo, hi] drawn from src.
//
// Precondition: lo <= hi.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		panic("dice: Between called with hi < lo")
	}
	return lo + src.Intn(hi-lo+1)
}

// Percent returns true with probability chance/100. Chances at or above 100
// always succeed and chances at or below 0 never do, but a value is drawn
// either way so the stream position does not depend on the chance.
func Percent(src Source, chance int) bool {
	return src.Intn(100) < chance
}
