package sim

import "iter"

// Pairings yields every unordered pair (i, j) with 0 <= i < j < n, in
// lexicographic order.
func Pairings(n int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if !yield(i, j) {
					return
				}
			}
		}
	}
}

// PairCount returns how many pairs Pairings(n) yields.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
