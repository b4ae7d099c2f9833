// Package dice provides the randomness abstraction used for turn order and
// AI choices in the arena.
package dice

// Source is the randomness provider for shuffles and picks.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Shuffle permutes s in place with a Fisher–Yates shuffle driven by src.
//
// Precondition: src must be non-nil.
// Postcondition: s holds the same elements in a uniformly random order.
func Shuffle[T any](s []T, src Source) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// Pick shuffles a copy of s and pops its last element.
//
// Postcondition: Returns (element, true) for non-empty s, or (zero, false).
// s itself is not modified.
func Pick[T any](s []T, src Source) (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	shuffled := make([]T, len(s))
	copy(shuffled, s)
	Shuffle(shuffled, src)
	return shuffled[len(shuffled)-1], true
}
