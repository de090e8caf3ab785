// Package rng provides the single randomness abstraction for the simulation.
// Every roll in the engine (hit checks, damage, wander direction, errand
// chances) is routed through a Source so that scenario tests can run against
// a deterministic seed.
package rng

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a uniform random int in [min, max] inclusive.
//
// Precondition: src must be non-nil; max >= min.
// Postcondition: min <= result <= max.
func Between(src Source, min, max int) int {
	if max < min {
		panic("rng: Between called with max < min")
	}
	if max == min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Chance draws a uniform value and reports whether it falls under p.
// p is a probability in [0, 1]; values outside that range clamp.
//
// Precondition: src must be non-nil.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	// 1e6 buckets is plenty of resolution for the chances the tables use.
	return src.Intn(1_000_000) < int(p*1_000_000)
}
