// Package neural holds the neuron population and its connection matrix.
package neural

import "math/rand/v2"

// Source supplies the uniform random draws consumed by the simulation.
// Every random decision in a tick goes through one Source so a seeded
// implementation reproduces a run exactly.
type Source interface {
	Float64() float64    // uniform in [0,1)
	Bool(p float64) bool // true with probability p
	IntN(n int) int      // uniform in [0,n)
}

// Rand is the default Source, backed by a PCG generator.
type Rand struct {
	r *rand.Rand
}

// NewSource creates a deterministic Source for the given seed.
func NewSource(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Float64 returns a uniform value in [0,1).
func (s *Rand) Float64() float64 {
	return s.r.Float64()
}

// Bool returns true with probability p. It always consumes exactly one draw.
func (s *Rand) Bool(p float64) bool {
	return s.r.Float64() < p
}

// IntN returns a uniform int in [0,n). Returns 0 when n <= 0.
func (s *Rand) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

// Uniform returns a value drawn uniformly from [lo,hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// Sample returns k distinct indices from [0,n) in draw order.
// k is capped at n.
func Sample(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: only the first k slots are shuffled.
	for i := 0; i < k; i++ {
		j := i + src.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// clamp limits v to [lo,hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
