package neural

import (
	"gonum.org/v1/gonum/mat"
)

// ConnectionMatrix holds directed connection strengths between every pair
// of neurons. Entry (i, j) is the strength of the link from i to j.
// The diagonal is fixed at zero and never mutated.
type ConnectionMatrix struct {
	w   *mat.Dense
	min float64
	max float64
}

// NewConnectionMatrix creates an n×n matrix with every off-diagonal strength
// drawn uniformly from [min,max]. Draws happen in row-major order.
func NewConnectionMatrix(n int, min, max float64, src Source) *ConnectionMatrix {
	m := &ConnectionMatrix{
		w:   mat.NewDense(n, n, nil),
		min: min,
		max: max,
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			m.w.Set(i, j, Uniform(src, min, max))
		}
	}
	return m
}

// Len returns the number of neurons the matrix connects.
func (m *ConnectionMatrix) Len() int {
	r, _ := m.w.Dims()
	return r
}

// Min returns the lower strength bound.
func (m *ConnectionMatrix) Min() float64 { return m.min }

// Max returns the upper strength bound.
func (m *ConnectionMatrix) Max() float64 { return m.max }

// At returns the strength of the link from i to j.
func (m *ConnectionMatrix) At(i, j int) float64 {
	return m.w.At(i, j)
}

// Set stores a clamped strength for the link from i to j.
// Self pairs are ignored.
func (m *ConnectionMatrix) Set(i, j int, v float64) {
	if i == j {
		return
	}
	m.w.Set(i, j, clamp(v, m.min, m.max))
}

// Adjust adds delta to the link from i to j and clamps the result.
func (m *ConnectionMatrix) Adjust(i, j int, delta float64) {
	if i == j {
		return
	}
	m.w.Set(i, j, clamp(m.w.At(i, j)+delta, m.min, m.max))
}

// MutateRandom perturbs every link by a uniform draw in [-magnitude,+magnitude].
func (m *ConnectionMatrix) MutateRandom(src Source, magnitude float64) {
	n := m.Len()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			m.Adjust(i, j, Uniform(src, -magnitude, magnitude))
		}
	}
}

// Incoming returns a copy of the strengths of all links into j, indexed by source.
func (m *ConnectionMatrix) Incoming(j int) []float64 {
	return mat.Col(nil, j, m.w)
}

// Strengths returns all off-diagonal strengths in row-major order.
func (m *ConnectionMatrix) Strengths() []float64 {
	n := m.Len()
	out := make([]float64, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				out = append(out, m.w.At(i, j))
			}
		}
	}
	return out
}

// Clone returns an independent copy of the matrix.
func (m *ConnectionMatrix) Clone() *ConnectionMatrix {
	return &ConnectionMatrix{
		w:   mat.DenseCopyOf(m.w),
		min: m.min,
		max: m.max,
	}
}

// Equal reports whether both matrices hold identical strengths.
func (m *ConnectionMatrix) Equal(o *ConnectionMatrix) bool {
	return mat.Equal(m.w, o.w)
}
