package components

// Position is a neuron's layout coordinate, assigned once at creation.
// Only the renderer reads it.
type Position struct {
	X, Y float32
}
