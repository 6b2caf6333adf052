// Package components defines ECS components for the neuron population.
package components

// Neuron identifies a neuron by its stable index into the connection matrix.
type Neuron struct {
	ID int
}

// Activation holds the stochastic firing state of a neuron.
type Activation struct {
	Probability float64 // likelihood of firing on a tick, always in [0,1]
	Active      bool    // sampled (or forced) firing state for the current tick
}

// Refractory suppresses firing for a number of ticks after activation.
type Refractory struct {
	Remaining  int  // ticks left in which the neuron is forced inactive
	Suppressed bool // true when this tick's sample was skipped because of the refractory window
}

// InRefractory reports whether the neuron may not fire this tick.
func (r Refractory) InRefractory() bool {
	return r.Remaining > 0 || r.Suppressed
}
