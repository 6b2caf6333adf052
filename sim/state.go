package sim

// State is an immutable copy of the network after one tick. Renderers and
// other observers read it without touching the live simulation.
type State struct {
	Tick        int32         `json:"tick"`
	Gain        float64       `json:"gain"`
	Neurons     []NeuronState `json:"neurons"`
	Connections []Connection  `json:"connections"`
}

// NeuronState is one neuron as seen at the end of a tick.
type NeuronState struct {
	ID          int     `json:"id"`
	X           float32 `json:"x"`
	Y           float32 `json:"y"`
	Active      bool    `json:"active"`
	Probability float64 `json:"probability"`
	Refractory  int     `json:"refractory"` // remaining silent ticks
}

// Connection is one directed link. Self connections are never listed.
type Connection struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	Strength float64 `json:"strength"`
}

// ActiveCount returns the number of neurons that fired this tick.
func (s *State) ActiveCount() int {
	count := 0
	for _, n := range s.Neurons {
		if n.Active {
			count++
		}
	}
	return count
}

// Strength returns the strength of the link from → to. Connections are
// stored row-major with the diagonal skipped, so the lookup is O(1).
func (s *State) Strength(from, to int) (float64, bool) {
	n := len(s.Neurons)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return 0, false
	}
	col := to
	if to > from {
		col--
	}
	return s.Connections[from*(n-1)+col].Strength, true
}
