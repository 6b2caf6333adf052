package systems

import (
	"math"

	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
)

// newTestContext builds a context for n inactive neurons with every stage
// disabled and every off-diagonal connection set to w.
func newTestContext(n int, w float64) *Context {
	cfg := config.Default()
	cfg.Network.NumNeurons = n
	cfg.Network.MinConnectionStrength = -1
	cfg.Network.MaxConnectionStrength = 1
	disableAll(cfg)

	src := neural.NewSource(1)
	pop := neural.NewPopulation(n, cfg.Network.InitialProbability, 10, 10, src)
	conns := neural.NewConnectionMatrix(n, -1, 1, src)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			conns.Set(i, j, w)
		}
	}

	return &Context{
		Config:      cfg,
		Neurons:     pop,
		Connections: conns,
		RNG:         src,
		Gain:        1,
	}
}

func disableAll(cfg *config.Config) {
	m := &cfg.Modifiers
	m.ExternalInput.Enabled = false
	m.Feedback.Enabled = false
	m.Inhibition.Enabled = false
	m.Plasticity.Enabled = false
	m.Learning.Enabled = false
	m.Modulation.Enabled = false
	m.Probability.Enabled = false
	m.Homeostasis.Enabled = false
	m.Refractory.Enabled = false
	m.Noise.Enabled = false
	m.Mutation.Enabled = false
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
