package systems

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/neuronet/config"
)

// ProbabilityUpdate adjusts the probability of every neuron whose synaptic
// drive exceeded the threshold. The drive of neuron i is the mean incoming
// strength over the active presynaptic neurons. A crossed neuron that is
// firing becomes more likely to fire again; a crossed neuron that stayed
// silent becomes less likely.
type ProbabilityUpdate struct{}

func (ProbabilityUpdate) ID() string { return StageProbability }

func (ProbabilityUpdate) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Probability.Enabled
}

func (ProbabilityUpdate) Apply(ctx *Context) {
	net := ctx.Config.Network
	mask := ctx.Neurons.ActiveMask()
	activeCount := floats.Sum(mask)

	for i := range mask {
		presynaptic := activeCount - mask[i]
		if presynaptic == 0 {
			continue
		}
		// Incoming(i) has a zero on the diagonal, so i never drives itself.
		drive := floats.Dot(ctx.Connections.Incoming(i), mask) / presynaptic
		if drive <= net.ProbabilityThreshold {
			continue
		}

		ctx.Counters.ThresholdCrossings++
		if mask[i] == 1 {
			ctx.Neurons.AddProbability(i, ctx.Gain*net.ProbabilityIncrease)
		} else {
			ctx.Neurons.AddProbability(i, -ctx.Gain*net.ProbabilityDecrease)
		}
	}
}
