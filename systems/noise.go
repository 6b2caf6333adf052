package systems

import (
	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
)

// Noise jitters every probability by a uniform draw in [-strength, strength).
type Noise struct{}

func (Noise) ID() string { return StageNoise }

func (Noise) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Noise.Enabled
}

func (Noise) Apply(ctx *Context) {
	s := ctx.Config.Modifiers.Noise.Strength
	// Index order: each neuron consumes exactly one draw.
	for i := 0; i < ctx.Neurons.Len(); i++ {
		ctx.Neurons.AddProbability(i, neural.Uniform(ctx.RNG, -s, s))
	}
}
