package systems

import (
	"github.com/pthm-cable/neuronet/components"
	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
)

// Homeostasis pulls every probability a fraction rate of the way back to the
// configured initial probability.
type Homeostasis struct{}

func (Homeostasis) ID() string { return StageHomeostasis }

func (Homeostasis) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Homeostasis.Enabled
}

func (Homeostasis) Apply(ctx *Context) {
	target := ctx.Config.Network.InitialProbability
	rate := ctx.Config.Modifiers.Homeostasis.Rate

	ctx.Neurons.Each(func(_ int, act *components.Activation, _ *components.Refractory) {
		act.Probability = neural.Clamp01(act.Probability + rate*(target-act.Probability))
	})
}
