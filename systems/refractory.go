package systems

import (
	"github.com/pthm-cable/neuronet/components"
	"github.com/pthm-cable/neuronet/config"
)

// Refractory starts a silent window for every neuron that fired this tick.
// The window is counted down by activation sampling.
type Refractory struct{}

func (Refractory) ID() string { return StageRefractory }

func (Refractory) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Refractory.Enabled
}

func (Refractory) Apply(ctx *Context) {
	period := ctx.Config.Modifiers.Refractory.Period
	if period <= 0 {
		return
	}

	ctx.Neurons.Each(func(_ int, act *components.Activation, ref *components.Refractory) {
		if act.Active {
			ref.Remaining = period
			ctx.Counters.RefractoryStarts++
		}
	})
}
