package systems

import (
	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
)

// ExternalInput forces neurons active from outside the network: first any
// stimuli queued by the host, then a random burst with probability chance.
type ExternalInput struct{}

func (ExternalInput) ID() string { return StageExternalInput }

func (ExternalInput) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.ExternalInput.Enabled
}

func (ExternalInput) Apply(ctx *Context) {
	for _, id := range ctx.Stimuli {
		stimulate(ctx, id)
	}

	ext := ctx.Config.Modifiers.ExternalInput
	if !ctx.RNG.Bool(ext.Chance) {
		return
	}

	n := ctx.Neurons.Len()
	k := int(float64(n) * ext.Rate)
	if k == 0 && ext.Rate > 0 {
		k = 1
	}
	for _, id := range neural.Sample(ctx.RNG, n, k) {
		stimulate(ctx, id)
	}
}

// stimulate activates neuron id unless it is out of range or refractory.
func stimulate(ctx *Context, id int) {
	if id < 0 || id >= ctx.Neurons.Len() {
		return
	}
	if ctx.Neurons.Refractory(id).InRefractory() || ctx.Neurons.Active(id) {
		return
	}
	ctx.Neurons.SetActive(id, true)
	ctx.Counters.ExternalActivations++
}
