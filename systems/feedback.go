package systems

import (
	"github.com/pthm-cable/neuronet/config"
)

// Feedback lets every active neuron raise the probability of the neurons it
// excites, in proportion to the connection strength.
type Feedback struct{}

func (Feedback) ID() string { return StageFeedback }

func (Feedback) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Feedback.Enabled
}

func (Feedback) Apply(ctx *Context) {
	propagate(ctx, ctx.Config.Modifiers.Feedback.Strength, func(w float64) bool { return w > 0 })
}

// propagate adds strength*w[j][i] to p[i] for every active j and every
// target i whose weight passes keep. Sources and targets are visited in id
// order so the floating point sums are reproducible.
func propagate(ctx *Context, strength float64, keep func(w float64) bool) {
	active := activeFlags(ctx.Neurons)
	n := len(active)

	for j := 0; j < n; j++ {
		if !active[j] {
			continue
		}
		for i := 0; i < n; i++ {
			if i == j {
				continue
			}
			if w := ctx.Connections.At(j, i); keep(w) {
				ctx.Neurons.AddProbability(i, strength*w)
			}
		}
	}
}
