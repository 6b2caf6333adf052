package systems

import (
	"github.com/pthm-cable/neuronet/config"
)

// Inhibition is the mirror of Feedback for negative connections: active
// neurons lower the probability of the neurons they inhibit.
type Inhibition struct{}

func (Inhibition) ID() string { return StageInhibition }

func (Inhibition) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Inhibition.Enabled
}

func (Inhibition) Apply(ctx *Context) {
	propagate(ctx, ctx.Config.Modifiers.Inhibition.Strength, func(w float64) bool { return w < 0 })
}
