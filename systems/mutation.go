package systems

import (
	"github.com/pthm-cable/neuronet/config"
)

// Mutation random-walks every connection strength by up to the plasticity delta.
type Mutation struct{}

func (Mutation) ID() string { return StageMutation }

func (Mutation) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Mutation.Enabled
}

func (Mutation) Apply(ctx *Context) {
	ctx.Connections.MutateRandom(ctx.RNG, ctx.Config.Network.ConnectionStrengthDelta)
}
