package systems

import (
	"github.com/pthm-cable/neuronet/config"
)

// Plasticity strengthens links between co-active neurons and weakens links
// where only one endpoint fired. Links between two silent neurons are untouched.
type Plasticity struct{}

func (Plasticity) ID() string { return StagePlasticity }

func (Plasticity) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Plasticity.Enabled
}

func (Plasticity) Apply(ctx *Context) {
	delta := ctx.Config.Network.ConnectionStrengthDelta
	active := activeFlags(ctx.Neurons)
	n := len(active)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			switch {
			case active[i] && active[j]:
				ctx.Connections.Adjust(i, j, delta)
				ctx.Counters.Potentiated++
			case active[i] != active[j]:
				ctx.Connections.Adjust(i, j, -delta)
				ctx.Counters.Depressed++
			}
		}
	}
}
