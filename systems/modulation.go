package systems

import (
	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
)

// Modulation maintains a slowly drifting gain, a stand-in for a global
// neuromodulator. Each tick the gain moves a fraction rate toward a target
// drawn from [1-strength, 1+strength).
type Modulation struct {
	gain float64
}

// NewModulation creates the stage with a neutral gain of 1.
func NewModulation() *Modulation {
	return &Modulation{gain: 1}
}

func (m *Modulation) ID() string { return StageModulation }

func (m *Modulation) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Modulation.Enabled
}

func (m *Modulation) Apply(ctx *Context) {
	mod := ctx.Config.Modifiers.Modulation
	target := 1 + neural.Uniform(ctx.RNG, -mod.Strength, mod.Strength)
	m.gain += mod.Rate * (target - m.gain)
	// A negative gain would invert the probability update.
	if m.gain < 0 {
		m.gain = 0
	}
	ctx.Gain = m.gain
}

// Gain returns the current gain.
func (m *Modulation) Gain() float64 {
	return m.gain
}
