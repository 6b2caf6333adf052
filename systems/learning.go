package systems

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/neuronet/config"
)

// Learning is Hebbian reinforcement. It remembers how often each ordered pair
// has fired together and strengthens the link by a step that grows with that
// history: rate × delta × C/(C+1).
type Learning struct {
	coactivity *mat.Dense
}

// NewLearning creates the stage with zeroed co-activation counts.
func NewLearning(n int) *Learning {
	if n < 1 {
		n = 1
	}
	return &Learning{coactivity: mat.NewDense(n, n, nil)}
}

func (l *Learning) ID() string { return StageLearning }

func (l *Learning) Enabled(cfg *config.Config) bool {
	return cfg.Modifiers.Learning.Enabled
}

func (l *Learning) Apply(ctx *Context) {
	step := ctx.Config.Modifiers.Learning.Rate * ctx.Config.Network.ConnectionStrengthDelta
	active := activeFlags(ctx.Neurons)
	n := len(active)

	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		for j := 0; j < n; j++ {
			if i == j || !active[j] {
				continue
			}
			c := l.coactivity.At(i, j) + 1
			l.coactivity.Set(i, j, c)
			ctx.Connections.Adjust(i, j, step*c/(c+1))
		}
	}
}

// Coactivity returns how many ticks neurons i and j have fired together
// while learning was enabled.
func (l *Learning) Coactivity(i, j int) int {
	return int(l.coactivity.At(i, j))
}
