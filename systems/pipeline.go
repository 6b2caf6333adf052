package systems

import (
	"github.com/pthm-cable/neuronet/config"
)

// Stage is one modifier rule of the pipeline.
type Stage interface {
	ID() string
	Enabled(cfg *config.Config) bool
	Apply(ctx *Context)
}

// PhaseTimer receives the stage ID as each stage starts.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Pipeline applies the modifier stages in their fixed order.
// Later stages read activation and probability state written by earlier
// ones within the same tick, so the order must not change.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates the standard eleven-stage pipeline for n neurons.
func NewPipeline(n int) *Pipeline {
	return &Pipeline{
		stages: []Stage{
			ExternalInput{},
			Feedback{},
			Inhibition{},
			Plasticity{},
			NewLearning(n),
			NewModulation(),
			ProbabilityUpdate{},
			Homeostasis{},
			Refractory{},
			Noise{},
			Mutation{},
		},
	}
}

// Run applies every enabled stage once. Disabled stages are still reported
// to the timer so phase breakdowns line up across runs.
func (p *Pipeline) Run(ctx *Context, timer PhaseTimer) {
	ctx.Gain = 1

	for _, stage := range p.stages {
		if timer != nil {
			timer.StartPhase(stage.ID())
		}
		if stage.Enabled(ctx.Config) {
			stage.Apply(ctx)
		}
	}
}

// IDs returns the stage IDs in execution order.
func (p *Pipeline) IDs() []string {
	ids := make([]string, len(p.stages))
	for i, s := range p.stages {
		ids[i] = s.ID()
	}
	return ids
}
