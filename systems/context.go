// Package systems implements the per-tick modifier pipeline.
package systems

import (
	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
)

// Context is the simulation state a tick operates on. The tick driver owns
// it and passes it by reference to every stage.
type Context struct {
	Tick        int32
	Config      *config.Config
	Neurons     *neural.Population
	Connections *neural.ConnectionMatrix
	RNG         neural.Source

	// Stimuli holds neuron ids queued by the host for the external input stage.
	Stimuli []int

	// Gain scales the probability update. Reset to 1 at the start of every tick.
	Gain float64

	Counters Counters
}

// Counters records what the stages did during one tick.
type Counters struct {
	Sampled              int // neurons that fired from their own probability
	RefractorySuppressed int // neurons forced silent by the refractory window
	ExternalActivations  int
	ThresholdCrossings   int
	Potentiated          int // links strengthened by plasticity
	Depressed            int // links weakened by plasticity
	RefractoryStarts     int
}

// activeFlags returns the firing state of every neuron, indexed by id.
func activeFlags(pop *neural.Population) []bool {
	flags := make([]bool, pop.Len())
	for i := range flags {
		flags[i] = pop.Active(i)
	}
	return flags
}

// SampleActivations draws the firing state of every neuron in id order.
// This runs before the pipeline each tick.
func SampleActivations(ctx *Context) {
	for i := 0; i < ctx.Neurons.Len(); i++ {
		ctx.Neurons.SampleActivation(i, ctx.RNG)
		if ctx.Neurons.Active(i) {
			ctx.Counters.Sampled++
		} else if ctx.Neurons.Refractory(i).Suppressed {
			ctx.Counters.RefractorySuppressed++
		}
	}
}
