package neural

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/neuronet/components"
)

// Population stores the neurons as entities in an ECS world.
// Neuron i is always entities[i]; the mapping never changes because neurons
// are neither added nor removed after creation.
type Population struct {
	world  *ecs.World
	mapper *ecs.Map4[components.Neuron, components.Position, components.Activation, components.Refractory]
	filter *ecs.Filter3[components.Neuron, components.Activation, components.Refractory]

	actMap *ecs.Map[components.Activation]
	refMap *ecs.Map[components.Refractory]
	posMap *ecs.Map[components.Position]

	entities []ecs.Entity
}

// NewPopulation creates n inactive neurons at initialProbability, each placed
// at a random integer coordinate inside a width×height layout.
func NewPopulation(n int, initialProbability float64, width, height int, src Source) *Population {
	world := ecs.NewWorld()

	p := &Population{
		world:    world,
		mapper:   ecs.NewMap4[components.Neuron, components.Position, components.Activation, components.Refractory](world),
		filter:   ecs.NewFilter3[components.Neuron, components.Activation, components.Refractory](world),
		actMap:   ecs.NewMap[components.Activation](world),
		refMap:   ecs.NewMap[components.Refractory](world),
		posMap:   ecs.NewMap[components.Position](world),
		entities: make([]ecs.Entity, 0, n),
	}

	for i := 0; i < n; i++ {
		neuron := components.Neuron{ID: i}
		pos := components.Position{
			X: float32(src.IntN(width + 1)),
			Y: float32(src.IntN(height + 1)),
		}
		act := components.Activation{Probability: Clamp01(initialProbability)}
		ref := components.Refractory{}
		p.entities = append(p.entities, p.mapper.NewEntity(&neuron, &pos, &act, &ref))
	}

	return p
}

// Len returns the number of neurons.
func (p *Population) Len() int {
	return len(p.entities)
}

// Position returns the static layout position of neuron i.
func (p *Population) Position(i int) components.Position {
	return *p.posMap.Get(p.entities[i])
}

// Probability returns the activation probability of neuron i.
func (p *Population) Probability(i int) float64 {
	return p.actMap.Get(p.entities[i]).Probability
}

// SetProbability stores a probability for neuron i, clamped to [0,1].
func (p *Population) SetProbability(i int, v float64) {
	p.actMap.Get(p.entities[i]).Probability = Clamp01(v)
}

// AddProbability shifts the probability of neuron i by delta and clamps it.
func (p *Population) AddProbability(i int, delta float64) {
	act := p.actMap.Get(p.entities[i])
	act.Probability = Clamp01(act.Probability + delta)
}

// Active reports whether neuron i fired this tick.
func (p *Population) Active(i int) bool {
	return p.actMap.Get(p.entities[i]).Active
}

// SetActive sets the firing state of neuron i.
func (p *Population) SetActive(i int, active bool) {
	p.actMap.Get(p.entities[i]).Active = active
}

// Refractory returns the refractory state of neuron i.
func (p *Population) Refractory(i int) components.Refractory {
	return *p.refMap.Get(p.entities[i])
}

// SetRefractory sets the remaining refractory ticks of neuron i.
func (p *Population) SetRefractory(i int, ticks int) {
	if ticks < 0 {
		ticks = 0
	}
	p.refMap.Get(p.entities[i]).Remaining = ticks
}

// SampleActivation decides whether neuron i fires this tick.
// A neuron in its refractory window is forced inactive and the window shrinks
// by one tick; otherwise it fires when a uniform draw falls below its
// probability. Refractory neurons consume no draw.
func (p *Population) SampleActivation(i int, src Source) {
	e := p.entities[i]
	act := p.actMap.Get(e)
	ref := p.refMap.Get(e)

	if ref.Remaining > 0 {
		act.Active = false
		ref.Remaining--
		ref.Suppressed = true
		return
	}

	ref.Suppressed = false
	act.Active = src.Float64() < act.Probability
}

// ActiveMask returns 1 for every active neuron and 0 otherwise, indexed by id.
func (p *Population) ActiveMask() []float64 {
	mask := make([]float64, len(p.entities))
	p.Each(func(id int, act *components.Activation, _ *components.Refractory) {
		if act.Active {
			mask[id] = 1
		}
	})
	return mask
}

// ActiveCount returns the number of neurons firing this tick.
func (p *Population) ActiveCount() int {
	count := 0
	p.Each(func(_ int, act *components.Activation, _ *components.Refractory) {
		if act.Active {
			count++
		}
	})
	return count
}

// Probabilities returns every activation probability indexed by id.
func (p *Population) Probabilities() []float64 {
	out := make([]float64, len(p.entities))
	p.Each(func(id int, act *components.Activation, _ *components.Refractory) {
		out[id] = act.Probability
	})
	return out
}

// Each visits every neuron through an ECS query. Visiting order is not part
// of the contract, so callers that consume random draws iterate by index instead.
func (p *Population) Each(fn func(id int, act *components.Activation, ref *components.Refractory)) {
	query := p.filter.Query()
	for query.Next() {
		neuron, act, ref := query.Get()
		fn(neuron.ID, act, ref)
	}
}
