// Package sim drives the neuron population one tick at a time.
package sim

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/neural"
	"github.com/pthm-cable/neuronet/systems"
	"github.com/pthm-cable/neuronet/telemetry"
)

var (
	// ErrUnknownNeuron is returned when a neuron id is outside [0, N).
	ErrUnknownNeuron = errors.New("unknown neuron")
	// ErrInputDisabled is returned by Stimulate when the external input stage is off.
	ErrInputDisabled = errors.New("external input stage disabled")
)

// Options configures simulation creation.
type Options struct {
	Config        *config.Config // nil uses the embedded defaults
	Seed          int64
	LogStats      bool   // log window stats and bookmarks via slog
	OutputDir     string // CSV output directory; empty disables
	SnapshotDir   string // snapshot directory for bookmarks; empty disables
	StatsCallback func(telemetry.WindowStats)
}

// Simulation owns the network and advances it. It is driven from a single
// goroutine; Latest may be called from any goroutine.
type Simulation struct {
	cfg      *config.Config
	seed     int64
	ctx      *systems.Context
	pipeline *systems.Pipeline

	tick    int32
	pending []int // stimuli queued for the next tick
	latest  atomic.Pointer[State]

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	firing           *telemetry.FiringTracker
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
}

// New validates the configuration and builds a network at tick 0: every
// neuron inactive at the initial probability, every connection drawn
// uniformly from [MIN, MAX].
func New(opts Options) (*Simulation, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// The caller keeps its copy; ours never changes.
	cfg = cfg.Clone()

	net := cfg.Network
	src := neural.NewSource(opts.Seed)
	pop := neural.NewPopulation(net.NumNeurons, net.InitialProbability, cfg.Screen.Width, cfg.Screen.Height, src)
	conns := neural.NewConnectionMatrix(net.NumNeurons, net.MinConnectionStrength, net.MaxConnectionStrength, src)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("output: %w", err)
	}

	s := &Simulation{
		cfg:  cfg,
		seed: opts.Seed,
		ctx: &systems.Context{
			Config:      cfg,
			Neurons:     pop,
			Connections: conns,
			RNG:         src,
			Gain:        1,
		},
		pipeline: systems.NewPipeline(net.NumNeurons),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		firing:           telemetry.NewFiringTracker(net.NumNeurons),
		outputManager:    om,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
	}
	s.latest.Store(s.buildState())

	return s, nil
}

// Advance runs one tick: activation sampling, then every pipeline stage in
// order. It returns the resulting State, which is also published to Latest.
func (s *Simulation) Advance() *State {
	s.perfCollector.StartTick()

	s.tick++
	s.ctx.Tick = s.tick
	s.ctx.Counters = systems.Counters{}
	s.ctx.Stimuli, s.pending = s.pending, nil

	s.perfCollector.StartPhase(systems.StageSample)
	systems.SampleActivations(s.ctx)
	s.pipeline.Run(s.ctx, s.perfCollector)
	s.ctx.Stimuli = nil

	s.perfCollector.StartPhase(telemetry.PhaseSnapshot)
	state := s.buildState()
	s.latest.Store(state)

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.recordTelemetry(state)

	s.perfCollector.EndTick()
	return state
}

// Stimulate queues neurons to be forced active by the external input stage
// of the next tick. Neurons that are refractory at that point stay silent.
// Nothing is queued if any id is out of range or if the external input stage
// is disabled, since no stage would ever apply the stimulus.
func (s *Simulation) Stimulate(ids ...int) error {
	if !s.cfg.Modifiers.ExternalInput.Enabled {
		return ErrInputDisabled
	}
	n := s.ctx.Neurons.Len()
	for _, id := range ids {
		if id < 0 || id >= n {
			return fmt.Errorf("stimulate %d: %w", id, ErrUnknownNeuron)
		}
	}
	s.pending = append(s.pending, ids...)
	return nil
}

// Latest returns the most recently published State. Safe for concurrent use.
func (s *Simulation) Latest() *State {
	return s.latest.Load()
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Seed returns the seed the simulation was created with.
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Config returns the validated configuration in use. Callers must not modify it.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Close writes the per-neuron summary and closes telemetry output.
func (s *Simulation) Close() error {
	if s.outputManager == nil {
		return nil
	}
	werr := s.outputManager.WriteNeurons(s.firing, s.ctx.Neurons.Probabilities(), s.tick)
	cerr := s.outputManager.Close()
	s.outputManager = nil
	return errors.Join(werr, cerr)
}

// buildState copies the live network into a fresh State.
func (s *Simulation) buildState() *State {
	pop := s.ctx.Neurons
	n := pop.Len()

	state := &State{
		Tick:        s.tick,
		Gain:        s.ctx.Gain,
		Neurons:     make([]NeuronState, n),
		Connections: make([]Connection, 0, n*(n-1)),
	}

	for i := 0; i < n; i++ {
		pos := pop.Position(i)
		state.Neurons[i] = NeuronState{
			ID:          i,
			X:           pos.X,
			Y:           pos.Y,
			Active:      pop.Active(i),
			Probability: pop.Probability(i),
			Refractory:  pop.Refractory(i).Remaining,
		}
	}

	strengths := s.ctx.Connections.Strengths()
	k := 0
	for from := 0; from < n; from++ {
		for to := 0; to < n; to++ {
			if from == to {
				continue
			}
			state.Connections = append(state.Connections, Connection{From: from, To: to, Strength: strengths[k]})
			k++
		}
	}

	return state
}
