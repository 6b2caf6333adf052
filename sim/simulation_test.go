package sim

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/telemetry"
)

func newTestSim(t *testing.T, cfg *config.Config, seed int64) *Simulation {
	t.Helper()
	s, err := New(Options{Config: cfg, Seed: seed})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestColdStart(t *testing.T) {
	cfg := config.Default()
	cfg.Network.MinConnectionStrength = -0.5
	s := newTestSim(t, cfg, 7)

	state := s.Latest()
	if state.Tick != 0 || s.Tick() != 0 {
		t.Fatalf("tick = %d, want 0", state.Tick)
	}
	n := cfg.Network.NumNeurons
	if len(state.Neurons) != n {
		t.Fatalf("neurons = %d, want %d", len(state.Neurons), n)
	}
	for _, nr := range state.Neurons {
		if nr.Active || nr.Refractory != 0 || nr.Probability != cfg.Network.InitialProbability {
			t.Errorf("neuron %d not at rest: %+v", nr.ID, nr)
		}
		if nr.X < 0 || nr.X > float32(cfg.Screen.Width) || nr.Y < 0 || nr.Y > float32(cfg.Screen.Height) {
			t.Errorf("neuron %d outside layout: (%v, %v)", nr.ID, nr.X, nr.Y)
		}
	}
	if len(state.Connections) != n*(n-1) {
		t.Fatalf("connections = %d, want %d", len(state.Connections), n*(n-1))
	}
	for _, c := range state.Connections {
		if c.From == c.To {
			t.Errorf("self connection listed for %d", c.From)
		}
		if c.Strength < -0.5 || c.Strength > cfg.Network.MaxConnectionStrength {
			t.Errorf("strength %v outside [-0.5, %v]", c.Strength, cfg.Network.MaxConnectionStrength)
		}
	}
}

func TestProbabilitiesStayInBounds(t *testing.T) {
	cfg := config.Default()
	cfg.Network.ProbabilityIncrease = 0.5
	cfg.Network.ProbabilityDecrease = 0.5
	cfg.Network.ProbabilityThreshold = 0
	cfg.Modifiers.Noise.Strength = 0.8
	cfg.Modifiers.Feedback.Strength = 2
	s := newTestSim(t, cfg, 3)

	for tick := 0; tick < 500; tick++ {
		state := s.Advance()
		for _, n := range state.Neurons {
			if n.Probability < 0 || n.Probability > 1 {
				t.Fatalf("tick %d: neuron %d probability %v outside [0,1]", state.Tick, n.ID, n.Probability)
			}
		}
	}
}

func TestConnectionsStayInBounds(t *testing.T) {
	cfg := config.Default()
	cfg.Network.MinConnectionStrength = -0.5
	cfg.Network.MaxConnectionStrength = 0.5
	cfg.Network.ConnectionStrengthDelta = 0.3
	cfg.Modifiers.Learning.Rate = 5
	cfg.Modifiers.ExternalInput.Chance = 1
	cfg.Modifiers.ExternalInput.Rate = 0.5
	s := newTestSim(t, cfg, 11)

	for tick := 0; tick < 300; tick++ {
		state := s.Advance()
		for _, c := range state.Connections {
			if c.Strength < -0.5 || c.Strength > 0.5 {
				t.Fatalf("tick %d: w[%d][%d] = %v outside [-0.5, 0.5]", state.Tick, c.From, c.To, c.Strength)
			}
		}
	}
	for i := 0; i < cfg.Network.NumNeurons; i++ {
		if w := s.ctx.Connections.At(i, i); w != 0 {
			t.Errorf("self connection %d drifted to %v", i, w)
		}
	}
}

func TestRefractorySuppression(t *testing.T) {
	const period = 3

	cfg := config.Default()
	cfg.Network.InitialProbability = 0.9
	cfg.Modifiers.ExternalInput.Chance = 1
	cfg.Modifiers.ExternalInput.Rate = 1
	cfg.Modifiers.Refractory.Period = period
	s := newTestSim(t, cfg, 5)

	n := cfg.Network.NumNeurons
	lastFired := make([]int32, n)
	for i := range lastFired {
		lastFired[i] = -100
	}

	for tick := 0; tick < 300; tick++ {
		// Stimulating everyone every tick must not break suppression.
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		if err := s.Stimulate(ids...); err != nil {
			t.Fatal(err)
		}

		state := s.Advance()
		for _, nr := range state.Neurons {
			if !nr.Active {
				continue
			}
			if gap := state.Tick - lastFired[nr.ID]; gap <= period {
				t.Fatalf("neuron %d fired at %d, only %d ticks after %d", nr.ID, state.Tick, gap, lastFired[nr.ID])
			}
			lastFired[nr.ID] = state.Tick
		}
	}

	// With input forced every tick, each neuron fires again as soon as its window ends.
	for id, last := range lastFired {
		if last < 300-period-1 {
			t.Errorf("neuron %d last fired at %d, expected it to keep firing", id, last)
		}
	}
}

func TestDeterministicForSeed(t *testing.T) {
	a := newTestSim(t, nil, 42)
	b := newTestSim(t, nil, 42)
	c := newTestSim(t, nil, 43)

	if !reflect.DeepEqual(a.Latest(), b.Latest()) {
		t.Fatal("initial states differ for the same seed")
	}

	diverged := !reflect.DeepEqual(a.Latest(), c.Latest())
	for tick := 0; tick < 200; tick++ {
		sa, sb, sc := a.Advance(), b.Advance(), c.Advance()
		if !reflect.DeepEqual(sa, sb) {
			t.Fatalf("tick %d: states differ for the same seed", sa.Tick)
		}
		if !reflect.DeepEqual(sa, sc) {
			diverged = true
		}
	}
	if !diverged {
		t.Error("different seeds produced identical runs")
	}
}

func TestHomeostaticPull(t *testing.T) {
	cfg := config.Default()
	cfg.Network.NumNeurons = 3
	cfg.Network.MinConnectionStrength = 0
	cfg.Network.MaxConnectionStrength = 0
	cfg.Modifiers.ExternalInput.Enabled = false
	cfg.Modifiers.Noise.Enabled = false
	s := newTestSim(t, cfg, 1)
	s.ctx.Neurons.SetProbability(0, 1)

	const initial, rate = 0.1, 0.1
	prev := 1.0
	for k := 1; k <= 60; k++ {
		p := s.Advance().Neurons[0].Probability

		want := initial + (1-initial)*math.Pow(1-rate, float64(k))
		if math.Abs(p-want) > 1e-9 {
			t.Fatalf("tick %d: p = %v, want %v", k, p, want)
		}
		if p > prev {
			t.Fatalf("tick %d: p rose from %v to %v", k, prev, p)
		}
		prev = p

		if k >= 45 && math.Abs(p-initial) > 0.01 {
			t.Errorf("tick %d: p = %v not within 0.01 of %v", k, p, initial)
		}
	}
}

func TestSingleCoActivationReinforcement(t *testing.T) {
	cfg := config.Default()
	cfg.Network.NumNeurons = 5
	cfg.Network.InitialProbability = 0
	cfg.Modifiers.ExternalInput.Chance = 0
	cfg.Modifiers.Feedback.Enabled = false
	cfg.Modifiers.Inhibition.Enabled = false
	cfg.Modifiers.Learning.Enabled = false
	cfg.Modifiers.Noise.Enabled = false
	cfg.Modifiers.Mutation.Enabled = false
	s := newTestSim(t, cfg, 9)

	// Everything at MIN so the one-sided depression is a clamped no-op.
	min := cfg.Network.MinConnectionStrength
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			s.ctx.Connections.Set(i, j, min)
		}
	}
	s.ctx.Connections.Set(0, 1, 0.5)
	s.ctx.Connections.Set(1, 0, 0.5)

	if err := s.Stimulate(0, 1); err != nil {
		t.Fatal(err)
	}
	state := s.Advance()

	if state.ActiveCount() != 2 || !state.Neurons[0].Active || !state.Neurons[1].Active {
		t.Fatalf("expected exactly neurons 0 and 1 active, got %d active", state.ActiveCount())
	}
	for _, c := range state.Connections {
		want := min
		if (c.From == 0 && c.To == 1) || (c.From == 1 && c.To == 0) {
			want = 0.5 + cfg.Network.ConnectionStrengthDelta
		}
		if math.Abs(c.Strength-want) > 1e-9 {
			t.Errorf("w[%d][%d] = %v, want %v", c.From, c.To, c.Strength, want)
		}
	}
}

func TestConfigurationRejection(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"no neurons", func(c *config.Config) { c.Network.NumNeurons = 0 }, "network.num_neurons"},
		{"min above max", func(c *config.Config) {
			c.Network.MinConnectionStrength = 5
			c.Network.MaxConnectionStrength = -5
		}, "network.min_connection_strength"},
		{"probability above one", func(c *config.Config) { c.Network.InitialProbability = 1.5 }, "network.initial_probability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			s, err := New(Options{Config: cfg})
			if s != nil {
				t.Error("expected no simulation")
			}
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cerr *config.ConfigurationError
			if !errors.As(err, &cerr) || cerr.Field != tt.field {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestStimulateRejectsUnknownNeuron(t *testing.T) {
	cfg := config.Default()
	cfg.Modifiers.ExternalInput.Chance = 0
	cfg.Network.InitialProbability = 0
	s := newTestSim(t, cfg, 1)

	err := s.Stimulate(0, cfg.Network.NumNeurons)
	if !errors.Is(err, ErrUnknownNeuron) {
		t.Fatalf("expected ErrUnknownNeuron, got %v", err)
	}

	// The valid id in the rejected call was not queued either.
	if got := s.Advance().ActiveCount(); got != 0 {
		t.Errorf("active = %d, want 0", got)
	}
}

func TestStimulateRejectsWhenInputDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Modifiers.ExternalInput.Enabled = false
	cfg.Network.InitialProbability = 0
	s := newTestSim(t, cfg, 1)

	if err := s.Stimulate(3); !errors.Is(err, ErrInputDisabled) {
		t.Fatalf("expected ErrInputDisabled, got %v", err)
	}
	if s.Advance().Neurons[3].Active {
		t.Error("neuron 3 fired without any input")
	}
}

func TestNonFiniteConfigRejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		field  string
	}{
		{"NaN initial probability", func(c *config.Config) { c.Network.InitialProbability = math.NaN() }, "network.initial_probability"},
		{"NaN max strength", func(c *config.Config) { c.Network.MaxConnectionStrength = math.NaN() }, "network.max_connection_strength"},
		{"infinite min strength", func(c *config.Config) { c.Network.MinConnectionStrength = math.Inf(-1) }, "network.min_connection_strength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			s, err := New(Options{Config: cfg, Seed: 1})
			if err == nil {
				s.Close()
				t.Fatal("expected a configuration error")
			}
			var cfgErr *config.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *config.ConfigurationError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestStimuliApplyOnce(t *testing.T) {
	cfg := config.Default()
	cfg.Modifiers.ExternalInput.Chance = 0
	cfg.Modifiers.Refractory.Enabled = false
	cfg.Network.InitialProbability = 0
	cfg.Modifiers.Feedback.Enabled = false
	cfg.Modifiers.Noise.Enabled = false
	cfg.Modifiers.Probability.Enabled = false
	s := newTestSim(t, cfg, 1)

	if err := s.Stimulate(2); err != nil {
		t.Fatal(err)
	}
	if !s.Advance().Neurons[2].Active {
		t.Error("stimulated neuron should fire")
	}
	if s.Advance().Neurons[2].Active {
		t.Error("stimulus should not carry over to the next tick")
	}
}

func TestStateStrengthLookup(t *testing.T) {
	s := newTestSim(t, nil, 4)
	state := s.Latest()

	for _, c := range state.Connections {
		got, ok := state.Strength(c.From, c.To)
		if !ok || got != c.Strength {
			t.Fatalf("Strength(%d, %d) = %v, %v; want %v", c.From, c.To, got, ok, c.Strength)
		}
	}
	if _, ok := state.Strength(3, 3); ok {
		t.Error("self connection lookup should fail")
	}
	if _, ok := state.Strength(0, len(state.Neurons)); ok {
		t.Error("out of range lookup should fail")
	}
}

func TestLatestConcurrentReaders(t *testing.T) {
	s := newTestSim(t, nil, 8)

	var wg sync.WaitGroup
	done := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if st := s.Latest(); len(st.Neurons) != 25 {
					t.Errorf("reader saw %d neurons", len(st.Neurons))
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		s.Advance()
	}
	close(done)
	wg.Wait()

	if s.Latest().Tick != 100 {
		t.Errorf("latest tick = %d, want 100", s.Latest().Tick)
	}
}

func TestTelemetryOutput(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 10
	cfg.Bookmarks.Saturation.MeanProbability = 0 // fires on the first window

	outDir := filepath.Join(t.TempDir(), "out")
	snapDir := filepath.Join(t.TempDir(), "snapshots")

	var windows []telemetry.WindowStats
	s, err := New(Options{
		Config:      cfg,
		Seed:        2,
		OutputDir:   outDir,
		SnapshotDir: snapDir,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 35; i++ {
		s.Advance()
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(windows))
	}
	for i, w := range windows {
		if w.Ticks != 10 || w.WindowEndTick != int32((i+1)*10) {
			t.Errorf("window %d: ticks %d end %d", i, w.Ticks, w.WindowEndTick)
		}
		if w.Neurons != 25 {
			t.Errorf("window %d: neurons %d", i, w.Neurons)
		}
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv", "neurons.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 4 {
		t.Errorf("telemetry.csv has %d lines, want header + 3", len(lines))
	}

	snap, err := telemetry.LoadSnapshot(filepath.Join(snapDir, "snapshot_10_saturation.json"))
	if err != nil {
		t.Fatalf("saturation snapshot: %v", err)
	}
	if snap.RNGSeed != 2 || len(snap.Neurons) != 25 || len(snap.Connections) != 25*24 {
		t.Errorf("unexpected snapshot: seed %d, %d neurons, %d connections",
			snap.RNGSeed, len(snap.Neurons), len(snap.Connections))
	}
}
