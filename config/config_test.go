package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults failed: %v", err)
	}

	n := cfg.Network
	if n.NumNeurons != 25 {
		t.Errorf("num_neurons = %d, want 25", n.NumNeurons)
	}
	if n.InitialProbability != 0.1 {
		t.Errorf("initial_probability = %v, want 0.1", n.InitialProbability)
	}
	if n.MinConnectionStrength != 0 || n.MaxConnectionStrength != 1 {
		t.Errorf("strength range = [%v, %v], want [0, 1]", n.MinConnectionStrength, n.MaxConnectionStrength)
	}
	if n.ConnectionStrengthDelta != 0.1 {
		t.Errorf("connection_strength_delta = %v, want 0.1", n.ConnectionStrengthDelta)
	}
	if n.ProbabilityThreshold != 0.5 || n.ProbabilityIncrease != 0.1 || n.ProbabilityDecrease != 0.05 {
		t.Errorf("probability params = %v/%v/%v, want 0.5/0.1/0.05",
			n.ProbabilityThreshold, n.ProbabilityIncrease, n.ProbabilityDecrease)
	}
	if cfg.Screen.Width != 800 || cfg.Screen.Height != 600 {
		t.Errorf("screen = %dx%d, want 800x600", cfg.Screen.Width, cfg.Screen.Height)
	}
	if !cfg.Modifiers.Refractory.Enabled || cfg.Modifiers.Refractory.Period != 10 {
		t.Errorf("refractory = %+v, want enabled with period 10", cfg.Modifiers.Refractory)
	}
	if cfg.Telemetry.StatsWindow != 100 {
		t.Errorf("stats_window = %d, want 100", cfg.Telemetry.StatsWindow)
	}
}

func TestDefaultDoesNotPanic(t *testing.T) {
	cfg := Default()
	if cfg == nil {
		t.Fatal("Default returned nil")
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("network:\n  num_neurons: 40\nmodifiers:\n  noise:\n    enabled: false\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Network.NumNeurons != 40 {
		t.Errorf("num_neurons = %d, want 40", cfg.Network.NumNeurons)
	}
	if cfg.Network.InitialProbability != 0.1 {
		t.Errorf("initial_probability should keep default, got %v", cfg.Network.InitialProbability)
	}
	if cfg.Modifiers.Noise.Enabled {
		t.Error("noise should be disabled")
	}
	if cfg.Modifiers.Noise.Strength != 0.05 {
		t.Errorf("noise strength should keep default, got %v", cfg.Modifiers.Noise.Strength)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Error("missing file is an I/O error, not a configuration error")
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("network: [unclosed")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"inverted strength range", "network:\n  min_connection_strength: 5\n  max_connection_strength: -5\n", "network.min_connection_strength"},
		{"no neurons", "network:\n  num_neurons: 0\n", "network.num_neurons"},
		{"negative neurons", "network:\n  num_neurons: -3\n", "network.num_neurons"},
		{"initial probability above one", "network:\n  initial_probability: 1.5\n", "network.initial_probability"},
		{"threshold below zero", "network:\n  probability_threshold: -0.1\n", "network.probability_threshold"},
		{"negative delta", "network:\n  connection_strength_delta: -0.1\n", "network.connection_strength_delta"},
		{"negative increase", "network:\n  probability_increase: -1\n", "network.probability_increase"},
		{"negative decrease", "network:\n  probability_decrease: -1\n", "network.probability_decrease"},
		{"external chance above one", "modifiers:\n  external_input:\n    chance: 2\n", "modifiers.external_input.chance"},
		{"negative refractory", "modifiers:\n  refractory:\n    period: -1\n", "modifiers.refractory.period"},
		{"homeostasis rate above one", "modifiers:\n  homeostasis:\n    rate: 1.2\n", "modifiers.homeostasis.rate"},
		{"empty stats window", "telemetry:\n  stats_window: 0\n", "telemetry.stats_window"},
		{"NaN initial probability", "network:\n  initial_probability: .nan\n", "network.initial_probability"},
		{"NaN max strength", "network:\n  max_connection_strength: .nan\n", "network.max_connection_strength"},
		{"NaN min strength", "network:\n  min_connection_strength: .nan\n", "network.min_connection_strength"},
		{"infinite max strength", "network:\n  max_connection_strength: .inf\n", "network.max_connection_strength"},
		{"negative infinite min strength", "network:\n  min_connection_strength: -.inf\n", "network.min_connection_strength"},
		{"infinite increase", "network:\n  probability_increase: .inf\n", "network.probability_increase"},
		{"NaN threshold", "network:\n  probability_threshold: .nan\n", "network.probability_threshold"},
		{"NaN noise strength", "modifiers:\n  noise:\n    strength: .nan\n", "modifiers.noise.strength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected a configuration error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := Default().Clone()
	cfg.Network.NumNeurons = 0
	cfg.Network.InitialProbability = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	for _, field := range []string{"network.num_neurons", "network.initial_probability"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error %q should mention %s", msg, field)
		}
	}
}

func TestValidateAcceptsEqualBounds(t *testing.T) {
	cfg := Default().Clone()
	cfg.Network.MinConnectionStrength = 0.3
	cfg.Network.MaxConnectionStrength = 0.3
	if err := cfg.Validate(); err != nil {
		t.Errorf("MIN == MAX should be valid: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	base := Default()
	clone := base.Clone()
	clone.Network.NumNeurons = 3
	if base.Network.NumNeurons == 3 {
		t.Error("modifying the clone changed the original")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default().Clone()
	cfg.Network.NumNeurons = 12
	cfg.Modifiers.Learning.Enabled = false

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}
