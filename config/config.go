// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
// It is validated once by Load and must not be mutated afterwards.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Network   NetworkConfig   `yaml:"network"`
	Modifiers ModifiersConfig `yaml:"modifiers"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`
}

// ScreenConfig holds the layout size used to place neurons.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// NetworkConfig holds the population and connection constants.
type NetworkConfig struct {
	NumNeurons              int     `yaml:"num_neurons"`
	InitialProbability      float64 `yaml:"initial_probability"`
	MaxConnectionStrength   float64 `yaml:"max_connection_strength"`
	MinConnectionStrength   float64 `yaml:"min_connection_strength"`
	ConnectionStrengthDelta float64 `yaml:"connection_strength_delta"` // plasticity step and mutation magnitude
	ProbabilityThreshold    float64 `yaml:"probability_threshold"`     // drive needed before the probability update applies
	ProbabilityIncrease     float64 `yaml:"probability_increase"`
	ProbabilityDecrease     float64 `yaml:"probability_decrease"`
}

// ModifiersConfig holds per-stage parameters, in pipeline order.
type ModifiersConfig struct {
	ExternalInput ExternalInputConfig `yaml:"external_input"`
	Feedback      StrengthConfig      `yaml:"feedback"`
	Inhibition    StrengthConfig      `yaml:"inhibition"`
	Plasticity    ToggleConfig        `yaml:"plasticity"`
	Learning      LearningConfig      `yaml:"learning"`
	Modulation    ModulationConfig    `yaml:"modulation"`
	Probability   ToggleConfig        `yaml:"probability"`
	Homeostasis   HomeostasisConfig   `yaml:"homeostasis"`
	Refractory    RefractoryConfig    `yaml:"refractory"`
	Noise         StrengthConfig      `yaml:"noise"`
	Mutation      ToggleConfig        `yaml:"mutation"`
}

// ToggleConfig is a stage with no parameters beyond its switch.
type ToggleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StrengthConfig is a stage scaled by a single strength.
type StrengthConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float64 `yaml:"strength"`
}

// ExternalInputConfig holds exogenous stimulation parameters.
type ExternalInputConfig struct {
	Enabled bool    `yaml:"enabled"`
	Chance  float64 `yaml:"chance"` // probability per tick that a stimulus arrives
	Rate    float64 `yaml:"rate"`   // fraction of neurons activated by a stimulus
}

// LearningConfig holds Hebbian learning parameters.
type LearningConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"` // fraction of connection_strength_delta added per co-activation
}

// ModulationConfig holds neuromodulator gain parameters.
type ModulationConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float64 `yaml:"strength"` // max deviation of the gain target from 1
	Rate     float64 `yaml:"rate"`     // how quickly the gain follows its target
}

// HomeostasisConfig holds the pull toward the baseline probability.
type HomeostasisConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate"`
}

// RefractoryConfig holds the post-activation silence window.
type RefractoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Period  int  `yaml:"period"` // ticks
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // ticks per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	Burst          BurstConfig          `yaml:"burst"`
	Quiescence     QuiescenceConfig     `yaml:"quiescence"`
	Saturation     SaturationConfig     `yaml:"saturation"`
	StableActivity StableActivityConfig `yaml:"stable_activity"`
}

// BurstConfig holds burst detection parameters.
type BurstConfig struct {
	Multiplier     float64 `yaml:"multiplier"`
	MinActivations int     `yaml:"min_activations"`
}

// QuiescenceConfig holds quiescence detection parameters.
type QuiescenceConfig struct {
	MinPriorActivations int `yaml:"min_prior_activations"`
}

// SaturationConfig holds saturation detection parameters.
type SaturationConfig struct {
	MeanProbability float64 `yaml:"mean_probability"`
}

// StableActivityConfig holds stable activity detection parameters.
type StableActivityConfig struct {
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// and validates the result. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse merges the given YAML over the embedded defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a copy of the configuration that can be modified and re-validated.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
