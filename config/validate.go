package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every ConfigurationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigurationError reports a static parameter that cannot start a simulation.
type ConfigurationError struct {
	Field  string // yaml path of the offending value
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Unwrap lets callers match any configuration error with errors.Is(err, ErrInvalidConfig).
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate checks every constraint and returns all violations joined together,
// or nil if the configuration is usable.
func (c *Config) Validate() error {
	v := &validator{}

	v.min("screen.width", float64(c.Screen.Width), 0)
	v.min("screen.height", float64(c.Screen.Height), 0)

	n := c.Network
	if n.NumNeurons < 1 {
		v.fail("network.num_neurons", fmt.Sprintf("must be at least 1, got %d", n.NumNeurons))
	}
	v.unit("network.initial_probability", n.InitialProbability)
	minOK := v.finite("network.min_connection_strength", n.MinConnectionStrength)
	maxOK := v.finite("network.max_connection_strength", n.MaxConnectionStrength)
	if minOK && maxOK && n.MinConnectionStrength > n.MaxConnectionStrength {
		v.fail("network.min_connection_strength",
			fmt.Sprintf("must not exceed max_connection_strength (%g > %g)", n.MinConnectionStrength, n.MaxConnectionStrength))
	}
	v.min("network.connection_strength_delta", n.ConnectionStrengthDelta, 0)
	v.unit("network.probability_threshold", n.ProbabilityThreshold)
	v.min("network.probability_increase", n.ProbabilityIncrease, 0)
	v.min("network.probability_decrease", n.ProbabilityDecrease, 0)

	m := c.Modifiers
	v.unit("modifiers.external_input.chance", m.ExternalInput.Chance)
	v.unit("modifiers.external_input.rate", m.ExternalInput.Rate)
	v.min("modifiers.feedback.strength", m.Feedback.Strength, 0)
	v.min("modifiers.inhibition.strength", m.Inhibition.Strength, 0)
	v.min("modifiers.learning.rate", m.Learning.Rate, 0)
	v.min("modifiers.modulation.strength", m.Modulation.Strength, 0)
	v.unit("modifiers.modulation.rate", m.Modulation.Rate)
	v.unit("modifiers.homeostasis.rate", m.Homeostasis.Rate)
	v.min("modifiers.refractory.period", float64(m.Refractory.Period), 0)
	v.min("modifiers.noise.strength", m.Noise.Strength, 0)

	if c.Telemetry.StatsWindow < 1 {
		v.fail("telemetry.stats_window", fmt.Sprintf("must be at least 1 tick, got %d", c.Telemetry.StatsWindow))
	}

	return errors.Join(v.errs...)
}

// validator accumulates ConfigurationErrors.
type validator struct {
	errs []error
}

func (v *validator) fail(field, reason string) {
	v.errs = append(v.errs, &ConfigurationError{Field: field, Reason: reason})
}

// finite fails NaN and ±Inf, which slip through every ordered comparison.
func (v *validator) finite(field string, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		v.fail(field, fmt.Sprintf("must be a finite number, got %g", value))
		return false
	}
	return true
}

func (v *validator) min(field string, value, lo float64) {
	if !v.finite(field, value) {
		return
	}
	if value < lo {
		v.fail(field, fmt.Sprintf("must be >= %g, got %g", lo, value))
	}
}

func (v *validator) unit(field string, value float64) {
	if !v.finite(field, value) {
		return
	}
	if value < 0 || value > 1 {
		v.fail(field, fmt.Sprintf("must be in [0, 1], got %g", value))
	}
}
