package main

import (
	"github.com/pthm-cable/neuronet/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(cfg *config.Config) *float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Probability update
			{Name: "prob_increase", Path: "network.probability_increase", Min: 0.01, Max: 0.3, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Network.ProbabilityIncrease }},
			{Name: "prob_decrease", Path: "network.probability_decrease", Min: 0.01, Max: 0.3, Default: 0.05,
				field: func(c *config.Config) *float64 { return &c.Network.ProbabilityDecrease }},
			{Name: "prob_threshold", Path: "network.probability_threshold", Min: 0.05, Max: 0.95, Default: 0.5,
				field: func(c *config.Config) *float64 { return &c.Network.ProbabilityThreshold }},
			// Synaptic
			{Name: "strength_delta", Path: "network.connection_strength_delta", Min: 0.01, Max: 0.3, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Network.ConnectionStrengthDelta }},
			{Name: "feedback", Path: "modifiers.feedback.strength", Min: 0, Max: 0.5, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Modifiers.Feedback.Strength }},
			{Name: "inhibition", Path: "modifiers.inhibition.strength", Min: 0, Max: 0.5, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Modifiers.Inhibition.Strength }},
			// Regulation
			{Name: "homeostasis_rate", Path: "modifiers.homeostasis.rate", Min: 0.01, Max: 0.5, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Modifiers.Homeostasis.Rate }},
			{Name: "noise", Path: "modifiers.noise.strength", Min: 0, Max: 0.2, Default: 0.05,
				field: func(c *config.Config) *float64 { return &c.Modifiers.Noise.Strength }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		*spec.field(cfg) = clamped[i]
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
