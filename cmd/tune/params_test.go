package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/neuronet/config"
)

func TestDefaultsMatchEmbeddedConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	want := pv.DefaultVector()

	for i, spec := range pv.Specs {
		if got[i] != want[i] {
			t.Errorf("%s: config has %v, spec default %v", spec.Path, got[i], want[i])
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			t.Errorf("%s: default %v outside [%v, %v]", spec.Path, spec.Default, spec.Min, spec.Max)
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))

	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		if i%2 == 0 {
			v[i] = spec.Min - 1
		} else {
			v[i] = spec.Max + 1
		}
	}

	got := pv.Clamp(v)
	for i, spec := range pv.Specs {
		want := spec.Min
		if i%2 == 1 {
			want = spec.Max
		}
		if got[i] != want {
			t.Errorf("%s: got %v, want %v", spec.Name, got[i], want)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = (spec.Min + spec.Max) / 2
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != values[i] {
			t.Errorf("%s: got %v, want %v", spec.Path, got[i], values[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("midpoint config invalid: %v", err)
	}
}

func TestApplyToConfigLeavesBaseUntouched(t *testing.T) {
	pv := NewParamVector()
	base := config.Default()
	clone := base.Clone()

	pv.ApplyToConfig(clone, pv.Denormalize(make([]float64, pv.Dim())))

	if base.Network.ProbabilityIncrease != 0.1 {
		t.Errorf("base probability_increase changed to %v", base.Network.ProbabilityIncrease)
	}
	if clone.Network.ProbabilityIncrease != pv.Specs[0].Min {
		t.Errorf("clone probability_increase = %v, want %v", clone.Network.ProbabilityIncrease, pv.Specs[0].Min)
	}
}
