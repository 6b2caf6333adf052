package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`
	Ticks           int   `csv:"ticks"`
	Neurons         int   `csv:"neurons"`

	// Firing during window
	Activations    int     `csv:"activations"`     // neuron-ticks spent active
	ActivationRate float64 `csv:"activation_rate"` // activations / (ticks × neurons)
	ActiveMean     float64 `csv:"active_mean"`     // active neurons per tick
	ActiveStd      float64 `csv:"active_std"`
	SilentNeurons  int     `csv:"silent_neurons"` // never fired during the window

	// Stage events during window
	Sampled          int `csv:"sampled"`
	External         int `csv:"external"`
	Suppressed       int `csv:"suppressed"`
	Crossings        int `csv:"crossings"`
	RefractoryStarts int `csv:"refractory_starts"`
	Potentiated      int `csv:"potentiated"`
	Depressed        int `csv:"depressed"`

	// Probability distribution (sampled at window end)
	ProbMean float64 `csv:"prob_mean"`
	ProbStd  float64 `csv:"prob_std"`
	ProbP10  float64 `csv:"prob_p10"`
	ProbP50  float64 `csv:"prob_p50"`
	ProbP90  float64 `csv:"prob_p90"`

	// Connection strength distribution (sampled at window end)
	StrengthMean float64 `csv:"strength_mean"`
	StrengthStd  float64 `csv:"strength_std"`
	StrengthP10  float64 `csv:"strength_p10"`
	StrengthP50  float64 `csv:"strength_p50"`
	StrengthP90  float64 `csv:"strength_p90"`

	Gain float64 `csv:"gain"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MeanStd returns the mean and sample standard deviation of values.
// The deviation is 0 for fewer than two values.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// ComputeDistribution calculates mean, std, and percentiles of values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = MeanStd(values)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("ticks", s.Ticks),
		slog.Int("neurons", s.Neurons),
		slog.Int("activations", s.Activations),
		slog.Float64("activation_rate", s.ActivationRate),
		slog.Float64("active_mean", s.ActiveMean),
		slog.Float64("active_std", s.ActiveStd),
		slog.Int("silent_neurons", s.SilentNeurons),
		slog.Int("sampled", s.Sampled),
		slog.Int("external", s.External),
		slog.Int("suppressed", s.Suppressed),
		slog.Int("crossings", s.Crossings),
		slog.Int("refractory_starts", s.RefractoryStarts),
		slog.Int("potentiated", s.Potentiated),
		slog.Int("depressed", s.Depressed),
		slog.Float64("prob_mean", s.ProbMean),
		slog.Float64("prob_std", s.ProbStd),
		slog.Float64("prob_p10", s.ProbP10),
		slog.Float64("prob_p50", s.ProbP50),
		slog.Float64("prob_p90", s.ProbP90),
		slog.Float64("strength_mean", s.StrengthMean),
		slog.Float64("strength_std", s.StrengthStd),
		slog.Float64("strength_p10", s.StrengthP10),
		slog.Float64("strength_p50", s.StrengthP50),
		slog.Float64("strength_p90", s.StrengthP90),
		slog.Float64("gain", s.Gain),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"neurons", s.Neurons,
		"activations", s.Activations,
		"activation_rate", s.ActivationRate,
		"active_mean", s.ActiveMean,
		"silent_neurons", s.SilentNeurons,
		"external", s.External,
		"suppressed", s.Suppressed,
		"crossings", s.Crossings,
		"potentiated", s.Potentiated,
		"depressed", s.Depressed,
		"prob_mean", s.ProbMean,
		"prob_p10", s.ProbP10,
		"prob_p90", s.ProbP90,
		"strength_mean", s.StrengthMean,
		"strength_p10", s.StrengthP10,
		"strength_p90", s.StrengthP90,
		"gain", s.Gain,
	)
}
