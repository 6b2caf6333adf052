// Package telemetry provides network activity tracking, bookmarking, and snapshots.
package telemetry

// TickRecord holds what happened during a single tick.
type TickRecord struct {
	Active           int // neurons firing at the end of the tick
	Sampled          int
	External         int
	Suppressed       int
	Crossings        int
	RefractoryStarts int
	Potentiated      int
	Depressed        int
}

// WindowSample is the network state the caller provides when a window closes.
type WindowSample struct {
	Neurons       int
	Probabilities []float64
	Strengths     []float64
	Gain          float64
	Silent        int // neurons that did not fire during the window
}

// Collector accumulates tick records within windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Counters for current window
	totals        TickRecord
	activePerTick []float64
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}

	return &Collector{
		windowDurationTicks: int32(windowTicks),
		activePerTick:       make([]float64, 0, windowTicks),
	}
}

// RecordTick adds one tick to the current window.
func (c *Collector) RecordTick(rec TickRecord) {
	c.totals.Active += rec.Active
	c.totals.Sampled += rec.Sampled
	c.totals.External += rec.External
	c.totals.Suppressed += rec.Suppressed
	c.totals.Crossings += rec.Crossings
	c.totals.RefractoryStarts += rec.RefractoryStarts
	c.totals.Potentiated += rec.Potentiated
	c.totals.Depressed += rec.Depressed
	c.activePerTick = append(c.activePerTick, float64(rec.Active))
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample WindowSample) WindowStats {
	ticks := len(c.activePerTick)

	var rate float64
	if ticks > 0 && sample.Neurons > 0 {
		rate = float64(c.totals.Active) / float64(ticks*sample.Neurons)
	}
	activeMean, activeStd := MeanStd(c.activePerTick)

	probMean, probStd, probP10, probP50, probP90 := ComputeDistribution(sample.Probabilities)
	strMean, strStd, strP10, strP50, strP90 := ComputeDistribution(sample.Strengths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Ticks:           ticks,
		Neurons:         sample.Neurons,

		Activations:    c.totals.Active,
		ActivationRate: rate,
		ActiveMean:     activeMean,
		ActiveStd:      activeStd,
		SilentNeurons:  sample.Silent,

		Sampled:          c.totals.Sampled,
		External:         c.totals.External,
		Suppressed:       c.totals.Suppressed,
		Crossings:        c.totals.Crossings,
		RefractoryStarts: c.totals.RefractoryStarts,
		Potentiated:      c.totals.Potentiated,
		Depressed:        c.totals.Depressed,

		ProbMean: probMean,
		ProbStd:  probStd,
		ProbP10:  probP10,
		ProbP50:  probP50,
		ProbP90:  probP90,

		StrengthMean: strMean,
		StrengthStd:  strStd,
		StrengthP10:  strP10,
		StrengthP50:  strP50,
		StrengthP90:  strP90,

		Gain: sample.Gain,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.totals = TickRecord{}
	c.activePerTick = c.activePerTick[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}

// WindowStartTick returns the tick the current window started at.
func (c *Collector) WindowStartTick() int32 {
	return c.windowStartTick
}
