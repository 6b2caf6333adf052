package telemetry

// FiringStats tracks one neuron's activity over the whole run.
// Ticks start at 1, so a LastFiredTick of 0 means the neuron never fired.
type FiringStats struct {
	Firings        int   `json:"firings"`
	LastFiredTick  int32 `json:"last_fired_tick"`
	LongestSilence int32 `json:"longest_silence"` // ticks between consecutive firings
}

// FiringTracker manages per-neuron firing statistics.
type FiringTracker struct {
	stats []FiringStats
}

// NewFiringTracker creates a tracker for n neurons.
func NewFiringTracker(n int) *FiringTracker {
	return &FiringTracker{stats: make([]FiringStats, n)}
}

// Record updates the tracker with the activity of one tick.
// active is indexed by neuron id.
func (ft *FiringTracker) Record(tick int32, active []bool) {
	for i, a := range active {
		if !a || i >= len(ft.stats) {
			continue
		}
		s := &ft.stats[i]
		if gap := tick - s.LastFiredTick - 1; gap > s.LongestSilence {
			s.LongestSilence = gap
		}
		s.Firings++
		s.LastFiredTick = tick
	}
}

// Get returns the stats for neuron id, or nil if out of range.
func (ft *FiringTracker) Get(id int) *FiringStats {
	if id < 0 || id >= len(ft.stats) {
		return nil
	}
	return &ft.stats[id]
}

// SilentSince returns how many neurons have not fired at or after tick.
func (ft *FiringTracker) SilentSince(tick int32) int {
	count := 0
	for _, s := range ft.stats {
		if s.LastFiredTick < tick {
			count++
		}
	}
	return count
}

// All returns all tracked stats (for snapshots), indexed by neuron id.
func (ft *FiringTracker) All() []FiringStats {
	return ft.stats
}

// Count returns the number of tracked neurons.
func (ft *FiringTracker) Count() int {
	return len(ft.stats)
}
