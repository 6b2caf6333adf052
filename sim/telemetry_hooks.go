package sim

import (
	"log/slog"

	"github.com/pthm-cable/neuronet/telemetry"
)

// recordTelemetry feeds one tick into the collectors and flushes the window when due.
func (s *Simulation) recordTelemetry(state *State) {
	active := make([]bool, len(state.Neurons))
	count := 0
	for i, n := range state.Neurons {
		if n.Active {
			active[i] = true
			count++
		}
	}
	s.firing.Record(s.tick, active)

	c := s.ctx.Counters
	s.collector.RecordTick(telemetry.TickRecord{
		Active:           count,
		Sampled:          c.Sampled,
		External:         c.ExternalActivations,
		Suppressed:       c.RefractorySuppressed,
		Crossings:        c.ThresholdCrossings,
		RefractoryStarts: c.RefractoryStarts,
		Potentiated:      c.Potentiated,
		Depressed:        c.Depressed,
	})

	s.flushTelemetry(state)
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry(state *State) {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	probs := make([]float64, len(state.Neurons))
	for i, n := range state.Neurons {
		probs[i] = n.Probability
	}
	strengths := make([]float64, len(state.Connections))
	for i, c := range state.Connections {
		strengths[i] = c.Strength
	}

	stats := s.collector.Flush(s.tick, telemetry.WindowSample{
		Neurons:       len(state.Neurons),
		Probabilities: probs,
		Strengths:     strengths,
		Gain:          state.Gain,
		Silent:        s.firing.SilentSince(s.collector.WindowStartTick() + 1),
	})
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	// Check for bookmarks
	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}

		if err := s.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}

		// Save snapshot on bookmark
		if s.snapshotDir != "" {
			s.saveSnapshot(state, &bm)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (s *Simulation) saveSnapshot(state *State, bookmark *telemetry.Bookmark) {
	snapshot := s.createSnapshot(state, bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}

// createSnapshot builds a snapshot from a published state.
func (s *Simulation) createSnapshot(state *State, bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     s.seed,
		Tick:        state.Tick,
		Gain:        state.Gain,
		Neurons:     make([]telemetry.NeuronState, len(state.Neurons)),
		Connections: make([]telemetry.ConnectionState, len(state.Connections)),
		Bookmark:    bookmark,
	}

	for i, n := range state.Neurons {
		var firing *telemetry.FiringStats
		if fs := s.firing.Get(n.ID); fs != nil {
			copied := *fs
			firing = &copied
		}
		snapshot.Neurons[i] = telemetry.NeuronState{
			ID:          n.ID,
			X:           n.X,
			Y:           n.Y,
			Active:      n.Active,
			Probability: n.Probability,
			Refractory:  n.Refractory,
			Firing:      firing,
		}
	}
	for i, c := range state.Connections {
		snapshot.Connections[i] = telemetry.ConnectionState{From: c.From, To: c.To, Strength: c.Strength}
	}

	return snapshot
}
