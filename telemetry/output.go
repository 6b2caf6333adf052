package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/neuronet/config"
)

// csvLog is an append-only CSV file whose header is written with the first record.
type csvLog struct {
	name          string
	file          *os.File
	headerWritten bool
}

func openCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, file: f}, nil
}

// appendRecords writes records, including the header on the first call.
func appendRecords[T any](l *csvLog, records []T) error {
	if !l.headerWritten {
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing %s: %w", l.name, err)
		}
		l.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	return nil
}

// NeuronSummary is one row of neurons.csv, written when a run ends.
type NeuronSummary struct {
	ID             int     `csv:"id"`
	Firings        int     `csv:"firings"`
	FiringRate     float64 `csv:"firing_rate"`
	LastFiredTick  int32   `csv:"last_fired_tick"`
	LongestSilence int32   `csv:"longest_silence"`
	Probability    float64 `csv:"final_probability"`
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvLog
	perf      *csvLog
	bookmarks *csvLog
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	var err error
	if om.telemetry, err = openCSVLog(dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = openCSVLog(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openCSVLog(dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return appendRecords(om.telemetry, []WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return appendRecords(om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return appendRecords(om.bookmarks, []Bookmark{b})
}

// WriteNeurons saves the per-neuron firing summary to neurons.csv.
// ticks is the run length used for the firing rate.
func (om *OutputManager) WriteNeurons(tracker *FiringTracker, probabilities []float64, ticks int32) error {
	if om == nil || tracker == nil {
		return nil
	}

	rows := make([]NeuronSummary, tracker.Count())
	for id, s := range tracker.All() {
		rows[id] = NeuronSummary{
			ID:             id,
			Firings:        s.Firings,
			LastFiredTick:  s.LastFiredTick,
			LongestSilence: s.LongestSilence,
		}
		if ticks > 0 {
			rows[id].FiringRate = float64(s.Firings) / float64(ticks)
		}
		if id < len(probabilities) {
			rows[id].Probability = probabilities[id]
		}
	}

	f, err := os.Create(filepath.Join(om.dir, "neurons.csv"))
	if err != nil {
		return fmt.Errorf("creating neurons.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing neurons.csv: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, l := range []*csvLog{om.telemetry, om.perf, om.bookmarks} {
		if l == nil {
			continue
		}
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
