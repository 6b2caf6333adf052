package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/neuronet/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBurst          BookmarkType = "burst"
	BookmarkQuiescence     BookmarkType = "quiescence"
	BookmarkSaturation     BookmarkType = "saturation"
	BookmarkStableActivity BookmarkType = "stable_activity"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// stableSpan is how many recent windows the stable activity check compares.
const stableSpan = 4

// BookmarkDetector detects interesting moments in the network's activity.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	saturated          bool // mean probability currently above the saturation level
	stableWindowsCount int  // consecutive windows with steady activation
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < stableSpan {
		historySize = stableSpan // minimum for stable activity detection
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Burst: activations well above the rolling average
		if b := bd.checkBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Quiescence: an active network fell silent
		if b := bd.checkQuiescence(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Saturation: mean probability rose past the configured level
	if b := bd.checkSaturation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Stable activity: activation rate with low variation over several windows
	if b := bd.checkStableActivity(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}

	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) checkBurst(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Activations
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := float64(stats.Activations)
	if current > avg*bd.cfg.Burst.Multiplier && stats.Activations >= bd.cfg.Burst.MinActivations {
		return &Bookmark{
			Type:        BookmarkBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d activations is %.1fx average (%.1f)", stats.Activations, current/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkQuiescence(stats WindowStats) *Bookmark {
	if stats.Activations != 0 {
		return nil
	}

	prev := bd.recent(1)
	if len(prev) == 0 || prev[0].Activations < bd.cfg.Quiescence.MinPriorActivations {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkQuiescence,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Network fell silent after %d activations", prev[0].Activations),
	}
}

func (bd *BookmarkDetector) checkSaturation(stats WindowStats) *Bookmark {
	above := stats.ProbMean >= bd.cfg.Saturation.MeanProbability
	wasSaturated := bd.saturated
	bd.saturated = above

	// Trigger on the rising edge only
	if !above || wasSaturated {
		return nil
	}

	return &Bookmark{
		Type:        BookmarkSaturation,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Mean probability %.2f reached %.2f", stats.ProbMean, bd.cfg.Saturation.MeanProbability),
	}
}

func (bd *BookmarkDetector) checkStableActivity(stats WindowStats) *Bookmark {
	if stats.Activations == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.recent(stableSpan - 1)
	if len(history) < stableSpan-1 {
		return nil
	}

	rates := make([]float64, 0, stableSpan)
	for _, h := range history {
		rates = append(rates, h.ActivationRate)
	}
	rates = append(rates, stats.ActivationRate)

	mean, std := MeanStd(rates)
	if mean > 0 && std/mean < bd.cfg.StableActivity.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == bd.cfg.StableActivity.StableWindows { // trigger exactly once per stable run
		return &Bookmark{
			Type:        BookmarkStableActivity,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Activation rate steady at %.3f over %d windows", mean, bd.cfg.StableActivity.StableWindows),
		}
	}

	return nil
}
