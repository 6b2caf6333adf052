package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/sim"
	"github.com/pthm-cable/neuronet/telemetry"
)

// Fitness weights and penalties.
const (
	stabilityWeight = 0.25 // weight of the activation-rate CV
	silencePenalty  = 0.5  // added per fraction of neurons silent in a window
	invalidFitness  = 10.0 // no usable windows or rejected config

	warmupWindows = 1 // skip first N windows
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	targetRate float64

	mu          sync.Mutex
	bestFitness float64
	lastRate    float64 // mean activation rate from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetRate float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		targetRate:  targetRate,
		bestFitness: math.Inf(1),
	}
}

// LastRate returns the mean activation rate from the most recent evaluation.
func (fe *FitnessEvaluator) LastRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRate
}

// BestFitness returns the lowest average fitness seen so far.
func (fe *FitnessEvaluator) BestFitness() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFitness
}

type seedResult struct {
	fitness float64
	rate    float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel. Each simulation owns its RNG and clones cfg.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Warn("evaluation rejected", "seed", s, "error", err)
				results[idx] = seedResult{fitness: invalidFitness}
				return
			}
			fitness, rate := fe.computeFitness(windows)
			results[idx] = seedResult{fitness: fitness, rate: rate}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalRate float64
	for _, r := range results {
		totalFitness += r.fitness
		totalRate += r.rate
	}
	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastRate = totalRate / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run and returns its window stats.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats
	s, err := sim.New(sim.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for s.Tick() < fe.maxTicks {
		s.Advance()
	}
	return windows, nil
}

// computeFitness scores a run by how far its activation rate sits from the
// target, how much the rate wanders between windows, and how many neurons
// stay silent. It also returns the mean activation rate.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.WindowStats) (fitness, rate float64) {
	if len(windows) > warmupWindows {
		windows = windows[warmupWindows:]
	}
	if len(windows) == 0 {
		return invalidFitness, 0
	}

	rates := make([]float64, len(windows))
	var silent float64
	for i, w := range windows {
		rates[i] = w.ActivationRate
		if w.Neurons > 0 {
			silent += float64(w.SilentNeurons) / float64(w.Neurons)
		}
	}
	silent /= float64(len(windows))

	mean, std := telemetry.MeanStd(rates)
	rateErr := math.Abs(mean-fe.targetRate) / math.Max(fe.targetRate, 1e-6)

	cv := 1.0
	if mean > 0 {
		cv = std / mean
	}

	return rateErr + stabilityWeight*cv + silencePenalty*silent, mean
}
