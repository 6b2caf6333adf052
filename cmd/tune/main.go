// Command tune searches network parameters with CMA-ES for a target
// activation rate.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/neuronet/config"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

type tuneOptions struct {
	configPath string
	maxTicks   int32
	seeds      int
	maxEvals   int
	population int
	targetRate float64
	outputDir  string
}

func main() {
	if err := newTuneCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTuneCmd() *cobra.Command {
	var opts tuneOptions

	cmd := &cobra.Command{
		Use:          "tune",
		Short:        "Search network parameters for a target activation rate",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil)))
			return runTune(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	cmd.Flags().Int32Var(&opts.maxTicks, "max-ticks", 2000, "Ticks per simulation run")
	cmd.Flags().IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	cmd.Flags().IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	cmd.Flags().IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	cmd.Flags().Float64Var(&opts.targetRate, "target-rate", 0.1, "Desired fraction of neurons active per tick")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory for results")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runTune(cmd *cobra.Command, opts tuneOptions) error {
	if opts.seeds < 1 {
		return errors.New("--seeds must be at least 1")
	}
	if opts.targetRate <= 0 || opts.targetRate > 1 {
		return fmt.Errorf("--target-rate must be in (0, 1], got %g", opts.targetRate)
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()

	evalSeeds := make([]int64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, opts.maxTicks, evalSeeds, baseCfg, opts.targetRate)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	logPath := filepath.Join(opts.outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "rate"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := logWriter.Write(header); err != nil {
		return fmt.Errorf("writing log header: %w", err)
	}

	out := cmd.OutOrStdout()
	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			rate := evaluator.LastRate()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			// Log clamped values, which are the ones actually simulated
			row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.6f", rate)}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			_ = logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(max(opts.maxEvals-evalCount, 0)) * avgPerEval
			fmt.Fprintf(out, "Eval %d/%d: fitness=%.4f rate=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, opts.maxEvals, fitness, rate, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Fprintf(out, "Starting CMA-ES with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, opts.maxEvals)
	fmt.Fprintf(out, "Seeds per evaluation: %d, ticks per run: %d, target rate: %.3f\n",
		opts.seeds, opts.maxTicks, opts.targetRate)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}

	if bestParams == nil {
		if result == nil {
			return errors.New("no evaluations completed")
		}
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Fprintf(out, "\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Fprintf(out, "Best fitness: %.4f\n", bestFitness)
	fmt.Fprintln(out, "\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Fprintf(out, "  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	if err := bestCfg.Validate(); err != nil {
		return fmt.Errorf("best config: %w", err)
	}

	configOutPath := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nBest config saved to: %s\n", configOutPath)
	return nil
}
