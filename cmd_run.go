package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/neuronet/config"
	"github.com/pthm-cable/neuronet/sim"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless",
		Long: `Run the simulation until --max-ticks is reached or the process is interrupted.

Window statistics go to telemetry.csv, perf.csv and bookmarks.csv when
--output-dir is set; bookmarks also save a JSON snapshot when --snapshot-dir
is set.

Examples:
  neuronet run --max-ticks 10000 --output-dir runs/a
  neuronet run --config my.yaml --seed 7 --log-stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			seed, _ := cmd.Flags().GetInt64("seed")
			maxTicks, _ := cmd.Flags().GetInt32("max-ticks")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			snapshotDir, _ := cmd.Flags().GetString("snapshot-dir")
			logStats, _ := cmd.Flags().GetBool("log-stats")
			statsWindow, _ := cmd.Flags().GetInt("stats-window")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Use config stats window if not overridden by CLI
			if statsWindow > 0 {
				cfg.Telemetry.StatsWindow = statsWindow
			}

			// Set up seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSimulation(ctx, sim.Options{
				Config:      cfg,
				Seed:        seed,
				LogStats:    logStats,
				OutputDir:   outputDir,
				SnapshotDir: snapshotDir,
			}, maxTicks)
		},
	}

	cmd.Flags().String("config", "", "Path to config.yaml (empty = use defaults)")
	cmd.Flags().Int64("seed", 0, "RNG seed (0 = time-based)")
	cmd.Flags().Int32("max-ticks", 0, "Stop after N ticks (0 = until interrupted)")
	cmd.Flags().String("output-dir", "", "Output directory for CSV logs and config snapshot")
	cmd.Flags().String("snapshot-dir", "", "Directory for snapshot files")
	cmd.Flags().Bool("log-stats", false, "Output stats via slog")
	cmd.Flags().Int("stats-window", 0, "Stats window size in ticks (0 = use config)")

	return cmd
}

// runSimulation advances a new simulation until maxTicks or ctx is done.
func runSimulation(ctx context.Context, opts sim.Options, maxTicks int32) error {
	s, err := sim.New(opts)
	if err != nil {
		return err
	}

	slog.Info("starting simulation",
		"seed", opts.Seed,
		"neurons", s.Config().Network.NumNeurons,
		"stats_window", s.Config().Telemetry.StatsWindow,
		"max_ticks", maxTicks,
	)

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("interrupted", "tick", s.Tick())
			break
		}

		state := s.Advance()

		if maxTicks > 0 && state.Tick >= maxTicks {
			slog.Info("max ticks reached", "tick", state.Tick, "active", state.ActiveCount())
			break
		}
	}

	return s.Close()
}
