package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neuronet",
		Short: "Stochastic neuron population simulator",
		Long: `neuronet runs a small population of stochastic neurons connected by a
directed weight matrix. Every tick each neuron fires with its own probability
and a fixed pipeline of modifiers (input, feedback, inhibition, plasticity,
learning, modulation, homeostasis, refractoriness, noise and mutation)
reshapes probabilities and connection strengths.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// JSON to stdout for structured logging
			logger := slog.New(slog.NewJSONHandler(cmd.OutOrStdout(), nil))
			slog.SetDefault(logger)
		},
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newConfigCmd(),
		newStagesCmd(),
		newVersionCmd(),
	)

	return rootCmd
}
