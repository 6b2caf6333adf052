package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/neuronet/systems"
)

func newStagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the per-tick stages in execution order",
		Long: `List the per-tick stages in execution order.

Examples:
  neuronet stages
  neuronet stages --category synaptic --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			category, _ := cmd.Flags().GetString("category")

			reg := systems.NewSystemRegistry()
			stages := reg.All()
			if category != "" {
				if !slices.Contains(reg.Categories(), category) {
					return fmt.Errorf("unknown category %q (valid: %s)", category, strings.Join(reg.Categories(), ", "))
				}
				stages = reg.ByCategory(category)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(stages)
			}

			// Position is the execution slot, also when filtered.
			order := reg.IDs()
			for _, s := range stages {
				fmt.Fprintf(out, "%2d  %-16s %-11s %s\n", slices.Index(order, s.ID), s.ID, s.Category, s.Description)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().String("category", "", "Only list stages in this category")

	return cmd
}
