package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/network-intel/internal/graph"
)

var (
	pathsTenant      string
	pathsMaxDegrees  int
	pathsMinStrength float64
)

var pathsCmd = &cobra.Command{
	Use:   "paths <from-contact-id> <to-contact-id>",
	Short: "Find warm introduction paths between two contacts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		maxDegrees := pathsMaxDegrees
		if maxDegrees == 0 {
			maxDegrees = cfg.Paths.MaxDegrees
		}
		minStrength := pathsMinStrength
		if minStrength == 0 {
			minStrength = cfg.Paths.MinStrength
		}

		snap, err := graph.Load(cmd.Context(), env.Store, pathsTenant)
		if err != nil {
			return err
		}

		results, err := graph.FindPaths(snap, args[0], args[1], maxDegrees, minStrength)
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

func init() {
	pathsCmd.Flags().StringVar(&pathsTenant, "tenant", "", "tenant ID (required)")
	pathsCmd.Flags().IntVar(&pathsMaxDegrees, "max-degrees", 0, "maximum hops, defaults to paths.max_degrees")
	pathsCmd.Flags().Float64Var(&pathsMinStrength, "min-strength", 0, "minimum edge strength, defaults to paths.min_strength")
	_ = pathsCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(pathsCmd)
}
