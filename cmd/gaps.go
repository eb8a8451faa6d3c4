package main

import (
	"github.com/spf13/cobra"
)

var gapsTenant string

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Analyze network composition and report coverage gaps",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.GapAnalyzer.Analyze(cmd.Context(), gapsTenant)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	gapsCmd.Flags().StringVar(&gapsTenant, "tenant", "", "tenant ID (required)")
	_ = gapsCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(gapsCmd)
}
