package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	discoverTenant      string
	discoverConcurrency int
)

var discoverCmd = &cobra.Command{
	Use:   "discover <contact-id> [contact-id...]",
	Short: "Infer likely-but-unconfirmed relationships for contacts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if len(args) == 1 {
			potentials, err := env.Inference.Discover(cmd.Context(), discoverTenant, args[0])
			if err != nil {
				return err
			}
			return printJSON(potentials)
		}

		result, err := env.Inference.BatchDiscover(cmd.Context(), discoverTenant, args, discoverConcurrency)
		if err != nil {
			zap.L().Warn("batch discovery finished with failures",
				zap.Int("processed", result.Processed),
				zap.Strings("failed", result.Failed),
				zap.Error(err))
		}
		return printJSON(result)
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverTenant, "tenant", "", "tenant ID (required)")
	discoverCmd.Flags().IntVar(&discoverConcurrency, "concurrency", 4, "parallel workers for batch discovery")
	_ = discoverCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(discoverCmd)
}
