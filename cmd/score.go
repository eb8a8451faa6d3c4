package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scoreTenant string
	scoreGoals  []string
)

var scoreCmd = &cobra.Command{
	Use:   "score <contact-id> [contact-id...]",
	Short: "Compute and persist six-factor scores for one or more contacts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if len(args) == 1 {
			scoring, err := env.Scorer.ScoreContact(cmd.Context(), scoreTenant, args[0], scoreGoals)
			if err != nil {
				return err
			}
			return printJSON(scoring)
		}

		result, err := env.Scorer.BatchScore(cmd.Context(), scoreTenant, args, scoreGoals)
		if err != nil {
			zap.L().Warn("batch scoring finished with failures",
				zap.Int("scored", result.Scored),
				zap.Strings("failed", result.Failed),
				zap.Error(err))
		}
		return printJSON(result)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreTenant, "tenant", "", "tenant ID (required)")
	scoreCmd.Flags().StringSliceVar(&scoreGoals, "goal", nil, "business goal keywords boosting professional relevance")
	_ = scoreCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(scoreCmd)
}
