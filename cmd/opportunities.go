package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/store"
)

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Generate, list, and update opportunity suggestions",
}

var (
	genTenant        string
	genQuery         string
	genCategories    []string
	genTypes         []string
	genContacts      []string
	genMinConfidence float64
	genMinImpact     float64
	genSortBy        string
	genLimit         int
)

var opportunitiesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run all detectors and persist ranked suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var filters model.GenerateFilters
		if genQuery != "" {
			filters = env.Parser.Parse(cmd.Context(), genQuery)
		}
		for _, c := range genCategories {
			filters.Categories = append(filters.Categories, model.OpportunityCategory(c))
		}
		filters.Types = append(filters.Types, genTypes...)
		filters.ContactIDs = append(filters.ContactIDs, genContacts...)
		if genMinConfidence > 0 {
			filters.MinConfidence = genMinConfidence
		}
		if genMinImpact > 0 {
			filters.MinImpact = genMinImpact
		}
		if genSortBy != "" {
			filters.SortBy = model.SortKey(genSortBy)
		}
		if genLimit > 0 {
			filters.Limit = genLimit
		}

		result, err := env.Aggregator.Generate(cmd.Context(), genTenant, filters)
		if err != nil {
			return err
		}

		zap.L().Info("opportunity generation complete",
			zap.Int("suggestions", len(result.Suggestions)),
			zap.Int("duplicates_skipped", result.DuplicatesSkipped),
			zap.Int("detector_failures", result.DetectorFailures))
		return printJSON(result)
	},
}

var (
	listTenant   string
	listStatus   string
	listCategory string
	listLimit    int
)

var opportunitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted opportunity suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		suggestions, err := env.Store.ListSuggestions(cmd.Context(), listTenant, store.SuggestionFilter{
			Status:   model.OpportunityStatus(listStatus),
			Category: model.OpportunityCategory(listCategory),
			Limit:    listLimit,
		})
		if err != nil {
			return err
		}
		return printJSON(suggestions)
	},
}

var (
	statusActor string
	statusNotes string
)

var opportunitiesStatusCmd = &cobra.Command{
	Use:   "status <suggestion-id> <new-status>",
	Short: "Advance a suggestion through its lifecycle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		status := model.OpportunityStatus(args[1])
		if err := env.Store.UpdateSuggestionStatus(cmd.Context(), args[0], status, statusActor, statusNotes); err != nil {
			return err
		}

		updated, err := env.Store.GetSuggestion(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

func init() {
	opportunitiesGenerateCmd.Flags().StringVar(&genTenant, "tenant", "", "tenant ID (required)")
	opportunitiesGenerateCmd.Flags().StringVar(&genQuery, "query", "", "free-text filter, e.g. \"top 5 urgent introductions\"")
	opportunitiesGenerateCmd.Flags().StringSliceVar(&genCategories, "category", nil, "restrict to categories")
	opportunitiesGenerateCmd.Flags().StringSliceVar(&genTypes, "type", nil, "restrict to suggestion types")
	opportunitiesGenerateCmd.Flags().StringSliceVar(&genContacts, "contact", nil, "restrict to suggestions touching these contacts")
	opportunitiesGenerateCmd.Flags().Float64Var(&genMinConfidence, "min-confidence", 0, "drop suggestions below this confidence")
	opportunitiesGenerateCmd.Flags().Float64Var(&genMinImpact, "min-impact", 0, "drop suggestions below this impact")
	opportunitiesGenerateCmd.Flags().StringVar(&genSortBy, "sort", "", "sort key: composite, confidence, impact, urgency, recency")
	opportunitiesGenerateCmd.Flags().IntVar(&genLimit, "limit", 0, "maximum suggestions to keep")
	_ = opportunitiesGenerateCmd.MarkFlagRequired("tenant")

	opportunitiesListCmd.Flags().StringVar(&listTenant, "tenant", "", "tenant ID (required)")
	opportunitiesListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	opportunitiesListCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	opportunitiesListCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows")
	_ = opportunitiesListCmd.MarkFlagRequired("tenant")

	opportunitiesStatusCmd.Flags().StringVar(&statusActor, "actor", "", "who is making the change")
	opportunitiesStatusCmd.Flags().StringVar(&statusNotes, "notes", "", "free-form note recorded with the change")

	opportunitiesCmd.AddCommand(opportunitiesGenerateCmd, opportunitiesListCmd, opportunitiesStatusCmd)
	rootCmd.AddCommand(opportunitiesCmd)
}
