package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/model"
	"github.com/urbanmetrics/walkability-cli/internal/store"
)

var runWithCollect bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis pipeline and record the run",
	Long:  "Executes preprocess, distances, walkability, and gaps in order, persisting the run record and ranked results to the configured store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		categories := make([]string, len(model.Categories))
		for i, c := range model.Categories {
			categories[i] = string(c)
		}

		run, err := st.CreateRun(ctx, cfg.Collect.City, categories)
		if err != nil {
			return err
		}
		zap.L().Info("run: started", zap.String("run_id", run.ID), zap.String("city", run.City))

		if err := executePipeline(ctx, st, run.ID); err != nil {
			if failErr := st.FailRun(ctx, run.ID); failErr != nil {
				zap.L().Error("run: could not mark run failed", zap.Error(failErr))
			}
			return err
		}

		zap.L().Info("run: complete", zap.String("run_id", run.ID))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runWithCollect, "with-collect", false, "download source data before analyzing")
	rootCmd.AddCommand(runCmd)
}

func executePipeline(ctx context.Context, st store.Store, runID string) error {
	if runWithCollect {
		if err := collectBoundaries(ctx); err != nil {
			return err
		}
		if err := collectDemographics(ctx); err != nil {
			return err
		}
		if err := collectAmenities(ctx); err != nil {
			return err
		}
		if err := collectNetwork(ctx); err != nil {
			return err
		}
	}

	if err := stagePreprocess(ctx); err != nil {
		return err
	}
	if err := stageDistances(ctx); err != nil {
		return err
	}

	summary, err := stageWalkability(ctx)
	if err != nil {
		return err
	}

	analysis, err := stageGaps(ctx)
	if err != nil {
		return err
	}

	for _, res := range analysis.Results {
		if err := st.SaveUnderserved(ctx, runID, res.Underserved); err != nil {
			return err
		}
		if err := st.SaveRecommendations(ctx, runID, res.Recommendations); err != nil {
			return err
		}
	}

	highGap := make(map[string]int64, len(analysis.Results))
	for _, res := range analysis.Results {
		highGap[string(res.Category)] = res.HighGapPopulation
	}

	return st.CompleteRun(ctx, runID, analysis.AreaCount, &model.RunSummary{
		MeanIndex:         summary.Mean,
		MedianIndex:       summary.Median,
		TotalPopulation:   analysis.TotalPopulation,
		HighGapPopulation: highGap,
	})
}
