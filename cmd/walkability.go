package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/walkscore"
)

var walkabilityCmd = &cobra.Command{
	Use:   "walkability",
	Short: "Score areas on the distance-decay curve and composite index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := stageWalkability(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(walkabilityCmd)
}

func stageWalkability(ctx context.Context) (walkscore.Summary, error) {
	_ = ctx

	areas, schema, err := loadAreas(distancesPath(cfg))
	if err != nil {
		return walkscore.Summary{}, err
	}

	profile := walkscore.DefaultProfile()
	if cfg.Scoring.ProfilePath != "" {
		profile, err = walkscore.LoadProfile(cfg.Scoring.ProfilePath)
		if err != nil {
			return walkscore.Summary{}, err
		}
	}

	walkscore.ScoreAll(areas, profile)

	summary := walkscore.Summarize(areas)
	zap.L().Info("walkability: index distribution",
		zap.Int("areas", summary.Count),
		zap.Float64("mean", summary.Mean),
		zap.Float64("median", summary.Median),
		zap.Float64("min", summary.Min),
		zap.Float64("max", summary.Max),
	)
	for class, n := range summary.ByCategory {
		zap.L().Info("walkability: class count", zap.String("class", class), zap.Int("areas", n))
	}

	if err := geofile.WriteCollection(scoresPath(cfg), geofile.CollectionFromAreas(areas, schema)); err != nil {
		return walkscore.Summary{}, err
	}
	return summary, nil
}
