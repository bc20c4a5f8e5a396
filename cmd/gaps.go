package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/equity"
	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Rank underserved areas by equity gap and recommend new sites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := stageGaps(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(gapsCmd)
}

func analysisParams() equity.Params {
	p := equity.DefaultParams()
	if cfg.Analysis.MinPopulation > 0 {
		p.MinPopulation = cfg.Analysis.MinPopulation
	}
	if cfg.Analysis.TopN > 0 {
		p.TopN = cfg.Analysis.TopN
	}
	if cfg.Analysis.HighGapThreshold > 0 {
		p.HighGapThreshold = cfg.Analysis.HighGapThreshold
	}
	return p
}

func stageGaps(ctx context.Context) (*equity.Analysis, error) {
	_ = ctx

	areas, schema, err := loadAreas(scoresPath(cfg))
	if err != nil {
		return nil, err
	}

	analysis, err := equity.Analyze(areas, model.Categories, analysisParams())
	if err != nil {
		return nil, err
	}

	if err := analysis.WriteOutputs(cfg.Data.OutputsDir); err != nil {
		return nil, err
	}

	if err := geofile.WriteCollection(equityPath(cfg), geofile.CollectionFromAreas(areas, schema)); err != nil {
		return nil, err
	}

	zap.L().Info("gaps: analysis complete",
		zap.Int("categories", len(analysis.Results)),
		zap.Int64("total_population", analysis.TotalPopulation),
	)
	return analysis, nil
}
