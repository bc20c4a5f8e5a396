package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/model"
	"github.com/urbanmetrics/walkability-cli/internal/network"
	"github.com/urbanmetrics/walkability-cli/internal/resolver"
)

var distancesCmd = &cobra.Command{
	Use:   "distances",
	Short: "Compute network distances from each area to its nearest amenities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return stageDistances(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(distancesCmd)
}

func stageDistances(ctx context.Context) error {
	_ = ctx

	areas, schema, err := loadAreas(processedAreasPath(cfg))
	if err != nil {
		return err
	}

	amenitiesFC, err := geofile.ReadCollection(processedAmenitiesPath(cfg))
	if err != nil {
		return err
	}
	amenities, err := geofile.AmenitiesFromCollection(amenitiesFC)
	if err != nil {
		return err
	}

	g, err := network.Load(processedNetworkPath(cfg))
	if err != nil {
		return err
	}

	r, err := resolver.New(g, amenities, resolver.Options{
		CandidateLimit: cfg.Analysis.CandidateLimit,
		CountRadiusM:   cfg.Analysis.CountRadiusM,
	})
	if err != nil {
		return err
	}

	for i := range areas {
		areas[i].Distances = r.Resolve(areas[i])
	}

	if err := geofile.WriteCollection(distancesPath(cfg), geofile.CollectionFromAreas(areas, schema)); err != nil {
		return err
	}

	zap.L().Info("distances: snapshot written",
		zap.String("path", distancesPath(cfg)),
		zap.Int("areas", len(areas)),
		zap.Int("amenities", len(amenities)),
	)
	return nil
}

// loadAreas reads an area snapshot and detects its property schema.
func loadAreas(path string) ([]model.Area, geofile.Schema, error) {
	fc, err := geofile.ReadCollection(path)
	if err != nil {
		return nil, geofile.Schema{}, err
	}
	schema, err := geofile.DetectSchema(fc)
	if err != nil {
		return nil, geofile.Schema{}, err
	}
	areas, err := geofile.AreasFromCollection(fc, schema)
	if err != nil {
		return nil, geofile.Schema{}, err
	}
	return areas, schema, nil
}
