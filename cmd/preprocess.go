package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/amenity"
	"github.com/urbanmetrics/walkability-cli/internal/census"
	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/network"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Merge demographics, clean amenities, and validate the street network",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return stagePreprocess(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}

func stagePreprocess(ctx context.Context) error {
	_ = ctx

	// Boundaries + demographics -> processed areas snapshot.
	fc, err := geofile.ReadCollection(rawBoundariesPath(cfg))
	if err != nil {
		return err
	}
	schema, err := geofile.DetectSchema(fc)
	if err != nil {
		return err
	}
	areas, err := geofile.AreasFromCollection(fc, schema)
	if err != nil {
		return err
	}

	demo, err := census.LoadCSV(rawDemographicsPath(cfg))
	if err != nil {
		return err
	}
	areas, err = census.Merge(areas, demo)
	if err != nil {
		return err
	}
	if err := geofile.WriteCollection(processedAreasPath(cfg), geofile.CollectionFromAreas(areas, schema)); err != nil {
		return err
	}
	zap.L().Info("preprocess: areas snapshot written",
		zap.String("path", processedAreasPath(cfg)),
		zap.Int("areas", len(areas)),
	)

	// Raw amenities -> cleaned amenities snapshot.
	rawAmenities, err := geofile.ReadCollection(rawAmenitiesPath(cfg))
	if err != nil {
		return err
	}
	amenities, err := geofile.AmenitiesFromCollection(rawAmenities)
	if err != nil {
		return err
	}
	amenities = amenity.Clean(amenities)
	if err := geofile.WriteCollection(processedAmenitiesPath(cfg), geofile.CollectionFromAmenities(amenities)); err != nil {
		return err
	}

	// Street network -> largest strongly connected component.
	g, err := network.Load(rawNetworkPath(cfg))
	if err != nil {
		return err
	}
	before := g.NodeCount()
	g = g.LargestSCC()
	if g.NodeCount() < before {
		zap.L().Info("preprocess: network reduced to largest connected component",
			zap.Int("nodes_before", before),
			zap.Int("nodes_after", g.NodeCount()),
		)
	}
	if err := g.Save(processedNetworkPath(cfg)); err != nil {
		return err
	}

	zap.L().Info("preprocess: complete")
	return nil
}
