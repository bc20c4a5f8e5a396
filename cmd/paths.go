package main

import (
	"path/filepath"

	"github.com/urbanmetrics/walkability-cli/internal/config"
)

// Fixed snapshot names inside the configured data directories. Each stage
// reads the previous stage's snapshot and writes its own.
func rawBoundariesPath(c *config.Config) string {
	return filepath.Join(c.Data.RawDir, "census_tracts.geojson")
}

func rawDemographicsPath(c *config.Config) string {
	return filepath.Join(c.Data.RawDir, "demographics.csv")
}

func rawAmenitiesPath(c *config.Config) string {
	return filepath.Join(c.Data.RawDir, "amenities.geojson")
}

func rawNetworkPath(c *config.Config) string {
	return filepath.Join(c.Data.RawDir, "street_network.json")
}

func processedAreasPath(c *config.Config) string {
	return filepath.Join(c.Data.ProcessedDir, "areas.geojson")
}

func processedAmenitiesPath(c *config.Config) string {
	return filepath.Join(c.Data.ProcessedDir, "amenities.geojson")
}

func processedNetworkPath(c *config.Config) string {
	return filepath.Join(c.Data.ProcessedDir, "street_network.json")
}

func distancesPath(c *config.Config) string {
	return filepath.Join(c.Data.ProcessedDir, "areas_with_distances.geojson")
}

func scoresPath(c *config.Config) string {
	return filepath.Join(c.Data.ProcessedDir, "areas_with_scores.geojson")
}

func equityPath(c *config.Config) string {
	return filepath.Join(c.Data.ProcessedDir, "areas_with_equity.geojson")
}

func workbookPath(c *config.Config) string {
	return filepath.Join(c.Data.OutputsDir, "gap_analysis.xlsx")
}

func mapPath(c *config.Config) string {
	return filepath.Join(c.Data.OutputsDir, "walkability_map.html")
}
