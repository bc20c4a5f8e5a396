package main

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/boundary"
	"github.com/urbanmetrics/walkability-cli/internal/census"
	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/network"
	"github.com/urbanmetrics/walkability-cli/pkg/acs"
	"github.com/urbanmetrics/walkability-cli/pkg/overpass"
)

var (
	collectSkipBoundaries   bool
	collectSkipDemographics bool
	collectSkipAmenities    bool
	collectSkipNetwork      bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Download boundaries, demographics, amenity, and street network data",
	Long:  "Fetches TIGER tract boundaries, ACS demographics, OpenStreetMap amenities, and the walkable street network for the configured county into the raw data directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !collectSkipBoundaries {
			if err := collectBoundaries(ctx); err != nil {
				return err
			}
		}
		if !collectSkipDemographics {
			if err := collectDemographics(ctx); err != nil {
				return err
			}
		}
		if !collectSkipAmenities {
			if err := collectAmenities(ctx); err != nil {
				return err
			}
		}
		if !collectSkipNetwork {
			if err := collectNetwork(ctx); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().BoolVar(&collectSkipBoundaries, "skip-boundaries", false, "skip TIGER boundary download")
	collectCmd.Flags().BoolVar(&collectSkipDemographics, "skip-demographics", false, "skip ACS demographics fetch")
	collectCmd.Flags().BoolVar(&collectSkipAmenities, "skip-amenities", false, "skip Overpass amenity fetch")
	collectCmd.Flags().BoolVar(&collectSkipNetwork, "skip-network", false, "skip Overpass street network fetch")
	rootCmd.AddCommand(collectCmd)
}

func collectBoundaries(ctx context.Context) error {
	shpPath, err := boundary.Fetch(ctx, cfg.Collect.TigerYear, cfg.Collect.StateFIPS, cfg.Data.RawDir)
	if err != nil {
		return err
	}

	areas, err := boundary.ParseTracts(shpPath, cfg.Collect.CountyFIPS)
	if err != nil {
		return err
	}

	fc := geofile.CollectionFromAreas(areas, geofile.TractSchema)
	if err := geofile.WriteCollection(rawBoundariesPath(cfg), fc); err != nil {
		return err
	}

	zap.L().Info("collect: boundaries written",
		zap.String("path", rawBoundariesPath(cfg)),
		zap.Int("tracts", len(areas)),
	)
	return nil
}

func collectDemographics(ctx context.Context) error {
	client := acs.NewClient(
		acs.WithBaseURL(cfg.Collect.ACSBaseURL),
		acs.WithAPIKey(cfg.Collect.CensusAPIKey),
		acs.WithRateLimit(cfg.Collect.RatePerSec),
	)

	rows, err := client.FetchTracts(ctx, cfg.Collect.StateFIPS, cfg.Collect.CountyFIPS)
	if err != nil {
		return err
	}
	return census.WriteCSV(rawDemographicsPath(cfg), rows)
}

func collectAmenities(ctx context.Context) error {
	fc, err := geofile.ReadCollection(rawBoundariesPath(cfg))
	if err != nil {
		return eris.Wrap(err, "collect: boundaries must be downloaded before amenities")
	}

	box, err := studyBBox(fc)
	if err != nil {
		return err
	}

	client := overpass.NewClient(
		overpass.WithBaseURL(cfg.Collect.OverpassURL),
		overpass.WithRateLimit(cfg.Collect.RatePerSec),
	)

	amenities, err := client.FetchAll(ctx, box)
	if err != nil && len(amenities) == 0 {
		return err
	}
	if err != nil {
		zap.L().Warn("collect: some amenity categories failed", zap.Error(err))
	}

	out := geofile.CollectionFromAmenities(amenities)
	if err := geofile.WriteCollection(rawAmenitiesPath(cfg), out); err != nil {
		return err
	}

	zap.L().Info("collect: amenities written",
		zap.String("path", rawAmenitiesPath(cfg)),
		zap.Int("amenities", len(amenities)),
	)
	return nil
}

func collectNetwork(ctx context.Context) error {
	fc, err := geofile.ReadCollection(rawBoundariesPath(cfg))
	if err != nil {
		return eris.Wrap(err, "collect: boundaries must be downloaded before the street network")
	}

	box, err := studyBBox(fc)
	if err != nil {
		return err
	}

	client := overpass.NewClient(
		overpass.WithBaseURL(cfg.Collect.OverpassURL),
		overpass.WithRateLimit(cfg.Collect.RatePerSec),
	)

	roadNodes, ways, err := client.FetchStreetNetwork(ctx, box)
	if err != nil {
		return err
	}

	nodes := make([]network.Node, len(roadNodes))
	for i, rn := range roadNodes {
		nodes[i] = network.Node{ID: rn.ID, Lon: rn.Lon, Lat: rn.Lat}
	}
	wayNodes := make([][]int64, len(ways))
	for i, w := range ways {
		wayNodes[i] = w.NodeIDs
	}

	g, err := network.BuildWalkGraph(nodes, wayNodes)
	if err != nil {
		return err
	}
	if err := g.Save(rawNetworkPath(cfg)); err != nil {
		return err
	}

	zap.L().Info("collect: street network written",
		zap.String("path", rawNetworkPath(cfg)),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return nil
}

// studyBBox computes the bounding box of every boundary feature.
func studyBBox(fc *geojson.FeatureCollection) (overpass.BBox, error) {
	box := overpass.BBox{
		South: math.Inf(1), West: math.Inf(1),
		North: math.Inf(-1), East: math.Inf(-1),
	}

	var found bool
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bounds()
		if b == nil {
			continue
		}
		box.West = math.Min(box.West, b.Min(0))
		box.South = math.Min(box.South, b.Min(1))
		box.East = math.Max(box.East, b.Max(0))
		box.North = math.Max(box.North, b.Max(1))
		found = true
	}
	if !found {
		return overpass.BBox{}, eris.New("collect: no boundary geometry to derive bounding box from")
	}
	return box, nil
}
