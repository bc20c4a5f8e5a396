package geofile

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// AmenitiesFromCollection decodes an amenity snapshot. Non-point geometries
// are reduced to their centroid; features with unknown category tags are
// skipped with a warning rather than failing the load.
func AmenitiesFromCollection(fc *geojson.FeatureCollection) ([]model.Amenity, error) {
	if fc == nil {
		return nil, eris.New("geofile: nil amenity collection")
	}

	amenities := make([]model.Amenity, 0, len(fc.Features))
	var skipped int

	for _, f := range fc.Features {
		tag := PropString(f.Properties, "amenity_type")
		cat, err := model.ParseCategory(tag)
		if err != nil {
			skipped++
			continue
		}
		if f.Geometry == nil {
			skipped++
			continue
		}

		var lon, lat float64
		if p, ok := f.Geometry.(*geom.Point); ok {
			lon, lat = p.X(), p.Y()
		} else {
			c, err := CentroidOf(f.Geometry)
			if err != nil {
				skipped++
				continue
			}
			lon, lat = c[0], c[1]
		}

		amenities = append(amenities, model.Amenity{
			Name:     PropString(f.Properties, "name"),
			Category: cat,
			Lon:      lon,
			Lat:      lat,
		})
	}

	if skipped > 0 {
		zap.L().Warn("geofile: skipped amenity features", zap.Int("skipped", skipped))
	}

	return amenities, nil
}

// CollectionFromAmenities encodes amenities as a point FeatureCollection.
func CollectionFromAmenities(amenities []model.Amenity) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(amenities))}
	for _, a := range amenities {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{a.Lon, a.Lat}).SetSRID(4326),
			Properties: map[string]interface{}{
				"name":         a.Name,
				"amenity_type": string(a.Category),
			},
		})
	}
	return fc
}
