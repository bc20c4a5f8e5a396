package geofile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

func f(v float64) *float64 { return &v }

func scoredArea(t *testing.T) model.Area {
	t.Helper()
	p := geom.NewPolygon(geom.XY)
	require.NoError(t, p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		-118.26, 34.06, -118.24, 34.06, -118.24, 34.08, -118.26, 34.08, -118.26, 34.06,
	})))

	return model.Area{
		ID:                "06037101110",
		Name:              "Tract A",
		Geometry:          p,
		Centroid:          geom.Coord{-118.25, 34.07},
		Population:        4200,
		MedianIncome:      55000,
		MedianAge:         36.5,
		PctWhite:          40,
		PctBlack:          10,
		PctAsian:          25,
		PctHispanic:       30,
		AreaKm2:           4.9,
		PopulationDensity: 857.1,
		Distances: map[model.Category]model.DistanceRecord{
			model.CategoryParks:   {Meters: f(620), Method: model.DistanceRouted, CountWithin1km: 2},
			model.CategoryGrocery: {Meters: nil, Method: model.DistanceRouted, CountWithin1km: 0},
		},
		Scores: map[model.Category]float64{
			model.CategoryParks:   83.5,
			model.CategoryGrocery: 0,
		},
		Index: 45.8,
		Class: "Poor",
		Equity: map[model.Category]model.EquityRecord{
			model.CategoryParks: {Need: 0.7, Access: 0.4, Gap: 0.42},
		},
	}
}

func TestAreasCollectionRoundTrip(t *testing.T) {
	in := []model.Area{scoredArea(t)}
	fc := CollectionFromAreas(in, TractSchema)

	// Through disk and back, exercising real JSON number handling.
	path := filepath.Join(t.TempDir(), "areas.geojson")
	require.NoError(t, WriteCollection(path, fc))
	loaded, err := ReadCollection(path)
	require.NoError(t, err)

	out, err := AreasFromCollection(loaded, TractSchema)
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "06037101110", got.ID)
	assert.Equal(t, "Tract A", got.Name)
	assert.Equal(t, 4200, got.Population)
	assert.InDelta(t, 55000, got.MedianIncome, 1e-9)
	assert.InDelta(t, -118.25, got.Centroid[0], 1e-9)
	assert.InDelta(t, 34.07, got.Centroid[1], 1e-9)

	parks := got.Distances[model.CategoryParks]
	require.NotNil(t, parks.Meters)
	assert.InDelta(t, 620, *parks.Meters, 1e-9)
	assert.Equal(t, model.DistanceRouted, parks.Method)
	assert.Equal(t, 2, parks.CountWithin1km)

	// A null distance survives the round trip as nil, not zero.
	grocery, ok := got.Distances[model.CategoryGrocery]
	require.True(t, ok)
	assert.Nil(t, grocery.Meters)

	assert.InDelta(t, 83.5, got.Scores[model.CategoryParks], 1e-9)
	assert.InDelta(t, 45.8, got.Index, 1e-9)
	assert.Equal(t, "Poor", got.Class)

	eq := got.Equity[model.CategoryParks]
	assert.InDelta(t, 0.42, eq.Gap, 1e-9)
	assert.InDelta(t, 0.7, eq.Need, 1e-9)
}

func TestAreasFromCollectionMissingID(t *testing.T) {
	fc := CollectionFromAreas([]model.Area{scoredArea(t)}, TractSchema)
	delete(fc.Features[0].Properties, "GEOID")

	_, err := AreasFromCollection(fc, TractSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOID")
}

func TestAmenitiesCollectionRoundTrip(t *testing.T) {
	in := []model.Amenity{
		{Name: "Echo Park", Category: model.CategoryParks, Lon: -118.26, Lat: 34.078},
		{Name: "Vons", Category: model.CategoryGrocery, Lon: -118.25, Lat: 34.07},
	}

	fc := CollectionFromAmenities(in)
	path := filepath.Join(t.TempDir(), "amenities.geojson")
	require.NoError(t, WriteCollection(path, fc))
	loaded, err := ReadCollection(path)
	require.NoError(t, err)

	out, err := AmenitiesFromCollection(loaded)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Name, out[0].Name)
	assert.Equal(t, in[0].Category, out[0].Category)
	assert.InDelta(t, in[0].Lon, out[0].Lon, 1e-9)
	assert.InDelta(t, in[0].Lat, out[0].Lat, 1e-9)
}

func TestAmenitiesFromCollectionSkipsUnknownCategory(t *testing.T) {
	fc := CollectionFromAmenities([]model.Amenity{
		{Name: "ok", Category: model.CategoryParks, Lon: -118.26, Lat: 34.078},
	})
	fc.Features = append(fc.Features, pointFeature("x", map[string]interface{}{
		"name": "mystery", "amenity_type": "casinos",
	}))

	out, err := AmenitiesFromCollection(fc)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
