package geofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	geojson "github.com/twpayne/go-geom/encoding/geojson"
)

func pointFeature(id string, props map[string]interface{}) *geojson.Feature {
	return &geojson.Feature{
		ID:         id,
		Geometry:   geom.NewPointFlat(geom.XY, []float64{-118.25, 34.05}).SetSRID(4326),
		Properties: props,
	}
}

func TestWriteReadCollectionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.geojson")
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		pointFeature("a", map[string]interface{}{"GEOID": "06037101110", "NAME": "Tract A"}),
	}}

	require.NoError(t, WriteCollection(path, fc))

	got, err := ReadCollection(path)
	require.NoError(t, err)
	require.Len(t, got.Features, 1)
	assert.Equal(t, "06037101110", PropString(got.Features[0].Properties, "GEOID"))
}

func TestWriteCollectionLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.geojson")
	fc := &geojson.FeatureCollection{}

	require.NoError(t, WriteCollection(path, fc))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.geojson", entries[0].Name())
}

func TestReadCollectionMissing(t *testing.T) {
	_, err := ReadCollection(filepath.Join(t.TempDir(), "absent.geojson"))
	assert.Error(t, err)
}

func TestDetectSchema(t *testing.T) {
	tract := &geojson.FeatureCollection{Features: []*geojson.Feature{
		pointFeature("a", map[string]interface{}{"GEOID": "06037101110", "NAME": "Tract A"}),
	}}
	s, err := DetectSchema(tract)
	require.NoError(t, err)
	assert.Equal(t, TractSchema, s)

	hood := &geojson.FeatureCollection{Features: []*geojson.Feature{
		pointFeature("a", map[string]interface{}{"neighborhood_id": "n1", "neighborhood_name": "Echo Park"}),
	}}
	s, err = DetectSchema(hood)
	require.NoError(t, err)
	assert.Equal(t, NeighborhoodSchema, s)

	_, err = DetectSchema(&geojson.FeatureCollection{})
	assert.Error(t, err)

	unknown := &geojson.FeatureCollection{Features: []*geojson.Feature{
		pointFeature("a", map[string]interface{}{"foo": "bar"}),
	}}
	_, err = DetectSchema(unknown)
	assert.Error(t, err)
}

func TestApproxMeters(t *testing.T) {
	a := geom.Coord{0, 0}
	b := geom.Coord{0.01, 0}
	assert.InDelta(t, 1110, ApproxMeters(a, b), 1e-6)

	c := geom.Coord{0.003, 0.004}
	assert.InDelta(t, 0.005*111000, ApproxMeters(a, c), 1e-6)
}

func TestAreaKm2(t *testing.T) {
	p := geom.NewPolygon(geom.XY)
	require.NoError(t, p.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		0, 0, 0.01, 0, 0.01, 0.01, 0, 0.01, 0, 0,
	})))

	assert.InDelta(t, 1.2321, AreaKm2(p), 1e-4)
	assert.Equal(t, 0.0, AreaKm2(geom.NewPointFlat(geom.XY, []float64{0, 0})))
}

func TestPropCoercion(t *testing.T) {
	props := map[string]interface{}{
		"str":     "hello",
		"numeric": 42.0,
		"idnum":   6037101110.0,
		"strnum":  " 3.5 ",
		"null":    nil,
	}

	assert.Equal(t, "hello", PropString(props, "str"))
	assert.Equal(t, "6037101110", PropString(props, "idnum"), "integral numbers format without exponent")
	assert.Equal(t, "", PropString(props, "null"))
	assert.Equal(t, "", PropString(props, "absent"))

	f, ok := PropFloat(props, "numeric")
	assert.True(t, ok)
	assert.Equal(t, 42.0, f)

	f, ok = PropFloat(props, "strnum")
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)

	_, ok = PropFloat(props, "null")
	assert.False(t, ok)
	_, ok = PropFloat(props, "str")
	assert.False(t, ok)

	assert.Equal(t, 42, PropInt(props, "numeric"))
	assert.Equal(t, 0, PropInt(props, "absent"))
}
