package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// unitSquare is a 0.01 x 0.01 degree polygon, about 1.2321 km².
func unitSquare(t *testing.T) *geom.Polygon {
	t.Helper()
	p := geom.NewPolygon(geom.XY)
	ring := geom.NewLinearRingFlat(geom.XY, []float64{
		0, 0, 0.01, 0, 0.01, 0.01, 0, 0.01, 0, 0,
	})
	require.NoError(t, p.Push(ring))
	return p
}

func TestMerge(t *testing.T) {
	areas := []model.Area{
		{ID: "6037101110", Name: "Tract A", Geometry: unitSquare(t), Centroid: geom.Coord{0.005, 0.005}},
		{ID: "06037101220", Name: "Tract B", Geometry: unitSquare(t), Centroid: geom.Coord{0.005, 0.005}},
	}
	demo := map[string]Row{
		"06037101110": {GEOID: "06037101110", Population: 4000, MedianIncome: 62000, MedianAge: 35,
			WhiteAlone: 2000, BlackAlone: 500, AsianAlone: 800, HispanicLatino: 1200},
		"06037101220": {GEOID: "06037101220", Population: 0, MedianIncome: 50000},
	}

	merged, err := Merge(areas, demo)
	require.NoError(t, err)

	// The zero-population tract is filtered out.
	require.Len(t, merged, 1)
	a := merged[0]
	assert.Equal(t, "06037101110", a.ID)
	assert.Equal(t, 4000, a.Population)
	assert.InDelta(t, 50.0, a.PctWhite, 1e-9)
	assert.InDelta(t, 12.5, a.PctBlack, 1e-9)
	assert.InDelta(t, 20.0, a.PctAsian, 1e-9)
	assert.InDelta(t, 30.0, a.PctHispanic, 1e-9)

	// 0.01 x 0.01 degrees at 111 km/degree = 1.1^2 ... = 1.2321 km².
	assert.InDelta(t, 1.2321, a.AreaKm2, 1e-4)
	assert.InDelta(t, 4000/1.2321, a.PopulationDensity, 1)
}

func TestMergeKeepsAllWhenFilterEmpties(t *testing.T) {
	areas := []model.Area{
		{ID: "06037101110", Geometry: unitSquare(t)},
	}
	demo := map[string]Row{
		"06037101110": {GEOID: "06037101110", Population: 0},
	}

	merged, err := Merge(areas, demo)
	require.NoError(t, err)
	assert.Len(t, merged, 1, "empty filtered set falls back to the full set")
}

func TestMergeUnmatchedAreaKept(t *testing.T) {
	areas := []model.Area{
		{ID: "06037101110", Geometry: unitSquare(t)},
		{ID: "99999999999", Geometry: unitSquare(t)},
	}
	demo := map[string]Row{
		"06037101110": {GEOID: "06037101110", Population: 100},
	}

	merged, err := Merge(areas, demo)
	require.NoError(t, err)

	// The unmatched area survives the join but has no population, so the
	// filter drops it while the matched one remains.
	require.Len(t, merged, 1)
	assert.Equal(t, "06037101110", merged[0].ID)
}

func TestMergeNoAreas(t *testing.T) {
	_, err := Merge(nil, map[string]Row{})
	assert.Error(t, err)
}
