package equity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

func rankedFixture() []model.Area {
	mk := func(id string, pop int, gap float64) model.Area {
		return model.Area{
			ID: id, Name: "Tract " + id, Population: pop, MedianIncome: 45000,
			Centroid: geom.Coord{-118.25, 34.05},
			Distances: map[model.Category]model.DistanceRecord{
				model.CategoryParks: {Meters: f(1200), CountWithin1km: 1},
			},
			Equity: map[model.Category]model.EquityRecord{
				model.CategoryParks: {Need: 0.8, Access: 1 - gap/0.8, Gap: gap},
			},
		}
	}
	return []model.Area{
		mk("a", 4000, 0.30),
		mk("b", 500, 0.90), // below the population floor
		mk("c", 2500, 0.75),
		mk("d", 8000, 0.60),
	}
}

func TestUnderserved(t *testing.T) {
	p := DefaultParams()
	p.TopN = 10

	rows := Underserved(rankedFixture(), model.CategoryParks, p)
	require.Len(t, rows, 3, "area below min population must be excluded")

	assert.Equal(t, "c", rows[0].AreaID)
	assert.Equal(t, "d", rows[1].AreaID)
	assert.Equal(t, "a", rows[2].AreaID)

	// Distance and count carry through from the distance record.
	require.NotNil(t, rows[0].DistanceM)
	assert.Equal(t, 1200.0, *rows[0].DistanceM)
	assert.Equal(t, 1, rows[0].CountWithin1km)
	assert.Equal(t, string(model.CategoryParks), rows[0].Category)
}

func TestUnderservedTopN(t *testing.T) {
	p := DefaultParams()
	p.TopN = 2

	rows := Underserved(rankedFixture(), model.CategoryParks, p)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].AreaID)
	assert.Equal(t, "d", rows[1].AreaID)
}

func TestUnderservedSkipsAreasWithoutEquity(t *testing.T) {
	areas := rankedFixture()
	areas[2].Equity = nil

	rows := Underserved(areas, model.CategoryParks, DefaultParams())
	for _, r := range rows {
		assert.NotEqual(t, "c", r.AreaID)
	}
}

func TestRecommend(t *testing.T) {
	areas := rankedFixture()
	rows := Underserved(areas, model.CategoryParks, DefaultParams())

	recs := Recommend(areas, rows)
	require.Len(t, recs, len(rows))

	top := recs[0]
	assert.Equal(t, "Tract c", top.AreaName)
	assert.InDelta(t, 34.05, top.Latitude, 1e-9)
	assert.InDelta(t, -118.25, top.Longitude, 1e-9)
	assert.Equal(t, 2500, top.PopulationServed)
	assert.Contains(t, top.Justification, "High equity gap (score: 0.75)")
	assert.Contains(t, top.Justification, "2500 residents")
	assert.Contains(t, top.Justification, "$45000")
}

func TestRecommendSkipsUnknownArea(t *testing.T) {
	areas := rankedFixture()
	rows := []UnderservedArea{{AreaID: "nope", AreaName: "ghost", Population: 1}}

	recs := Recommend(areas, rows)
	assert.Empty(t, recs)
}
