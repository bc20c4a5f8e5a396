package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/urbanmetrics/walkability-cli/internal/equity"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

func testAnalysis() *equity.Analysis {
	dist := 1350.0
	return &equity.Analysis{
		AreaCount:       2,
		TotalPopulation: 8300,
		Results: []equity.CategoryResult{
			{
				Category: model.CategoryParks,
				Underserved: []equity.UnderservedArea{
					{
						AreaID: "06037101110", AreaName: "Tract A", Population: 5200,
						MedianIncome: 41000, DistanceM: &dist, CountWithin1km: 0,
						GapScore: 0.81, NeedScore: 0.9, AccessScore: 0.1, Category: "parks",
					},
					{
						AreaID: "06037101220", AreaName: "Tract B", Population: 3100,
						MedianIncome: 52000, DistanceM: nil,
						GapScore: 0.64, NeedScore: 0.8, AccessScore: 0.2, Category: "parks",
					},
				},
				Recommendations: []equity.Recommendation{
					{
						AreaName: "Tract A", Latitude: 34.05, Longitude: -118.25,
						PopulationServed: 5200, GapScore: 0.81,
						Justification: "High equity gap (score: 0.81).", Category: "parks",
					},
				},
				HighGapPopulation: 5200,
			},
		},
	}
}

func TestWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "gap_analysis.xlsx")
	require.NoError(t, Workbook(testAnalysis(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	parks, ok := f.Sheet["underserved_parks"]
	require.True(t, ok, "per-category sheet present")
	// Header plus two data rows.
	require.Len(t, parks.Rows, 3)
	assert.Equal(t, "Area ID", parks.Rows[0].Cells[0].String())
	assert.Equal(t, "06037101110", parks.Rows[1].Cells[0].String())
	assert.Equal(t, "Tract A", parks.Rows[1].Cells[1].String())

	// A nil distance renders as an empty cell, not 0.
	assert.Equal(t, "", parks.Rows[2].Cells[4].String())

	recs, ok := f.Sheet["recommendations"]
	require.True(t, ok)
	require.Len(t, recs.Rows, 2)
	assert.Equal(t, "parks", recs.Rows[1].Cells[0].String())
	assert.Equal(t, "Tract A", recs.Rows[1].Cells[1].String())
}

func TestWorkbookEmptyAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gap_analysis.xlsx")
	a := &equity.Analysis{}

	require.NoError(t, Workbook(a, path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	_, ok := f.Sheet["recommendations"]
	assert.True(t, ok, "recommendations sheet exists even with no results")
}
