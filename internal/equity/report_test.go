package equity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

func TestAnalyze(t *testing.T) {
	areas := threeAreaFixture()
	for i := range areas {
		areas[i].Centroid = []float64{-118.25, 34.05}
	}

	a, err := Analyze(areas, []model.Category{model.CategoryParks}, DefaultParams())
	require.NoError(t, err)

	require.Len(t, a.Results, 1)
	assert.Equal(t, model.CategoryParks, a.Results[0].Category)
	assert.Equal(t, int64(10000), a.TotalPopulation)
	assert.Equal(t, 3, a.AreaCount)

	// Equity records were attached in place.
	for i := range areas {
		_, ok := areas[i].Equity[model.CategoryParks]
		assert.True(t, ok, "area %s missing equity record", areas[i].ID)
	}
}

func TestAnalyzeSkipsFailingCategory(t *testing.T) {
	areas := threeAreaFixture()
	for i := range areas {
		areas[i].Centroid = []float64{-118.25, 34.05}
	}

	// Libraries has no distance data; parks still completes.
	a, err := Analyze(areas, []model.Category{model.CategoryLibraries, model.CategoryParks}, DefaultParams())
	require.NoError(t, err)
	require.Len(t, a.Results, 1)
	assert.Equal(t, model.CategoryParks, a.Results[0].Category)
}

func TestAnalyzeAllCategoriesFail(t *testing.T) {
	areas := threeAreaFixture()
	_, err := Analyze(areas, []model.Category{model.CategoryLibraries}, DefaultParams())
	assert.Error(t, err)
}

func TestAssemble(t *testing.T) {
	areas := threeAreaFixture()
	for i := range areas {
		areas[i].Centroid = []float64{-118.25, 34.05}
	}
	p := DefaultParams()

	first, err := Analyze(areas, []model.Category{model.CategoryParks}, p)
	require.NoError(t, err)

	// Rebuilding from the already-attached equity records must match the
	// original ranking.
	rebuilt, err := Assemble(areas, model.Categories, p)
	require.NoError(t, err)
	require.Len(t, rebuilt.Results, 1)

	assert.Equal(t, first.Results[0].Category, rebuilt.Results[0].Category)
	require.Equal(t, len(first.Results[0].Underserved), len(rebuilt.Results[0].Underserved))
	for i := range first.Results[0].Underserved {
		assert.Equal(t, first.Results[0].Underserved[i].AreaID, rebuilt.Results[0].Underserved[i].AreaID)
	}
}

func TestAssembleNoEquityRecords(t *testing.T) {
	_, err := Assemble(threeAreaFixture(), model.Categories, DefaultParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gaps stage")
}

func TestWriteOutputs(t *testing.T) {
	areas := threeAreaFixture()
	for i := range areas {
		areas[i].Centroid = []float64{-118.25, 34.05}
	}

	a, err := Analyze(areas, []model.Category{model.CategoryParks}, DefaultParams())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, a.WriteOutputs(dir))

	for _, name := range []string{
		"underserved_areas_parks.csv",
		"recommended_locations_parks.csv",
		"all_underserved_areas.csv",
		"all_recommended_locations.csv",
		"gap_analysis_report.txt",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected output %s", name)
	}

	report, err := os.ReadFile(filepath.Join(dir, "gap_analysis_report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "URBAN EQUITY ANALYSIS")
	assert.Contains(t, string(report), "PARKS - GAP ANALYSIS")
}

func TestRenderReport(t *testing.T) {
	areas := threeAreaFixture()
	for i := range areas {
		areas[i].Centroid = []float64{-118.25, 34.05}
	}

	a, err := Analyze(areas, []model.Category{model.CategoryParks}, DefaultParams())
	require.NoError(t, err)

	out := a.RenderReport()
	assert.Contains(t, out, "Total Population Analyzed: 10000")
	assert.Contains(t, out, "Number of Areas: 3")
	assert.Contains(t, out, "Recommended New Parks Locations:")
	assert.Contains(t, out, "Population in High-Gap Areas")
}
