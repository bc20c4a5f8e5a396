package walkscore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

func TestDefaultProfileValid(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.Validate())

	var sum float64
	for _, w := range p.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Every category resolves to a complete threshold set.
	for _, cat := range model.Categories {
		th := p.ThresholdsFor(cat)
		assert.Less(t, th.IdealM, th.AcceptableM, "category %s", cat)
		assert.Less(t, th.AcceptableM, th.PoorM, "category %s", cat)
	}
}

func TestDefaultProfileTiers(t *testing.T) {
	p := DefaultProfile()

	assert.Equal(t, Thresholds{IdealM: 400, AcceptableM: 800, PoorM: 1500}, p.ThresholdsFor(model.CategoryParks))
	assert.Equal(t, Thresholds{IdealM: 600, AcceptableM: 1200, PoorM: 2000}, p.ThresholdsFor(model.CategorySchools))
	assert.Equal(t, Thresholds{IdealM: 800, AcceptableM: 1500, PoorM: 3000}, p.ThresholdsFor(model.CategoryHospitals))
}

func TestLoadProfilePartialOverride(t *testing.T) {
	// Overriding only the thresholds keeps the default weights and tiers.
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
scoring:
  thresholds:
    daily:
      ideal_m: 300
      acceptable_m: 600
      poor_m: 1000
    regular:
      ideal_m: 600
      acceptable_m: 1200
      poor_m: 2000
    occasional:
      ideal_m: 800
      acceptable_m: 1500
      poor_m: 3000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, Thresholds{IdealM: 300, AcceptableM: 600, PoorM: 1000}, p.ThresholdsFor(model.CategoryParks))
	assert.InDelta(t, 0.25, p.Weights[model.CategoryGrocery], 1e-9)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	t.Run("missing weight", func(t *testing.T) {
		p := DefaultProfile()
		delete(p.Weights, model.CategoryParks)
		assert.ErrorContains(t, p.Validate(), "missing weight")
	})

	t.Run("weights do not sum to one", func(t *testing.T) {
		p := DefaultProfile()
		p.Weights = map[model.Category]float64{}
		for cat, w := range DefaultProfile().Weights {
			p.Weights[cat] = w
		}
		p.Weights[model.CategoryParks] = 0.5
		assert.ErrorContains(t, p.Validate(), "sum")
	})

	t.Run("non increasing thresholds", func(t *testing.T) {
		p := DefaultProfile()
		p.Thresholds = map[Tier]Thresholds{
			TierDaily:      {IdealM: 800, AcceptableM: 800, PoorM: 1500},
			TierRegular:    {IdealM: 600, AcceptableM: 1200, PoorM: 2000},
			TierOccasional: {IdealM: 800, AcceptableM: 1500, PoorM: 3000},
		}
		assert.ErrorContains(t, p.Validate(), "strictly increasing")
	})

	t.Run("missing tier", func(t *testing.T) {
		p := DefaultProfile()
		delete(p.Tiers, model.CategoryLibraries)
		assert.ErrorContains(t, p.Validate(), "missing tier")
	})
}
