package walkscore

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Tier groups categories by frequency of use; each tier carries its own
// distance thresholds.
type Tier string

const (
	TierDaily      Tier = "daily"
	TierRegular    Tier = "regular"
	TierOccasional Tier = "occasional"
)

// Profile is the full scoring parameterization: composite weights, the tier
// each category belongs to, and per-tier curve thresholds. It is passed
// explicitly into every computation; there is no package-level mutable state.
type Profile struct {
	Weights    map[model.Category]float64 `yaml:"weights"`
	Tiers      map[model.Category]Tier    `yaml:"tiers"`
	Thresholds map[Tier]Thresholds        `yaml:"thresholds"`
}

// DefaultProfile returns the documented defaults: weights summing to 1.0 and
// the daily/regular/occasional tier table.
func DefaultProfile() Profile {
	return Profile{
		Weights: map[model.Category]float64{
			model.CategoryParks:        0.20,
			model.CategoryGrocery:      0.25,
			model.CategoryTransitStops: 0.15,
			model.CategorySchools:      0.10,
			model.CategoryHospitals:    0.10,
			model.CategoryPharmacies:   0.10,
			model.CategoryLibraries:    0.05,
			model.CategoryUrgentCare:   0.05,
		},
		Tiers: map[model.Category]Tier{
			model.CategoryParks:        TierDaily,
			model.CategoryGrocery:      TierDaily,
			model.CategoryTransitStops: TierDaily,
			model.CategorySchools:      TierRegular,
			model.CategoryLibraries:    TierRegular,
			model.CategoryHospitals:    TierOccasional,
			model.CategoryPharmacies:   TierOccasional,
			model.CategoryUrgentCare:   TierOccasional,
		},
		Thresholds: map[Tier]Thresholds{
			TierDaily:      {IdealM: 400, AcceptableM: 800, PoorM: 1500},
			TierRegular:    {IdealM: 600, AcceptableM: 1200, PoorM: 2000},
			TierOccasional: {IdealM: 800, AcceptableM: 1500, PoorM: 3000},
		},
	}
}

// LoadProfile reads a YAML scoring profile. Omitted sections fall back to
// the defaults, so a profile can override just the weights.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, eris.Wrapf(err, "walkscore: read profile %s", path)
	}

	var wrapper struct {
		Scoring Profile `yaml:"scoring"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Profile{}, eris.Wrap(err, "walkscore: parse profile")
	}

	p := wrapper.Scoring
	defaults := DefaultProfile()
	if len(p.Weights) == 0 {
		p.Weights = defaults.Weights
	}
	if len(p.Tiers) == 0 {
		p.Tiers = defaults.Tiers
	}
	if len(p.Thresholds) == 0 {
		p.Thresholds = defaults.Thresholds
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that the profile covers every category with weights
// summing to 1.0 and complete tier thresholds.
func (p Profile) Validate() error {
	var sum float64
	for _, cat := range model.Categories {
		w, ok := p.Weights[cat]
		if !ok {
			return eris.Errorf("walkscore: profile missing weight for %s", cat)
		}
		if w < 0 {
			return eris.Errorf("walkscore: negative weight for %s", cat)
		}
		sum += w

		tier, ok := p.Tiers[cat]
		if !ok {
			return eris.Errorf("walkscore: profile missing tier for %s", cat)
		}
		t, ok := p.Thresholds[tier]
		if !ok {
			return eris.Errorf("walkscore: profile missing thresholds for tier %s", tier)
		}
		if !(t.IdealM < t.AcceptableM && t.AcceptableM < t.PoorM) {
			return eris.Errorf("walkscore: thresholds for tier %s must be strictly increasing", tier)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return eris.Errorf("walkscore: weights sum to %.4f, want 1.0", sum)
	}
	return nil
}

// ThresholdsFor returns the curve thresholds for a category.
func (p Profile) ThresholdsFor(cat model.Category) Thresholds {
	return p.Thresholds[p.Tiers[cat]]
}
