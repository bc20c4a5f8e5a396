package model

import (
	"github.com/rotisserie/eris"
)

// Category identifies an amenity category tracked by the analysis.
type Category string

// The fixed set of amenity categories.
const (
	CategoryParks        Category = "parks"
	CategoryHospitals    Category = "hospitals"
	CategoryUrgentCare   Category = "urgent_care"
	CategoryPharmacies   Category = "pharmacies"
	CategoryGrocery      Category = "grocery_stores"
	CategorySchools      Category = "schools"
	CategoryTransitStops Category = "transit_stops"
	CategoryLibraries    Category = "libraries"
)

// Categories lists every category in a fixed iteration order. Scoring and
// reporting iterate this slice so outputs are deterministic.
var Categories = []Category{
	CategoryParks,
	CategoryHospitals,
	CategoryUrgentCare,
	CategoryPharmacies,
	CategoryGrocery,
	CategorySchools,
	CategoryTransitStops,
	CategoryLibraries,
}

// ParseCategory validates a category tag read from input data.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", eris.Errorf("model: unknown amenity category %q", s)
}

func (c Category) String() string { return string(c) }
