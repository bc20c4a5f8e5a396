package equity

import (
	"fmt"
	"sort"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// UnderservedArea is one ranked row of the gap analysis for a category.
// The csv tags drive both the per-category and combined CSV outputs.
type UnderservedArea struct {
	AreaID         string   `csv:"area_id"`
	AreaName       string   `csv:"area_name"`
	Population     int      `csv:"population"`
	MedianIncome   float64  `csv:"median_income"`
	DistanceM      *float64 `csv:"distance_to_nearest_m"`
	CountWithin1km int      `csv:"count_within_1km"`
	GapScore       float64  `csv:"gap_score"`
	NeedScore      float64  `csv:"need_score"`
	AccessScore    float64  `csv:"access_score"`
	Category       string   `csv:"amenity_type"`
}

// Recommendation proposes a new facility site at an underserved area's
// centroid.
type Recommendation struct {
	AreaName         string  `csv:"area_name"`
	Latitude         float64 `csv:"latitude"`
	Longitude        float64 `csv:"longitude"`
	PopulationServed int     `csv:"population_served"`
	GapScore         float64 `csv:"gap_score"`
	Justification    string  `csv:"justification"`
	Category         string  `csv:"amenity_type"`
}

// Underserved filters to populated areas, ranks descending by gap score,
// and returns the top N rows. Areas below the minimum population never
// appear, whatever their gap.
func Underserved(areas []model.Area, cat model.Category, p Params) []UnderservedArea {
	var rows []UnderservedArea
	for i := range areas {
		a := &areas[i]
		eq, ok := a.Equity[cat]
		if !ok {
			continue
		}
		if a.Population < p.MinPopulation {
			continue
		}

		row := UnderservedArea{
			AreaID:       a.ID,
			AreaName:     a.Name,
			Population:   a.Population,
			MedianIncome: a.MedianIncome,
			GapScore:     eq.Gap,
			NeedScore:    eq.Need,
			AccessScore:  eq.Access,
			Category:     string(cat),
		}
		if rec, ok := a.Distances[cat]; ok {
			row.DistanceM = rec.Meters
			row.CountWithin1km = rec.CountWithin1km
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].GapScore > rows[j].GapScore })

	if p.TopN > 0 && len(rows) > p.TopN {
		rows = rows[:p.TopN]
	}
	return rows
}

// Recommend turns ranked underserved areas into siting recommendations at
// each area's centroid, with a justification citing gap score, population,
// and income.
func Recommend(areas []model.Area, underserved []UnderservedArea) []Recommendation {
	centroids := make(map[string][2]float64, len(areas))
	for i := range areas {
		centroids[areas[i].ID] = [2]float64{areas[i].Centroid[0], areas[i].Centroid[1]}
	}

	recs := make([]Recommendation, 0, len(underserved))
	for _, u := range underserved {
		c, ok := centroids[u.AreaID]
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			AreaName:         u.AreaName,
			Latitude:         c[1],
			Longitude:        c[0],
			PopulationServed: u.Population,
			GapScore:         u.GapScore,
			Justification: fmt.Sprintf(
				"High equity gap (score: %.2f). Would serve %d residents with median income $%.0f.",
				u.GapScore, u.Population, u.MedianIncome,
			),
			Category: u.Category,
		})
	}
	return recs
}
