// Package equity combines normalized socioeconomic need with amenity access
// into a bounded gap metric and ranks underserved areas.
//
// Note on defaults: need sub-terms with invalid source data default to a
// neutral 0.5, while access sub-terms default to 0 (assume worst access).
// The asymmetry is deliberate policy carried over from the original
// analysis and is pending product-owner review; do not unify the defaults.
package equity

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Params holds every tunable of the gap analysis with the documented
// defaults.
type Params struct {
	MinPopulation    int
	TopN             int
	HighGapThreshold float64

	// Need composition.
	IncomeWeight  float64
	DensityWeight float64

	// Access composition.
	DistanceWeight float64
	CountWeight    float64
	ScoreWeight    float64
}

// DefaultParams returns the documented policy constants.
func DefaultParams() Params {
	return Params{
		MinPopulation:    1000,
		TopN:             10,
		HighGapThreshold: 0.5,
		IncomeWeight:     0.7,
		DensityWeight:    0.3,
		DistanceWeight:   0.4,
		CountWeight:      0.3,
		ScoreWeight:      0.3,
	}
}

// Normalize min-max scales values to [0,1] over the valid subset. Invalid
// entries are left at 0 for the caller to overwrite with its default policy.
// When the valid subset has no variance every valid value maps to 0.5.
// Scaling is relative to the current area collection: rerunning over a
// different subset shifts all normalized values.
func Normalize(values []float64, valid []bool) []float64 {
	out := make([]float64, len(values))

	first := true
	var min, max float64
	for i, v := range values {
		if !valid[i] {
			continue
		}
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if first {
		return out // no valid values at all
	}

	for i, v := range values {
		if !valid[i] {
			continue
		}
		if max == min {
			out[i] = 0.5
			continue
		}
		out[i] = (v - min) / (max - min)
	}
	return out
}

// CalculateScores computes need, access, and gap for one category across
// the whole area collection. The result slice is parallel to areas.
// Normalization denominators come from this collection only.
func CalculateScores(areas []model.Area, cat model.Category, p Params) ([]model.EquityRecord, error) {
	if len(areas) == 0 {
		return nil, eris.New("equity: no areas to score")
	}

	// Distance data for the category must exist somewhere in the collection;
	// a wholly absent column means the distances stage has not run.
	anyDistance := false
	for i := range areas {
		if _, ok := areas[i].Distances[cat]; ok {
			anyDistance = true
			break
		}
	}
	if !anyDistance {
		return nil, eris.Errorf("equity: missing %s distance data; run the distances stage first", cat)
	}

	n := len(areas)

	// Need: lower income and higher density both raise need. Invalid values
	// stay at the neutral 0.5 default.
	incomes := make([]float64, n)
	incomeValid := make([]bool, n)
	densities := make([]float64, n)
	densityValid := make([]bool, n)
	for i := range areas {
		incomes[i] = areas[i].MedianIncome
		incomeValid[i] = areas[i].MedianIncome > 0
		densities[i] = areas[i].PopulationDensity
		densityValid[i] = areas[i].PopulationDensity > 0
	}
	incomeNorm := Normalize(incomes, incomeValid)
	densityNorm := Normalize(densities, densityValid)

	// Access: distance, nearby count, and the existing walkability sub-score.
	// Missing values default to 0, the worst-access assumption.
	distances := make([]float64, n)
	distanceValid := make([]bool, n)
	counts := make([]float64, n)
	countValid := make([]bool, n)
	for i := range areas {
		rec, ok := areas[i].Distances[cat]
		if ok && rec.Meters != nil && *rec.Meters > 0 {
			distances[i] = *rec.Meters
			distanceValid[i] = true
		}
		if ok {
			counts[i] = float64(rec.CountWithin1km)
			countValid[i] = true
		}
	}
	distanceNorm := Normalize(distances, distanceValid)
	countNorm := Normalize(counts, countValid)

	records := make([]model.EquityRecord, n)
	for i := range areas {
		incomeNeed := 0.5
		if incomeValid[i] {
			incomeNeed = 1 - incomeNorm[i]
		}
		densityNeed := 0.5
		if densityValid[i] {
			densityNeed = densityNorm[i]
		}
		need := p.IncomeWeight*incomeNeed + p.DensityWeight*densityNeed

		var distanceScore float64
		if distanceValid[i] {
			distanceScore = 1 - distanceNorm[i]
		}
		var countScore float64
		if countValid[i] {
			countScore = countNorm[i]
		}
		var existingScore float64
		if s, ok := areas[i].Scores[cat]; ok {
			existingScore = s / 100
		}
		access := p.DistanceWeight*distanceScore + p.CountWeight*countScore + p.ScoreWeight*existingScore

		records[i] = model.EquityRecord{
			Need:   need,
			Access: access,
			Gap:    need * (1 - access),
		}
	}

	logRange(cat, records)
	return records, nil
}

// HighGapPopulation sums the population of areas whose gap score exceeds
// the fixed high-gap threshold.
func HighGapPopulation(areas []model.Area, cat model.Category, p Params) int64 {
	var pop int64
	for i := range areas {
		if eq, ok := areas[i].Equity[cat]; ok && eq.Gap > p.HighGapThreshold {
			pop += int64(areas[i].Population)
		}
	}
	return pop
}

func logRange(cat model.Category, records []model.EquityRecord) {
	if len(records) == 0 {
		return
	}
	minGap, maxGap := records[0].Gap, records[0].Gap
	for _, r := range records[1:] {
		if r.Gap < minGap {
			minGap = r.Gap
		}
		if r.Gap > maxGap {
			maxGap = r.Gap
		}
	}
	zap.L().Info("equity: gap scores computed",
		zap.String("category", string(cat)),
		zap.Float64("gap_min", minGap),
		zap.Float64("gap_max", maxGap),
	)
}
