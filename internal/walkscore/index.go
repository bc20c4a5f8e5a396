package walkscore

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// ScoreArea computes per-category sub-scores and the composite walkability
// index for one area, writing the derived fields onto the area. A category
// with no distance data scores 0 but its weight still applies, penalizing
// areas lacking that category.
func ScoreArea(area *model.Area, p Profile) {
	area.Scores = make(map[model.Category]float64, len(model.Categories))

	var index float64
	for _, cat := range model.Categories {
		var score float64
		if rec, ok := area.Distances[cat]; ok {
			score = DistanceToScore(rec.Meters, p.ThresholdsFor(cat))
		}
		area.Scores[cat] = score
		index += p.Weights[cat] * score
	}

	area.Index = math.Round(index*10) / 10
	area.Class = Classify(area.Index)
}

// ScoreAll scores every area in place and logs per-category averages the
// way the stage report expects.
func ScoreAll(areas []model.Area, p Profile) {
	for i := range areas {
		ScoreArea(&areas[i], p)
	}

	for _, cat := range model.Categories {
		var sum float64
		for i := range areas {
			sum += areas[i].Scores[cat]
		}
		if len(areas) > 0 {
			zap.L().Info("walkscore: category average",
				zap.String("category", string(cat)),
				zap.Float64("avg_score", sum/float64(len(areas))),
			)
		}
	}
}

// Summary holds the headline statistics of a scored area set.
type Summary struct {
	Count      int
	Mean       float64
	Median     float64
	Min        float64
	Max        float64
	ByCategory map[string]int // walkability class -> area count
}

// Summarize computes the walkability index distribution across areas.
func Summarize(areas []model.Area) Summary {
	s := Summary{Count: len(areas), ByCategory: make(map[string]int)}
	if len(areas) == 0 {
		return s
	}

	indices := make([]float64, len(areas))
	var sum float64
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	for i := range areas {
		v := areas[i].Index
		indices[i] = v
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		s.ByCategory[areas[i].Class]++
	}
	s.Mean = sum / float64(len(areas))

	sort.Float64s(indices)
	mid := len(indices) / 2
	if len(indices)%2 == 1 {
		s.Median = indices[mid]
	} else {
		s.Median = (indices[mid-1] + indices[mid]) / 2
	}
	return s
}
