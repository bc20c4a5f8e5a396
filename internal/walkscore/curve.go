// Package walkscore converts nearest-amenity distances into bounded 0-100
// walkability scores and combines them into a single weighted index.
package walkscore

// Thresholds parameterize the three-segment distance-to-score curve, all in
// meters.
type Thresholds struct {
	IdealM      float64 `yaml:"ideal_m"`
	AcceptableM float64 `yaml:"acceptable_m"`
	PoorM       float64 `yaml:"poor_m"`
}

// DistanceToScore maps a nullable distance in meters to a score in [0,100]:
// nil → 0; ≤ideal → 100; linear to 70 at acceptable; linear to 30 at poor;
// beyond poor the score decays 1 point per 100 m, floored at 0.
func DistanceToScore(distanceM *float64, t Thresholds) float64 {
	if distanceM == nil {
		return 0
	}
	d := *distanceM

	switch {
	case d <= t.IdealM:
		return 100
	case d <= t.AcceptableM:
		return 100 - 30*(d-t.IdealM)/(t.AcceptableM-t.IdealM)
	case d <= t.PoorM:
		return 70 - 40*(d-t.AcceptableM)/(t.PoorM-t.AcceptableM)
	default:
		s := 30 - (d-t.PoorM)/100
		if s < 0 {
			return 0
		}
		return s
	}
}

// Classify buckets a composite index into the five walkability bands.
func Classify(index float64) string {
	switch {
	case index >= 80:
		return "Excellent"
	case index >= 65:
		return "Good"
	case index >= 50:
		return "Moderate"
	case index >= 35:
		return "Poor"
	default:
		return "Very Poor"
	}
}
