// Package model defines the core data types shared across pipeline stages.
package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Area is the unit of analysis: a census tract or a neighborhood polygon.
// Identity and demographics are immutable once loaded; pipeline stages only
// append derived records (Distances, Scores, Equity).
type Area struct {
	ID       string // GEOID (11-char zero-padded) or neighborhood_id
	Name     string
	Geometry geom.T
	Centroid geom.Coord

	Population        int
	MedianIncome      float64 // 0 means unknown
	MedianAge         float64
	PctWhite          float64
	PctBlack          float64
	PctAsian          float64
	PctHispanic       float64
	AreaKm2           float64
	PopulationDensity float64 // people per km²

	Distances map[Category]DistanceRecord
	Scores    map[Category]float64
	Index     float64 // composite walkability index, 0-100
	Class     string  // Excellent / Good / Moderate / Poor / Very Poor
	Equity    map[Category]EquityRecord
}

// Amenity is a single point-of-interest after cleaning.
type Amenity struct {
	Name     string
	Category Category
	Lon      float64
	Lat      float64
}

// DistanceMethod records how a nearest-amenity distance was obtained.
type DistanceMethod string

const (
	// DistanceRouted means the distance is a network shortest path.
	DistanceRouted DistanceMethod = "network"
	// DistanceStraightLine means routing failed and the distance is a
	// degrees-to-meters straight-line approximation.
	DistanceStraightLine DistanceMethod = "straight_line"
)

// DistanceRecord holds the nearest-amenity distance for one (area, category)
// pair. Meters is nil when no amenity of the category exists.
type DistanceRecord struct {
	Meters         *float64
	Method         DistanceMethod
	CountWithin1km int
}

// EquityRecord holds the need/access/gap triple for one (area, category)
// pair. All three values are bounded to [0,1] and gap = need * (1 - access).
type EquityRecord struct {
	Need   float64
	Access float64
	Gap    float64
}

// RunStatus tracks the lifecycle of a persisted analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// AnalysisRun is one end-to-end execution of the scoring pipeline.
type AnalysisRun struct {
	ID         string      `json:"id"`
	City       string      `json:"city"`
	Status     RunStatus   `json:"status"`
	AreaCount  int         `json:"area_count"`
	Categories []string    `json:"categories"`
	Summary    *RunSummary `json:"summary,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// RunSummary captures headline numbers for a completed run.
type RunSummary struct {
	MeanIndex         float64          `json:"mean_index"`
	MedianIndex       float64          `json:"median_index"`
	TotalPopulation   int64            `json:"total_population"`
	HighGapPopulation map[string]int64 `json:"high_gap_population"`
}
