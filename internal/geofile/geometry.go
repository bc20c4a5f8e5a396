package geofile

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// MetersPerDegree is the fixed approximate conversion from WGS84 degrees to
// meters used for straight-line fallback distances and planar area. The
// whole pipeline uses this single factor rather than a latitude-corrected
// projection.
const MetersPerDegree = 111000.0

// CentroidOf returns the centroid of any supported geometry.
func CentroidOf(g geom.T) (geom.Coord, error) {
	if g == nil {
		return nil, eris.New("geofile: nil geometry")
	}
	c, err := xy.Centroid(g)
	if err != nil {
		return nil, eris.Wrap(err, "geofile: centroid")
	}
	return c, nil
}

// ApproxMeters returns the straight-line distance between two WGS84
// coordinates, scaled by the fixed degrees-to-meters factor.
func ApproxMeters(a, b geom.Coord) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx+dy*dy) * MetersPerDegree
}

// AreaKm2 returns the approximate area of a polygonal geometry in km².
// Non-polygonal geometries have zero area.
func AreaKm2(g geom.T) float64 {
	var deg2 float64
	switch p := g.(type) {
	case *geom.Polygon:
		deg2 = p.Area()
	case *geom.MultiPolygon:
		deg2 = p.Area()
	default:
		return 0
	}
	km := MetersPerDegree / 1000.0
	return math.Abs(deg2) * km * km
}
