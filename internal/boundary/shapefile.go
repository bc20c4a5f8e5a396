package boundary

import (
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// ParseTracts reads a TIGER tract shapefile into Areas, optionally filtered
// to a single county. Records with unsupported or malformed geometry are
// skipped rather than failing the load.
func ParseTracts(shpPath, countyFIPS string) ([]model.Area, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(name)] = i
	}

	attr := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	}

	var areas []model.Area
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		if countyFIPS != "" && attr("COUNTYFP") != countyFIPS {
			continue
		}

		geoid := attr("GEOID")
		if geoid == "" {
			skipped++
			continue
		}

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		centroid, err := geofile.CentroidOf(g)
		if err != nil {
			skipped++
			continue
		}

		name := attr("NAMELSAD")
		if name == "" {
			name = attr("NAME")
		}

		areas = append(areas, model.Area{
			ID:       geoid,
			Name:     name,
			Geometry: g,
			Centroid: centroid,
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(areas) == 0 {
		return nil, eris.Errorf("boundary: no tracts parsed from %s", shpPath)
	}

	zap.L().Info("boundary: tracts parsed",
		zap.String("shapefile", shpPath),
		zap.Int("tracts", len(areas)),
	)
	return areas, nil
}

// shapeToGeom converts a go-shp geometry to go-geom with SRID 4326.
// Returns nil for unsupported or empty shapes.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y}).SetSRID(4326)
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
