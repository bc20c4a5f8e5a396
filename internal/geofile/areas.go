package geofile

import (
	"fmt"

	"github.com/rotisserie/eris"
	geojson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Per-category derived property keys follow the original column naming so
// snapshots stay readable in any GeoJSON tool.
func distanceKey(c model.Category) string { return fmt.Sprintf("%s_distance_m", c) }
func methodKey(c model.Category) string   { return fmt.Sprintf("%s_distance_method", c) }
func countKey(c model.Category) string    { return fmt.Sprintf("%s_count_1km", c) }
func scoreKey(c model.Category) string    { return fmt.Sprintf("%s_score", c) }
func needKey(c model.Category) string     { return fmt.Sprintf("%s_need_score", c) }
func accessKey(c model.Category) string   { return fmt.Sprintf("%s_access_score", c) }
func gapKey(c model.Category) string      { return fmt.Sprintf("%s_gap_score", c) }

// AreasFromCollection decodes a snapshot into Areas, picking up whatever
// derived columns earlier stages have appended.
func AreasFromCollection(fc *geojson.FeatureCollection, schema Schema) ([]model.Area, error) {
	areas := make([]model.Area, 0, len(fc.Features))

	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, eris.Errorf("geofile: feature %d has no geometry", i)
		}
		props := f.Properties

		id := PropString(props, schema.IDProperty)
		if id == "" {
			return nil, eris.Errorf("geofile: feature %d missing %s", i, schema.IDProperty)
		}

		a := model.Area{
			ID:       id,
			Name:     PropString(props, schema.NameProperty),
			Geometry: f.Geometry,
		}

		cx, okX := PropFloat(props, "centroid_x")
		cy, okY := PropFloat(props, "centroid_y")
		if okX && okY {
			a.Centroid = []float64{cx, cy}
		} else {
			c, err := CentroidOf(f.Geometry)
			if err != nil {
				return nil, eris.Wrapf(err, "geofile: feature %s", id)
			}
			a.Centroid = c
		}

		a.Population = PropInt(props, "total_population")
		a.MedianIncome, _ = PropFloat(props, "median_household_income")
		a.MedianAge, _ = PropFloat(props, "median_age")
		a.PctWhite, _ = PropFloat(props, "pct_white")
		a.PctBlack, _ = PropFloat(props, "pct_black")
		a.PctAsian, _ = PropFloat(props, "pct_asian")
		a.PctHispanic, _ = PropFloat(props, "pct_hispanic")
		a.AreaKm2, _ = PropFloat(props, "area_km2")
		a.PopulationDensity, _ = PropFloat(props, "population_density")

		for _, c := range model.Categories {
			if _, present := props[distanceKey(c)]; !present {
				continue
			}
			rec := model.DistanceRecord{
				Method:         model.DistanceMethod(PropString(props, methodKey(c))),
				CountWithin1km: PropInt(props, countKey(c)),
			}
			if m, ok := PropFloat(props, distanceKey(c)); ok {
				rec.Meters = &m
			}
			if a.Distances == nil {
				a.Distances = make(map[model.Category]model.DistanceRecord)
			}
			a.Distances[c] = rec
		}

		for _, c := range model.Categories {
			if s, ok := PropFloat(props, scoreKey(c)); ok {
				if a.Scores == nil {
					a.Scores = make(map[model.Category]float64)
				}
				a.Scores[c] = s
			}
		}
		a.Index, _ = PropFloat(props, "walkability_index")
		a.Class = PropString(props, "walkability_category")

		for _, c := range model.Categories {
			g, okG := PropFloat(props, gapKey(c))
			if !okG {
				continue
			}
			n, _ := PropFloat(props, needKey(c))
			acc, _ := PropFloat(props, accessKey(c))
			if a.Equity == nil {
				a.Equity = make(map[model.Category]model.EquityRecord)
			}
			a.Equity[c] = model.EquityRecord{Need: n, Access: acc, Gap: g}
		}

		areas = append(areas, a)
	}

	return areas, nil
}

// CollectionFromAreas encodes Areas back into a snapshot, writing every
// demographic and derived column the areas carry.
func CollectionFromAreas(areas []model.Area, schema Schema) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(areas))}

	for i := range areas {
		a := &areas[i]
		props := map[string]interface{}{
			schema.IDProperty:           a.ID,
			schema.NameProperty:         a.Name,
			"centroid_x":                a.Centroid[0],
			"centroid_y":                a.Centroid[1],
			"total_population":          a.Population,
			"median_household_income":   a.MedianIncome,
			"median_age":                a.MedianAge,
			"pct_white":                 a.PctWhite,
			"pct_black":                 a.PctBlack,
			"pct_asian":                 a.PctAsian,
			"pct_hispanic":              a.PctHispanic,
			"area_km2":                  a.AreaKm2,
			"population_density":        a.PopulationDensity,
		}

		for c, rec := range a.Distances {
			if rec.Meters != nil {
				props[distanceKey(c)] = *rec.Meters
			} else {
				props[distanceKey(c)] = nil
			}
			props[methodKey(c)] = string(rec.Method)
			props[countKey(c)] = rec.CountWithin1km
		}

		for c, s := range a.Scores {
			props[scoreKey(c)] = s
		}
		if a.Scores != nil {
			props["walkability_index"] = a.Index
			props["walkability_category"] = a.Class
		}

		for c, eq := range a.Equity {
			props[needKey(c)] = eq.Need
			props[accessKey(c)] = eq.Access
			props[gapKey(c)] = eq.Gap
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         a.ID,
			Geometry:   a.Geometry,
			Properties: props,
		})
	}

	return fc
}
