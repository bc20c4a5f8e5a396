package census

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Merge joins demographics onto areas by zero-padded GEOID, computes the
// diversity percentages and population density, and drops areas with no
// population (park-only or water polygons). When filtering would remove
// every area the unfiltered set is kept, matching the original pipeline's
// guard against an empty study set.
func Merge(areas []model.Area, demo map[string]Row) ([]model.Area, error) {
	if len(areas) == 0 {
		return nil, eris.New("census: no areas to merge into")
	}

	merged := make([]model.Area, 0, len(areas))
	var unmatched int

	for i := range areas {
		a := areas[i]
		row, ok := demo[PadGEOID(a.ID)]
		if !ok {
			unmatched++
			merged = append(merged, a)
			continue
		}

		a.ID = row.GEOID
		a.Population = int(row.Population)
		a.MedianIncome = row.MedianIncome
		a.MedianAge = row.MedianAge

		if row.Population > 0 {
			a.PctWhite = row.WhiteAlone / row.Population * 100
			a.PctBlack = row.BlackAlone / row.Population * 100
			a.PctAsian = row.AsianAlone / row.Population * 100
			a.PctHispanic = row.HispanicLatino / row.Population * 100
		}

		a.AreaKm2 = geofile.AreaKm2(a.Geometry)
		if a.AreaKm2 > 0 {
			a.PopulationDensity = row.Population / a.AreaKm2
		}

		merged = append(merged, a)
	}

	if unmatched > 0 {
		zap.L().Warn("census: areas without demographics", zap.Int("count", unmatched))
	}

	populated := merged[:0:0]
	for _, a := range merged {
		if a.Population > 0 {
			populated = append(populated, a)
		}
	}
	if len(populated) == 0 {
		zap.L().Warn("census: population filter removed every area, keeping all")
		return merged, nil
	}

	zap.L().Info("census: merge complete",
		zap.Int("areas", len(populated)),
		zap.Int("filtered_out", len(merged)-len(populated)),
	)
	return populated, nil
}
