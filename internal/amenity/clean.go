// Package amenity cleans raw amenity data before distance resolution.
package amenity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// Clean deduplicates amenities by exact point geometry within each
// category. Cross-category duplicates (e.g. a clinic tagged as both
// hospitals and urgent_care) are kept, matching how the categories are
// collected independently.
func Clean(amenities []model.Amenity) []model.Amenity {
	seen := make(map[string]struct{}, len(amenities))
	out := make([]model.Amenity, 0, len(amenities))

	for _, a := range amenities {
		key := fmt.Sprintf("%s|%.9f|%.9f", a.Category, a.Lon, a.Lat)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}

	if removed := len(amenities) - len(out); removed > 0 {
		zap.L().Info("amenity: removed duplicates", zap.Int("removed", removed))
	}

	byCat := make(map[model.Category]int)
	for _, a := range out {
		byCat[a.Category]++
	}
	for _, cat := range model.Categories {
		zap.L().Debug("amenity: category count",
			zap.String("category", string(cat)),
			zap.Int("count", byCat[cat]),
		)
	}

	return out
}
