// Package census loads ACS demographics and merges them into area
// snapshots, applying the cleaning rules the analysis depends on.
package census

import (
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Row is one tract's demographics as stored in the raw CSV.
type Row struct {
	GEOID          string  `csv:"GEOID"`
	Population     float64 `csv:"total_population"`
	MedianIncome   float64 `csv:"median_household_income"`
	MedianAge      float64 `csv:"median_age"`
	WhiteAlone     float64 `csv:"white_alone"`
	BlackAlone     float64 `csv:"black_alone"`
	AsianAlone     float64 `csv:"asian_alone"`
	HispanicLatino float64 `csv:"hispanic_latino"`
}

// ACS publishes sentinel values (large negatives) for suppressed estimates;
// anything at or below this is treated as missing.
const sentinelFloor = -1e6

// LoadCSV reads the demographics CSV keyed by GEOID. GEOIDs are zero-padded
// to the 11-character tract form so joins against TIGER geometries line up.
func LoadCSV(path string) (map[string]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "census: read %s", path)
	}

	var rows []Row
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "census: parse %s", path)
	}

	out := make(map[string]Row, len(rows))
	var dropped int
	for _, r := range rows {
		id := PadGEOID(r.GEOID)
		if id == "" {
			dropped++
			continue
		}
		r.GEOID = id
		r = clean(r)
		out[id] = r
	}
	if dropped > 0 {
		zap.L().Warn("census: dropped rows without GEOID", zap.Int("dropped", dropped))
	}

	zap.L().Info("census: demographics loaded", zap.String("path", path), zap.Int("tracts", len(out)))
	return out, nil
}

// WriteCSV saves demographics rows, typically straight from the ACS API, in
// the same column layout LoadCSV expects.
func WriteCSV(path string, rows []Row) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "census: marshal demographics")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "census: write %s", path)
	}
	zap.L().Info("census: demographics written", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// PadGEOID normalizes a tract identifier to the zero-padded 11-character
// form. Returns "" for empty or over-long input.
func PadGEOID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 11 {
		return ""
	}
	return strings.Repeat("0", 11-len(id)) + id
}

// clean zeroes out sentinel and negative estimates so downstream stages can
// treat non-positive values uniformly as missing.
func clean(r Row) Row {
	if r.MedianIncome <= sentinelFloor || r.MedianIncome < 0 {
		r.MedianIncome = 0
	}
	if r.MedianAge <= sentinelFloor || r.MedianAge < 0 {
		r.MedianAge = 0
	}
	if r.Population < 0 {
		r.Population = 0
	}
	return r
}
