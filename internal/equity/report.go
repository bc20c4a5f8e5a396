package equity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/model"
)

// CategoryResult is the complete gap analysis output for one category.
type CategoryResult struct {
	Category          model.Category
	Underserved       []UnderservedArea
	Recommendations   []Recommendation
	HighGapPopulation int64
}

// Analysis aggregates results across all analyzed categories.
type Analysis struct {
	Results         []CategoryResult
	TotalPopulation int64
	AreaCount       int
}

// Analyze runs the full gap analysis for the given categories, attaching
// equity records to the areas in place. A category that fails (e.g. its
// distance data is missing) is logged and skipped; the remaining categories
// still complete.
func Analyze(areas []model.Area, cats []model.Category, p Params) (*Analysis, error) {
	if len(areas) == 0 {
		return nil, eris.New("equity: no areas loaded")
	}

	a := &Analysis{AreaCount: len(areas)}
	for i := range areas {
		a.TotalPopulation += int64(areas[i].Population)
	}

	for _, cat := range cats {
		records, err := CalculateScores(areas, cat, p)
		if err != nil {
			zap.L().Error("equity: category analysis failed",
				zap.String("category", string(cat)),
				zap.Error(err),
			)
			continue
		}
		for i := range areas {
			if areas[i].Equity == nil {
				areas[i].Equity = make(map[model.Category]model.EquityRecord)
			}
			areas[i].Equity[cat] = records[i]
		}

		underserved := Underserved(areas, cat, p)
		a.Results = append(a.Results, CategoryResult{
			Category:          cat,
			Underserved:       underserved,
			Recommendations:   Recommend(areas, underserved),
			HighGapPopulation: HighGapPopulation(areas, cat, p),
		})
	}

	if len(a.Results) == 0 {
		return nil, eris.New("equity: every category failed to analyze")
	}
	return a, nil
}

// Assemble rebuilds an Analysis from areas whose equity records were
// already computed, e.g. when exporting a snapshot written by an earlier
// run. Categories with no equity data are skipped.
func Assemble(areas []model.Area, cats []model.Category, p Params) (*Analysis, error) {
	if len(areas) == 0 {
		return nil, eris.New("equity: no areas loaded")
	}

	a := &Analysis{AreaCount: len(areas)}
	for i := range areas {
		a.TotalPopulation += int64(areas[i].Population)
	}

	for _, cat := range cats {
		var present bool
		for i := range areas {
			if _, ok := areas[i].Equity[cat]; ok {
				present = true
				break
			}
		}
		if !present {
			continue
		}

		underserved := Underserved(areas, cat, p)
		a.Results = append(a.Results, CategoryResult{
			Category:          cat,
			Underserved:       underserved,
			Recommendations:   Recommend(areas, underserved),
			HighGapPopulation: HighGapPopulation(areas, cat, p),
		})
	}

	if len(a.Results) == 0 {
		return nil, eris.New("equity: snapshot carries no equity records; run the gaps stage first")
	}
	return a, nil
}

// WriteOutputs writes per-category and combined CSVs plus the text summary
// report under dir.
func (a *Analysis) WriteOutputs(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "equity: create output dir %s", dir)
	}

	var allUnderserved []UnderservedArea
	var allRecs []Recommendation

	for _, res := range a.Results {
		if err := writeCSV(filepath.Join(dir, fmt.Sprintf("underserved_areas_%s.csv", res.Category)), res.Underserved); err != nil {
			return err
		}
		if err := writeCSV(filepath.Join(dir, fmt.Sprintf("recommended_locations_%s.csv", res.Category)), res.Recommendations); err != nil {
			return err
		}
		allUnderserved = append(allUnderserved, res.Underserved...)
		allRecs = append(allRecs, res.Recommendations...)
	}

	if err := writeCSV(filepath.Join(dir, "all_underserved_areas.csv"), allUnderserved); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "all_recommended_locations.csv"), allRecs); err != nil {
		return err
	}

	report := a.RenderReport()
	if err := os.WriteFile(filepath.Join(dir, "gap_analysis_report.txt"), []byte(report), 0o644); err != nil {
		return eris.Wrap(err, "equity: write report")
	}

	zap.L().Info("equity: outputs written", zap.String("dir", dir))
	return nil
}

func writeCSV[T any](path string, rows []T) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "equity: marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "equity: write %s", path)
	}
	return nil
}

func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RenderReport produces the human-readable text summary.
func (a *Analysis) RenderReport() string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "URBAN EQUITY ANALYSIS - AMENITY GAP ASSESSMENT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Total Population Analyzed: %d\n", a.TotalPopulation)
	fmt.Fprintf(&b, "Number of Areas: %d\n", a.AreaCount)
	fmt.Fprintln(&b)

	for _, res := range a.Results {
		label := strings.ToUpper(strings.ReplaceAll(string(res.Category), "_", " "))
		fmt.Fprintln(&b, rule)
		fmt.Fprintf(&b, "%s - GAP ANALYSIS\n", label)
		fmt.Fprintln(&b, rule)
		fmt.Fprintln(&b)

		fmt.Fprintf(&b, "Top %d Most Underserved Areas:\n", len(res.Underserved))
		fmt.Fprintln(&b, strings.Repeat("-", 80))
		for _, u := range res.Underserved {
			dist := "    n/a"
			if u.DistanceM != nil {
				dist = fmt.Sprintf("%6.0fm", *u.DistanceM)
			}
			fmt.Fprintf(&b, "  %-30s | Pop: %8d | Income: $%8.0f | Distance: %s | Gap: %.3f\n",
				u.AreaName, u.Population, u.MedianIncome, dist, u.GapScore)
		}
		fmt.Fprintln(&b)

		fmt.Fprintf(&b, "Recommended New %s Locations:\n", titleWords(string(res.Category)))
		fmt.Fprintln(&b, strings.Repeat("-", 80))
		max := len(res.Recommendations)
		if max > 5 {
			max = 5
		}
		for _, r := range res.Recommendations[:max] {
			fmt.Fprintf(&b, "  %-30s | Lat: %9.5f, Lon: %10.5f | Serves: %8d\n",
				r.AreaName, r.Latitude, r.Longitude, r.PopulationServed)
		}
		fmt.Fprintln(&b)

		fmt.Fprintf(&b, "Population in High-Gap Areas (score > 0.5): %d\n", res.HighGapPopulation)
		if a.TotalPopulation > 0 {
			fmt.Fprintf(&b, "Percentage of Total: %.1f%%\n",
				float64(res.HighGapPopulation)/float64(a.TotalPopulation)*100)
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}
