// Package export writes gap analysis results to an XLSX workbook for
// planners who work in spreadsheets rather than GeoJSON.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/equity"
)

var underservedHeader = []string{
	"Area ID", "Area Name", "Population", "Median Income",
	"Distance (m)", "Count Within 1km", "Gap Score", "Need Score", "Access Score",
}

var recommendationHeader = []string{
	"Amenity Type", "Area Name", "Latitude", "Longitude",
	"Population Served", "Gap Score", "Justification",
}

// Workbook writes one sheet of underserved areas per category plus a
// combined recommendations sheet.
func Workbook(a *equity.Analysis, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create output dir for %s", path)
	}

	f := xlsx.NewFile()

	for _, res := range a.Results {
		sheetName := fmt.Sprintf("underserved_%s", res.Category)
		if len(sheetName) > 31 {
			sheetName = sheetName[:31]
		}
		sheet, err := f.AddSheet(sheetName)
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", sheetName)
		}

		addHeader(sheet, underservedHeader)
		for _, u := range res.Underserved {
			row := sheet.AddRow()
			row.AddCell().SetString(u.AreaID)
			row.AddCell().SetString(u.AreaName)
			row.AddCell().SetInt(u.Population)
			row.AddCell().SetFloat(u.MedianIncome)
			if u.DistanceM != nil {
				row.AddCell().SetFloat(*u.DistanceM)
			} else {
				row.AddCell().SetString("")
			}
			row.AddCell().SetInt(u.CountWithin1km)
			row.AddCell().SetFloatWithFormat(u.GapScore, "0.000")
			row.AddCell().SetFloatWithFormat(u.NeedScore, "0.000")
			row.AddCell().SetFloatWithFormat(u.AccessScore, "0.000")
		}
	}

	recSheet, err := f.AddSheet("recommendations")
	if err != nil {
		return eris.Wrap(err, "export: add recommendations sheet")
	}
	addHeader(recSheet, recommendationHeader)
	for _, res := range a.Results {
		for _, r := range res.Recommendations {
			row := recSheet.AddRow()
			row.AddCell().SetString(r.Category)
			row.AddCell().SetString(r.AreaName)
			row.AddCell().SetFloatWithFormat(r.Latitude, "0.00000")
			row.AddCell().SetFloatWithFormat(r.Longitude, "0.00000")
			row.AddCell().SetInt(r.PopulationServed)
			row.AddCell().SetFloatWithFormat(r.GapScore, "0.000")
			row.AddCell().SetString(r.Justification)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}

	zap.L().Info("export: workbook written",
		zap.String("path", path),
		zap.Int("categories", len(a.Results)),
	)
	return nil
}

func addHeader(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}
