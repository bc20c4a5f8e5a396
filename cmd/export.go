package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/urbanmetrics/walkability-cli/internal/equity"
	"github.com/urbanmetrics/walkability-cli/internal/export"
	"github.com/urbanmetrics/walkability-cli/internal/model"
	"github.com/urbanmetrics/walkability-cli/internal/viz"
)

var (
	exportSkipWorkbook bool
	exportSkipMap      bool
	exportMapTitle     string
	exportMapProperty  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export gap analysis workbook and walkability map",
	Long:  "Builds an XLSX workbook from the equity snapshot and renders the scored areas as an interactive HTML map.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !exportSkipWorkbook {
			areas, _, err := loadAreas(equityPath(cfg))
			if err != nil {
				return err
			}
			analysis, err := equity.Assemble(areas, model.Categories, analysisParams())
			if err != nil {
				return err
			}
			if err := export.Workbook(analysis, workbookPath(cfg)); err != nil {
				return err
			}
		}

		if !exportSkipMap {
			opts := viz.DefaultMapOptions()
			if exportMapProperty != "" {
				opts.ScoreProperty = exportMapProperty
			}
			if exportMapTitle != "" {
				opts.Title = exportMapTitle
			}

			// Equity properties live in the gaps snapshot, not the scores one.
			src := scoresPath(cfg)
			if strings.HasSuffix(opts.ScoreProperty, "_gap_score") ||
				strings.HasSuffix(opts.ScoreProperty, "_need_score") ||
				strings.HasSuffix(opts.ScoreProperty, "_access_score") {
				src = equityPath(cfg)
			}

			if err := viz.WriteMap(src, mapPath(cfg), opts); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportSkipWorkbook, "skip-workbook", false, "skip XLSX workbook export")
	exportCmd.Flags().BoolVar(&exportSkipMap, "skip-map", false, "skip HTML map rendering")
	exportCmd.Flags().StringVar(&exportMapTitle, "map-title", "", "title for the rendered map")
	exportCmd.Flags().StringVar(&exportMapProperty, "map-property", "", "feature property to color by, e.g. grocery_stores_gap_score (default walkability_index)")
	rootCmd.AddCommand(exportCmd)
}
