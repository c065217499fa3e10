// Package report renders comparisons and prediction listings as xlsx
// workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"agropredict/internal/analytics"
)

// Sheet names
const (
	ComparisonSheet = "Comparison"
	SpeciesSheet    = "Species"
	RegionSheet     = "Regions"
)

var comparisonHeaders = []string{
	"Prediction", "Species", "Commune", "Region", "Hectares",
	"Yield (t/ha)", "Confidence (%)", "Water (m3/ha)", "Investment", "ROI (%)",
	"ROI / ha", "Investment / ha", "Water efficiency (t/m3)",
}

// WriteComparison writes a comparison workbook to w. Species and region
// summaries of the compared records go to their own sheets.
func WriteComparison(w io.Writer, items []analytics.ComparisonItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ComparisonSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeHeaders(f, ComparisonSheet, comparisonHeaders, 16); err != nil {
		return err
	}

	records := make([]analytics.Record, 0, len(items))
	for i, it := range items {
		r := it.Record
		records = append(records, r)
		row := []any{
			r.ID, r.SpeciesName, r.CommuneName, r.RegionName, r.Hectares,
			optional(r.YieldPerHa), optionalInt(r.Confidence), optional(r.WaterPerHa), optional(r.Investment), optional(r.ROI),
			it.ROIPerHa, it.InvestmentPerHa, it.WaterEfficiency,
		}
		if err := writeRow(f, ComparisonSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SpeciesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeHeaders(f, SpeciesSheet, []string{"Species", "Count", "Mean yield (t/ha)", "Mean confidence", "Mean ROI (%)", "Mean water (m3/ha)"}, 18); err != nil {
		return err
	}
	for i, s := range analytics.BySpecies(records, 0) {
		row := []any{s.SpeciesName, s.Count, optional(s.MeanYieldPerHa), optional(s.MeanConfidence), optional(s.MeanROI), optional(s.MeanWaterPerHa)}
		if err := writeRow(f, SpeciesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(RegionSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeHeaders(f, RegionSheet, []string{"Region", "Count", "Hectares", "Total yield (t)", "Total investment"}, 18); err != nil {
		return err
	}
	for i, s := range analytics.ByRegion(records, 0) {
		row := []any{s.RegionName, s.Count, s.TotalHectares, s.TotalYield, s.TotalInvestment}
		if err := writeRow(f, RegionSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, width float64) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		col, _, _ := excelize.SplitCellName(cell)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// optional leaves missing values as empty cells
func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
