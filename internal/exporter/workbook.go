package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/flood-control-pipeline/internal/reports"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// Workbook sheet names.
const (
	SheetRegional    = "Regional Efficiency"
	SheetContractors = "Contractor Ranking"
	SheetTrends      = "Annual Trends"
	SheetSummary     = "Summary"
)

// WriteWorkbook writes every report of b to an XLSX workbook, one sheet per
// report plus a key/value Summary sheet. Numeric cells are stored as numbers.
func WriteWorkbook(path string, b *reports.Bundle) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetRegional); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSheet(f, SheetRegional, headerStyle, types.RegionSummaryHeaders, b.Regional); err != nil {
		return err
	}
	if err := writeSheet(f, SheetContractors, headerStyle, types.ContractorRankingHeaders, b.Contractors); err != nil {
		return err
	}
	if err := writeSheet(f, SheetTrends, headerStyle, types.TypeTrendHeaders, b.Trends); err != nil {
		return err
	}
	if err := writeSummarySheet(f, headerStyle, b.Summary); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet[R Row](f *excelize.File, sheet string, headerStyle int, headers []string, rows []R) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("invalid sheet name '%s': %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet '%s': %w", sheet, err)
		}
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of '%s': %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of '%s': %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := cellValues(row.Values())
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of '%s': %w", i+1, sheet, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func writeSummarySheet(f *excelize.File, headerStyle int, s types.SummaryStats) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("failed to create sheet '%s': %w", SheetSummary, err)
	}

	entries := [][]interface{}{
		{"Metric", "Value"},
		{"total_projects", s.TotalProjects},
		{"total_contractors", s.TotalContractors},
		{"total_provinces", s.TotalProvinces},
		{"global_avg_delay_days", numberOrText(s.GlobalAvgDelayDays)},
		{"total_savings", numberOrText(s.TotalSavings)},
		{"report1_regions", s.Report1Regions},
		{"report2_contractors", s.Report2Contractors},
		{"report3_entries", s.Report3Entries},
	}
	for i, entry := range entries {
		row := entry
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	return f.SetColWidth(SheetSummary, "A", "B", 24)
}

// cellValues converts numeric strings to float64 so the workbook keeps them
// as numbers.
func cellValues(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = numberOrText(v)
	}
	return out
}

func numberOrText(v string) interface{} {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
