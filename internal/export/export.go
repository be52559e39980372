// Package export renders reports as downloadable xlsx workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"finrealize/internal/core"
)

const sheetName = "Laporan Keuangan"

var header = []any{
	"SKPD", "Induk", "Uraian", "Kode",
	"Anggaran", "SPD", "Realisasi",
	"Sisa SPD", "Sisa Anggaran", "Persentase (%)",
}

// ReportWorkbook builds a one-sheet workbook for the report: the rows in
// display order followed by a grand-total row. Amounts stay raw numbers so
// the spreadsheet remains computable; the percent column carries a
// two-decimal string, matching the on-screen table.
func ReportWorkbook(rep core.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rep.Rows {
		parent := row.Parent
		if parent == "" {
			parent = "-"
		}
		cells := []any{
			row.OrgUnit, parent, row.Name, row.Code,
			row.Allocated, row.Ceiling, row.Realized,
			row.RemainingCeiling, row.RemainingBudget,
			fmt.Sprintf("%.2f", row.Percent),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	totals := []any{
		"TOTAL", "", "", "",
		rep.Totals.Allocated, rep.Totals.Ceiling, rep.Totals.Realized,
		rep.Totals.RemainingCeiling, rep.Totals.RemainingBudget,
		fmt.Sprintf("%.2f", rep.Totals.Percent),
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rep.Rows)+2)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &totals); err != nil {
		f.Close()
		return nil, fmt.Errorf("write totals: %w", err)
	}
	return f, nil
}

// Filename names the download after the report level and the current date,
// e.g. Laporan_program_2026-08-31.xlsx.
func Filename(level core.Level, now time.Time) string {
	return fmt.Sprintf("Laporan_%s_%s.xlsx", level, now.Format("2006-01-02"))
}
