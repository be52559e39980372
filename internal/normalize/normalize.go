// Package normalize maps raw spreadsheet rows onto domain records.
//
// Exports produced by regional finance systems vary in header spelling and
// language, so every field is resolved through an ordered alias list: an
// exact case-insensitive match wins, then a substring match. A header that
// resolves nowhere leaves the field at its zero value; a malformed row never
// aborts an import.
package normalize

import (
	"strings"

	"github.com/google/uuid"

	"finrealize/internal/core"
)

// Row is a single decoded spreadsheet row, keyed by header cell.
type Row map[string]string

var budgetLineAliases = map[string][]string{
	"orgUnit":         {"skpd", "org unit", "unit kerja"},
	"orgUnitCode":     {"kode skpd", "org unit code"},
	"program":         {"program"},
	"programCode":     {"kode program", "program code"},
	"activity":        {"kegiatan", "activity"},
	"activityCode":    {"kode kegiatan", "activity code"},
	"subActivity":     {"sub kegiatan", "sub activity"},
	"subActivityCode": {"kode sub kegiatan", "sub activity code"},
	"spending":        {"belanja", "spending"},
	"spendingCode":    {"kode belanja", "spending code"},
	"allocated":       {"anggaran", "allocated", "budget"},
	"ceiling":         {"pagu spd", "ceiling", "pagu"},
	"realized":        {"realisasi", "realized"},
}

var categoryAliases = map[string][]string{
	"spending":     {"belanja", "spending"},
	"spendingCode": {"kode belanja", "spending code"},
}

// BudgetLine builds a budget line from a master-export row, minting a fresh
// record ID. Amount cells go through core.ParseAmount, so unparseable values
// degrade to zero.
func BudgetLine(row Row) core.BudgetLine {
	return core.BudgetLine{
		ID:              uuid.NewString(),
		OrgUnit:         resolve(row, budgetLineAliases["orgUnit"]),
		OrgUnitCode:     resolve(row, budgetLineAliases["orgUnitCode"]),
		Program:         resolve(row, budgetLineAliases["program"]),
		ProgramCode:     resolve(row, budgetLineAliases["programCode"]),
		Activity:        resolve(row, budgetLineAliases["activity"]),
		ActivityCode:    resolve(row, budgetLineAliases["activityCode"]),
		SubActivity:     resolve(row, budgetLineAliases["subActivity"]),
		SubActivityCode: resolve(row, budgetLineAliases["subActivityCode"]),
		Spending:        resolve(row, budgetLineAliases["spending"]),
		SpendingCode:    resolve(row, budgetLineAliases["spendingCode"]),
		Allocated:       core.ParseAmount(resolve(row, budgetLineAliases["allocated"])),
		Ceiling:         core.ParseAmount(resolve(row, budgetLineAliases["ceiling"])),
		Realized:        core.ParseAmount(resolve(row, budgetLineAliases["realized"])),
	}
}

// RealizationEntry builds a realization record from a disbursement-export row.
func RealizationEntry(row Row) core.RealizationEntry {
	return core.RealizationEntry{
		ID:              uuid.NewString(),
		OrgUnit:         resolve(row, budgetLineAliases["orgUnit"]),
		OrgUnitCode:     resolve(row, budgetLineAliases["orgUnitCode"]),
		Program:         resolve(row, budgetLineAliases["program"]),
		ProgramCode:     resolve(row, budgetLineAliases["programCode"]),
		Activity:        resolve(row, budgetLineAliases["activity"]),
		ActivityCode:    resolve(row, budgetLineAliases["activityCode"]),
		SubActivity:     resolve(row, budgetLineAliases["subActivity"]),
		SubActivityCode: resolve(row, budgetLineAliases["subActivityCode"]),
		Spending:        resolve(row, budgetLineAliases["spending"]),
		SpendingCode:    resolve(row, budgetLineAliases["spendingCode"]),
		Realized:        core.ParseAmount(resolve(row, budgetLineAliases["realized"])),
	}
}

// SpendingCategory builds a category record from a lookup-table row.
func SpendingCategory(row Row) core.SpendingCategory {
	return core.SpendingCategory{
		ID:           uuid.NewString(),
		Spending:     resolve(row, categoryAliases["spending"]),
		SpendingCode: resolve(row, categoryAliases["spendingCode"]),
	}
}

// resolve finds the first alias with a matching header. Exact matches over
// all aliases are preferred; only when none hits does substring matching run,
// so a "Belanja" header is never shadowed by "Kode Belanja".
func resolve(row Row, aliases []string) string {
	for _, alias := range aliases {
		for header, cell := range row {
			if canonHeader(header) == alias {
				return strings.TrimSpace(cell)
			}
		}
	}
	for _, alias := range aliases {
		var bestHeader, bestCell string
		var found bool
		for header, cell := range row {
			h := canonHeader(header)
			if !strings.Contains(h, alias) {
				continue
			}
			// Map iteration is unordered; keep the shortest header so
			// repeated runs resolve the same cell.
			if !found || len(h) < len(bestHeader) || (len(h) == len(bestHeader) && h < bestHeader) {
				bestHeader, bestCell, found = h, cell, true
			}
		}
		if found {
			return strings.TrimSpace(bestCell)
		}
	}
	return ""
}

func canonHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
