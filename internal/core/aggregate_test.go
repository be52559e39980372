package core

import "testing"

func masterFixture() []BudgetLine {
	return []BudgetLine{
		{
			ID: "m1", OrgUnit: "Dinas A",
			Program: "Program Satu", ProgramCode: "P.01",
			Activity: "Kegiatan Satu", ActivityCode: "K.01",
			SubActivity: "Sub Satu", SubActivityCode: "S.01",
			Spending: "Belanja Pegawai", SpendingCode: "5.1.01",
			Allocated: 1_000_000, Ceiling: 900_000,
		},
		{
			ID: "m2", OrgUnit: "Dinas A",
			Program: "Program Satu", ProgramCode: "P.01",
			Activity: "Kegiatan Satu", ActivityCode: "K.01",
			SubActivity: "Sub Satu", SubActivityCode: "S.01",
			Spending: "Belanja Barang", SpendingCode: "5.1.02",
			Allocated: 500_000, Ceiling: 500_000,
		},
		{
			ID: "m3", OrgUnit: "Dinas A",
			Program: "Program Dua", ProgramCode: "P.02",
			Activity: "Kegiatan Dua", ActivityCode: "K.02",
			SubActivity: "Sub Dua", SubActivityCode: "S.02",
			Spending: "Belanja Modal", SpendingCode: "5.2.01",
			Allocated: 2_000_000, Ceiling: 1_800_000,
		},
	}
}

func realizationFixture() []RealizationEntry {
	return []RealizationEntry{
		{
			ID: "r1", OrgUnit: "Dinas A",
			Program: "Program Satu", ProgramCode: "P.01",
			Activity: "Kegiatan Satu", ActivityCode: "K.01",
			SubActivity: "Sub Satu", SubActivityCode: "S.01",
			SpendingCode: "5.1.01", Realized: 400_000,
		},
		{
			ID: "r2", OrgUnit: "Dinas A",
			SpendingCode: "5.1.02", Realized: 100_000,
		},
	}
}

func TestBuildReportProgramLevel(t *testing.T) {
	rep := BuildReport(masterFixture(), realizationFixture(), ReportOptions{Level: LevelProgram})
	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 program rows, got %d: %+v", len(rep.Rows), rep.Rows)
	}
	var p1, p2 *ReportRow
	for i := range rep.Rows {
		switch rep.Rows[i].Code {
		case "P.01":
			p1 = &rep.Rows[i]
		case "P.02":
			p2 = &rep.Rows[i]
		}
	}
	if p1 == nil || p2 == nil {
		t.Fatalf("missing rows: %+v", rep.Rows)
	}
	if !almostEqual(p1.Allocated, 1_500_000) || !almostEqual(p1.Realized, 500_000) {
		t.Fatalf("P.01 row: %+v", *p1)
	}
	if !almostEqual(p1.RemainingBudget, 1_000_000) {
		t.Fatalf("P.01 remaining budget: %v", p1.RemainingBudget)
	}
	if !almostEqual(p2.Realized, 0) {
		t.Fatalf("P.02 row: %+v", *p2)
	}
	if !almostEqual(rep.Totals.Allocated, 3_500_000) || !almostEqual(rep.Totals.Realized, 500_000) {
		t.Fatalf("totals: %+v", rep.Totals)
	}
}

func TestBuildReportSpendingLevelScopedBySubActivity(t *testing.T) {
	// The same spending code under two different sub-activities must stay
	// two rows.
	lines := []BudgetLine{
		{OrgUnit: "Dinas A", SubActivity: "Sub Satu", SubActivityCode: "S.01", Spending: "Belanja X", SpendingCode: "5.1.01", Allocated: 100},
		{OrgUnit: "Dinas A", SubActivity: "Sub Dua", SubActivityCode: "S.02", Spending: "Belanja X", SpendingCode: "5.1.01", Allocated: 200},
	}
	rep := BuildReport(lines, nil, ReportOptions{Level: LevelSpending})
	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rep.Rows), rep.Rows)
	}
}

func TestBuildReportAnomalyFoldsIntoMatchingGroup(t *testing.T) {
	lines := masterFixture()
	entries := []RealizationEntry{
		// Key mismatch (unknown spending code) but the entry carries the
		// activity fields of an existing group.
		{OrgUnit: "Dinas A", Activity: "Kegiatan Satu", ActivityCode: "K.01", SpendingCode: "9.9.99", Realized: 10_000},
	}
	rep := BuildReport(lines, entries, ReportOptions{Level: LevelActivity})
	for _, row := range rep.Rows {
		if row.Code == "K.01" {
			if !almostEqual(row.Realized, 10_000) {
				t.Fatalf("anomaly not folded: %+v", row)
			}
			if row.Unmatched {
				t.Fatalf("existing group must not be flagged: %+v", row)
			}
			return
		}
	}
	t.Fatalf("K.01 row missing: %+v", rep.Rows)
}

func TestBuildReportAnomalySyntheticRow(t *testing.T) {
	lines := masterFixture()
	entries := []RealizationEntry{
		{OrgUnit: "Dinas B", Spending: "Belanja Tak Dikenal", SpendingCode: "9.9.99", Realized: 50_000},
	}
	rep := BuildReport(lines, append(realizationFixture(), entries...), ReportOptions{Level: LevelProgram})
	var synthetic *ReportRow
	for i := range rep.Rows {
		if rep.Rows[i].Unmatched {
			synthetic = &rep.Rows[i]
		}
	}
	if synthetic == nil {
		t.Fatalf("expected a flagged synthetic row: %+v", rep.Rows)
	}
	if !almostEqual(synthetic.Allocated, 0) || !almostEqual(synthetic.Realized, 50_000) {
		t.Fatalf("synthetic row: %+v", *synthetic)
	}
	if synthetic.OrgUnit != "Dinas B" {
		t.Fatalf("anomaly attributed to wrong unit: %+v", *synthetic)
	}
	// The flagged amount counts on top of the matched realizations.
	if !almostEqual(rep.Totals.Realized, 400_000+100_000+50_000) {
		t.Fatalf("totals: %+v", rep.Totals)
	}
}

func TestBuildReportParentFilter(t *testing.T) {
	rep := BuildReport(masterFixture(), realizationFixture(), ReportOptions{
		Level:  LevelActivity,
		Parent: "Program Satu",
	})
	if len(rep.Rows) != 1 || rep.Rows[0].Code != "K.01" {
		t.Fatalf("rows: %+v", rep.Rows)
	}
	// r2 has no program field, so the parent filter keeps it; it matches
	// m2 by key and lands in K.01.
	if !almostEqual(rep.Rows[0].Realized, 500_000) {
		t.Fatalf("realized: %v", rep.Rows[0].Realized)
	}
	if !almostEqual(rep.Totals.Allocated, 1_500_000) {
		t.Fatalf("totals must follow the filter: %+v", rep.Totals)
	}
}

func TestBuildReportSearchFilter(t *testing.T) {
	rep := BuildReport(masterFixture(), realizationFixture(), ReportOptions{
		Level:  LevelProgram,
		Search: "program dua",
	})
	if len(rep.Rows) != 1 || rep.Rows[0].Code != "P.02" {
		t.Fatalf("rows: %+v", rep.Rows)
	}
	// Totals reflect only the searched row set.
	if !almostEqual(rep.Totals.Allocated, 2_000_000) {
		t.Fatalf("totals: %+v", rep.Totals)
	}
}

func TestBuildReportFiltersCommute(t *testing.T) {
	// Parent and search are independent stages; the combined result must
	// not depend on any notional application order. Verify the combined
	// run equals the intersection of the single-filter runs.
	combined := BuildReport(masterFixture(), realizationFixture(), ReportOptions{
		Level:  LevelActivity,
		Parent: "Program Satu",
		Search: "kegiatan",
	})
	parentOnly := BuildReport(masterFixture(), realizationFixture(), ReportOptions{
		Level:  LevelActivity,
		Parent: "Program Satu",
	})
	searchOnly := BuildReport(masterFixture(), realizationFixture(), ReportOptions{
		Level:  LevelActivity,
		Search: "kegiatan",
	})
	inBoth := func(row ReportRow) bool {
		found := func(rep Report) bool {
			for _, r := range rep.Rows {
				if r.Code == row.Code && r.OrgUnit == row.OrgUnit {
					return true
				}
			}
			return false
		}
		return found(parentOnly) && found(searchOnly)
	}
	for _, row := range combined.Rows {
		if !inBoth(row) {
			t.Fatalf("row %+v not present in both single-filter runs", row)
		}
	}
	if len(combined.Rows) != 1 {
		t.Fatalf("rows: %+v", combined.Rows)
	}
}

func TestBuildReportOrderingEmptyCodeFirst(t *testing.T) {
	lines := []BudgetLine{
		{OrgUnit: "Dinas A", Program: "Beta", ProgramCode: "B.02", Allocated: 1},
		{OrgUnit: "Dinas A", Program: "Tanpa Kode", ProgramCode: "", Allocated: 1},
		{OrgUnit: "Dinas A", Program: "Alpha", ProgramCode: "A.01", Allocated: 1},
	}
	rep := BuildReport(lines, nil, ReportOptions{Level: LevelProgram})
	if len(rep.Rows) != 3 {
		t.Fatalf("rows: %+v", rep.Rows)
	}
	if rep.Rows[0].Code != "" || rep.Rows[1].Code != "A.01" || rep.Rows[2].Code != "B.02" {
		t.Fatalf("wrong order: %+v", rep.Rows)
	}
}

func TestBuildReportZeroAllocationGroupPercent(t *testing.T) {
	lines := []BudgetLine{{OrgUnit: "Dinas A", Program: "P", ProgramCode: "P.01", Allocated: 0}}
	entries := []RealizationEntry{{OrgUnit: "Dinas A", SpendingCode: "", Realized: 0}}
	rep := BuildReport(lines, entries, ReportOptions{Level: LevelProgram})
	for _, row := range rep.Rows {
		if row.Percent != 0 {
			t.Fatalf("percent must be 0 for zero allocation: %+v", row)
		}
	}
	if rep.Totals.Percent != 0 {
		t.Fatalf("totals percent: %v", rep.Totals.Percent)
	}
}
