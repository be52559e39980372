package normalize

import "testing"

func TestBudgetLineIndonesianHeaders(t *testing.T) {
	row := Row{
		"SKPD":              "Dinas Pendidikan",
		"Kode SKPD":         "1.01",
		"Program":           "Program Wajib Belajar",
		"Kode Program":      "1.01.01",
		"Kegiatan":          "Pengelolaan Pendidikan",
		"Kode Kegiatan":     "1.01.01.2",
		"Sub Kegiatan":      "Pembangunan Gedung",
		"Kode Sub Kegiatan": "1.01.01.2.01",
		"Belanja":           "Belanja Modal",
		"Kode Belanja":      "5.2.01",
		"Anggaran":          "1.234.567,89",
		"Pagu SPD":          "1.000.000",
	}
	got := BudgetLine(row)
	if got.ID == "" {
		t.Fatalf("missing id")
	}
	if got.OrgUnit != "Dinas Pendidikan" || got.OrgUnitCode != "1.01" {
		t.Fatalf("org unit: %+v", got)
	}
	if got.Spending != "Belanja Modal" || got.SpendingCode != "5.2.01" {
		t.Fatalf("spending fields: %+v", got)
	}
	if got.Allocated != 1234567.89 {
		t.Fatalf("allocated = %v", got.Allocated)
	}
	if got.Ceiling != 1000000 {
		t.Fatalf("ceiling = %v", got.Ceiling)
	}
	if got.Realized != 0 {
		t.Fatalf("realized should default to zero: %v", got.Realized)
	}
}

func TestBudgetLineEnglishHeaders(t *testing.T) {
	row := Row{
		"Org Unit":      "Dinas Kesehatan",
		"Spending Code": "5.1.02",
		"Allocated":     "500000",
		"Ceiling":       "450000",
	}
	got := BudgetLine(row)
	if got.OrgUnit != "Dinas Kesehatan" || got.SpendingCode != "5.1.02" {
		t.Fatalf("got %+v", got)
	}
	if got.Allocated != 500000 || got.Ceiling != 450000 {
		t.Fatalf("amounts: %+v", got)
	}
}

func TestResolveExactBeatsSubstring(t *testing.T) {
	// "Belanja" must not be captured by the longer "Kode Belanja" header.
	row := Row{
		"Kode Belanja": "5.2.01",
		"Belanja":      "Belanja Modal",
	}
	got := SpendingCategory(row)
	if got.Spending != "Belanja Modal" {
		t.Fatalf("spending = %q", got.Spending)
	}
	if got.SpendingCode != "5.2.01" {
		t.Fatalf("code = %q", got.SpendingCode)
	}
}

func TestResolveHeadersCaseAndSpaceInsensitive(t *testing.T) {
	row := Row{
		"  kode   belanja ": "5.2.01",
		"BELANJA":           "Belanja Modal",
	}
	got := SpendingCategory(row)
	if got.SpendingCode != "5.2.01" || got.Spending != "Belanja Modal" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveSubstringFallback(t *testing.T) {
	row := Row{
		"Nama SKPD": "Dinas Sosial",
	}
	got := RealizationEntry(row)
	if got.OrgUnit != "Dinas Sosial" {
		t.Fatalf("org unit = %q", got.OrgUnit)
	}
}

func TestMissingFieldsDegradeToZeroValues(t *testing.T) {
	got := RealizationEntry(Row{"Unrelated": "x"})
	if got.ID == "" {
		t.Fatalf("missing id")
	}
	if got.OrgUnit != "" || got.SpendingCode != "" || got.Realized != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestRealizationEntryAmount(t *testing.T) {
	got := RealizationEntry(Row{"Realisasi": "Rp 750.000"})
	if got.Realized != 750000 {
		t.Fatalf("realized = %v", got.Realized)
	}
}

func TestDistinctIDs(t *testing.T) {
	a := BudgetLine(Row{})
	b := BudgetLine(Row{})
	if a.ID == b.ID {
		t.Fatalf("ids must be unique per record")
	}
}
