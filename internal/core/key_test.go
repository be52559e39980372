package core

import "testing"

func TestCanon(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Dinas Kesehatan  ", "dinas kesehatan"},
		{" Dinas\u00a0Kesehatan ", "dinas kesehatan"},
		{"Dinas\u200bKesehatan", "dinaskesehatan"},
		{"DINAS   PENDIDIKAN", "dinas pendidikan"},
		{"\ufeff5.1.01\t", "5.1.01"},
		{"a\nb\r\nc", "a b c"},
	}
	for i, tc := range cases {
		if got := Canon(tc.in); got != tc.want {
			t.Fatalf("case %d: Canon(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestCanonIdempotent(t *testing.T) {
	inputs := []string{"", " Dinas\u00a0Kesehatan ", "A  B\tC", "5.1.01", "ZED\u200bz"}
	for _, s := range inputs {
		once := Canon(s)
		if twice := Canon(once); twice != once {
			t.Fatalf("Canon not idempotent for %q: %q vs %q", s, once, twice)
		}
	}
}

func TestKeyOfNoFalseCollision(t *testing.T) {
	// ("AB","1") and ("A","B1") must stay distinct keys.
	a := KeyOf("AB", "1")
	b := KeyOf("A", "B1")
	if a == b {
		t.Fatalf("keys collided: %v", a)
	}
	if a.String() == b.String() {
		t.Fatalf("key strings collided: %q", a.String())
	}
}

func TestKeyMatchesAcrossFormatting(t *testing.T) {
	l := BudgetLine{OrgUnit: " Dinas\u00a0Kesehatan ", SpendingCode: "5.1.01 "}
	e := RealizationEntry{OrgUnit: "dinas kesehatan", SpendingCode: "5.1.01"}
	if l.LineKey() != e.EntryKey() {
		t.Fatalf("expected equal keys, got %v and %v", l.LineKey(), e.EntryKey())
	}
}
