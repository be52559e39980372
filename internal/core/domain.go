// Package core holds the budget reconciliation domain: the three imported
// datasets, the canonical join key, and the pure reconciliation and
// aggregation functions computed over them.
package core

// BudgetLine is one row of the allocation plan ("master" data): a planned
// spending amount for a spending category under an organizational unit,
// program, activity and sub-activity.
type BudgetLine struct {
	ID              string  `json:"id"`
	OrgUnit         string  `json:"org_unit"`
	OrgUnitCode     string  `json:"org_unit_code"`
	Program         string  `json:"program"`
	ProgramCode     string  `json:"program_code"`
	Activity        string  `json:"activity"`
	ActivityCode    string  `json:"activity_code"`
	SubActivity     string  `json:"sub_activity"`
	SubActivityCode string  `json:"sub_activity_code"`
	Spending        string  `json:"spending"`
	SpendingCode    string  `json:"spending_code"`
	Allocated       float64 `json:"allocated"`
	// Realized is the already-realized amount some feeds carry on the
	// master row itself. It counts toward the line's realized total in
	// addition to matched realization entries.
	Realized float64 `json:"realized"`
	// Ceiling is the disbursement cap (Pagu SPD), distinct from Allocated.
	Ceiling float64 `json:"ceiling"`
}

// RealizationEntry is one recorded disbursement transaction. The hierarchy
// fields (program, activity, sub-activity) are optional and often sparse.
type RealizationEntry struct {
	ID              string  `json:"id"`
	OrgUnit         string  `json:"org_unit"`
	OrgUnitCode     string  `json:"org_unit_code"`
	Program         string  `json:"program"`
	ProgramCode     string  `json:"program_code"`
	Activity        string  `json:"activity"`
	ActivityCode    string  `json:"activity_code"`
	SubActivity     string  `json:"sub_activity"`
	SubActivityCode string  `json:"sub_activity_code"`
	Spending        string  `json:"spending"`
	SpendingCode    string  `json:"spending_code"`
	Realized        float64 `json:"realized"`
}

// SpendingCategory is one row of the spending-code lookup table. It is
// imported for display enrichment only and is not joined into reconciliation.
type SpendingCategory struct {
	ID           string `json:"id"`
	SpendingCode string `json:"spending_code"`
	Spending     string `json:"spending"`
}

// Summary holds dataset-wide totals.
type Summary struct {
	TotalAllocated float64 `json:"total_allocated"`
	TotalRealized  float64 `json:"total_realized"`
	Remaining      float64 `json:"remaining"`
	Percent        float64 `json:"percent"`
}

// NewSummary derives the remainder and execution percentage from totals.
// A zero allocation yields percent 0, never NaN.
func NewSummary(allocated, realized float64) Summary {
	s := Summary{
		TotalAllocated: allocated,
		TotalRealized:  realized,
		Remaining:      allocated - realized,
	}
	if allocated > 0 {
		s.Percent = realized / allocated * 100
	}
	return s
}
