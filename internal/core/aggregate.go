package core

import (
	"fmt"
	"sort"
	"strings"
)

// Level selects the rollup granularity of a report.
type Level string

const (
	LevelProgram     Level = "program"
	LevelActivity    Level = "activity"
	LevelSubActivity Level = "sub-activity"
	LevelSpending    Level = "spending-line"
)

// ParseLevel maps a query-parameter value to a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelProgram:
		return LevelProgram, nil
	case LevelActivity:
		return LevelActivity, nil
	case LevelSubActivity:
		return LevelSubActivity, nil
	case LevelSpending:
		return LevelSpending, nil
	}
	return "", fmt.Errorf("unknown report level %q", s)
}

// ReportOptions selects what BuildReport aggregates.
type ReportOptions struct {
	Level Level
	// Parent restricts budget lines to those whose immediate parent name
	// equals it exactly. Realization entries are only excluded when they
	// carry the parent field; sparse entries pass through.
	Parent string
	// Search is a case-insensitive substring filter over each group's
	// display name, code and organizational unit, applied after
	// aggregation.
	Search string
}

// ReportRow is one aggregated group of the report.
type ReportRow struct {
	OrgUnit          string  `json:"org_unit"`
	Parent           string  `json:"parent,omitempty"`
	Name             string  `json:"name"`
	Code             string  `json:"code"`
	Allocated        float64 `json:"allocated"`
	Ceiling          float64 `json:"ceiling"`
	Realized         float64 `json:"realized"`
	RemainingCeiling float64 `json:"remaining_ceiling"`
	RemainingBudget  float64 `json:"remaining_budget"`
	Percent          float64 `json:"percent"`
	// Unmatched marks a synthetic group built from realization entries
	// that no budget line claims.
	Unmatched bool `json:"unmatched,omitempty"`
}

// ReportTotals sums the displayed rows only: filters and search shrink the
// totals along with the row set.
type ReportTotals struct {
	Allocated        float64 `json:"allocated"`
	Ceiling          float64 `json:"ceiling"`
	Realized         float64 `json:"realized"`
	RemainingCeiling float64 `json:"remaining_ceiling"`
	RemainingBudget  float64 `json:"remaining_budget"`
	Percent          float64 `json:"percent"`
}

// Report is the aggregated view for one level and filter combination.
type Report struct {
	Level  Level        `json:"level"`
	Rows   []ReportRow  `json:"rows"`
	Totals ReportTotals `json:"totals"`
}

// grouping describes one group's identity at a level. The key is built from
// canonicalized components joined by the key separator.
type grouping struct {
	key    string
	name   string
	code   string
	parent string
	ok     bool
}

func lineGrouping(level Level, l BudgetLine) grouping {
	return fieldsGrouping(level,
		l.OrgUnit,
		l.Program, l.ProgramCode,
		l.Activity, l.ActivityCode,
		l.SubActivity, l.SubActivityCode,
		l.Spending, l.SpendingCode)
}

func entryGrouping(level Level, e RealizationEntry) grouping {
	return fieldsGrouping(level,
		e.OrgUnit,
		e.Program, e.ProgramCode,
		e.Activity, e.ActivityCode,
		e.SubActivity, e.SubActivityCode,
		e.Spending, e.SpendingCode)
}

func fieldsGrouping(level Level, org, program, programCode, activity, activityCode, subActivity, subActivityCode, spending, spendingCode string) grouping {
	switch level {
	case LevelProgram:
		// Programs often come without a code; the name stands in so two
		// differently-named programs never merge.
		codeOrName := programCode
		if Canon(codeOrName) == "" {
			codeOrName = program
		}
		return grouping{
			key:    Canon(org) + keySeparator + Canon(codeOrName),
			name:   program,
			code:   programCode,
			ok:     Canon(codeOrName) != "",
		}
	case LevelActivity:
		return grouping{
			key:    Canon(org) + keySeparator + Canon(activityCode),
			name:   activity,
			code:   activityCode,
			parent: program,
			ok:     Canon(activityCode) != "",
		}
	case LevelSubActivity:
		return grouping{
			key:    Canon(org) + keySeparator + Canon(subActivityCode),
			name:   subActivity,
			code:   subActivityCode,
			parent: activity,
			ok:     Canon(subActivityCode) != "",
		}
	default: // LevelSpending
		// Scoped by sub-activity code: the same spending code recurs
		// across sub-activities and must not merge.
		return grouping{
			key:    Canon(org) + keySeparator + Canon(subActivityCode) + keySeparator + Canon(spendingCode),
			name:   spending,
			code:   spendingCode,
			parent: subActivity,
			ok:     Canon(spendingCode) != "",
		}
	}
}

// parentOfLine returns the line's immediate parent name at the level above.
func parentOfLine(level Level, l BudgetLine) string {
	switch level {
	case LevelActivity:
		return l.Program
	case LevelSubActivity:
		return l.Activity
	case LevelSpending:
		return l.SubActivity
	}
	return ""
}

func parentOfEntry(level Level, e RealizationEntry) string {
	switch level {
	case LevelActivity:
		return e.Program
	case LevelSubActivity:
		return e.Activity
	case LevelSpending:
		return e.SubActivity
	}
	return ""
}

// BuildReport aggregates budget lines and realization entries into one row
// per group at the requested level. Realized amounts come from the
// reconciliation's per-line figures; anomalies fold into the group their
// entry's fields point at, or surface as their own flagged zero-allocation
// row when no group can claim them.
func BuildReport(lines []BudgetLine, entries []RealizationEntry, opts ReportOptions) Report {
	level := opts.Level
	if level == "" {
		level = LevelProgram
	}

	filteredLines := lines
	filteredEntries := entries
	if opts.Parent != "" && level != LevelProgram {
		filteredLines = make([]BudgetLine, 0, len(lines))
		for _, l := range lines {
			if parentOfLine(level, l) == opts.Parent {
				filteredLines = append(filteredLines, l)
			}
		}
		filteredEntries = make([]RealizationEntry, 0, len(entries))
		for _, e := range entries {
			if p := parentOfEntry(level, e); p != "" && p != opts.Parent {
				continue
			}
			filteredEntries = append(filteredEntries, e)
		}
	}

	rec := Reconcile(filteredLines, filteredEntries)

	groups := make(map[string]*ReportRow)
	order := make([]string, 0)
	for _, f := range rec.Lines {
		g := lineGrouping(level, f.Line)
		row, ok := groups[g.key]
		if !ok {
			row = &ReportRow{
				OrgUnit: f.Line.OrgUnit,
				Parent:  g.parent,
				Name:    g.name,
				Code:    g.code,
			}
			groups[g.key] = row
			order = append(order, g.key)
		}
		row.Allocated += f.Line.Allocated
		row.Ceiling += f.Line.Ceiling
		row.Realized += f.Realized
	}

	for _, a := range rec.Anomalies {
		g := entryGrouping(level, a.Entry)
		if g.ok {
			if row, ok := groups[g.key]; ok {
				row.Realized += a.Realized
				continue
			}
		}
		key := g.key
		if !g.ok {
			key = "?" + keySeparator + a.Entry.EntryKey().String()
		}
		row, ok := groups[key]
		if !ok {
			name := g.name
			if name == "" {
				name = a.Entry.Spending
			}
			code := g.code
			if code == "" {
				code = a.Entry.SpendingCode
			}
			row = &ReportRow{
				OrgUnit:   a.Entry.OrgUnit,
				Parent:    g.parent,
				Name:      name,
				Code:      code,
				Unmatched: true,
			}
			groups[key] = row
			order = append(order, key)
		}
		row.Realized += a.Realized
	}

	rows := make([]ReportRow, 0, len(order))
	q := strings.ToLower(strings.TrimSpace(opts.Search))
	for _, key := range order {
		row := *groups[key]
		if q != "" &&
			!strings.Contains(strings.ToLower(row.Name), q) &&
			!strings.Contains(strings.ToLower(row.Code), q) &&
			!strings.Contains(strings.ToLower(row.OrgUnit), q) {
			continue
		}
		row.RemainingCeiling = row.Ceiling - row.Realized
		row.RemainingBudget = row.Allocated - row.Realized
		if row.Allocated > 0 {
			row.Percent = row.Realized / row.Allocated * 100
		}
		rows = append(rows, row)
	}

	// Empty codes sort first; name and org unit break ties so the order is
	// stable across runs.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code < rows[j].Code
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].OrgUnit < rows[j].OrgUnit
	})

	var totals ReportTotals
	for _, row := range rows {
		totals.Allocated += row.Allocated
		totals.Ceiling += row.Ceiling
		totals.Realized += row.Realized
	}
	totals.RemainingCeiling = totals.Ceiling - totals.Realized
	totals.RemainingBudget = totals.Allocated - totals.Realized
	if totals.Allocated > 0 {
		totals.Percent = totals.Realized / totals.Allocated * 100
	}

	return Report{Level: level, Rows: rows, Totals: totals}
}
