package core

import "sort"

// LineFigure is one budget line together with its computed realized total:
// the sum of all realization entries matching the line's key plus the
// already-realized amount the master feed carried on the line itself.
type LineFigure struct {
	Line     BudgetLine
	Realized float64
}

// Anomaly is the accumulated realization at a key no budget line claims.
// Entry is the first imported realization entry at that key and supplies the
// attribution fields (organizational unit, codes, names).
type Anomaly struct {
	Entry    RealizationEntry
	Realized float64
}

// Reconciliation is the read-side join of the budget-line and realization
// collections. It never mutates its inputs; recompute it whenever either
// collection changes.
type Reconciliation struct {
	Lines     []LineFigure
	Anomalies []Anomaly
	Summary   Summary
}

// OrgComparison is the allocated-vs-realized pair for one organizational
// unit, the series behind the dashboard comparison chart. Anomalous
// realization is attributed to its own (unvalidated) unit name.
type OrgComparison struct {
	OrgUnit   string  `json:"org_unit"`
	Allocated float64 `json:"allocated"`
	Realized  float64 `json:"realized"`
}

// Reconcile joins realization entries against budget lines by canonical key.
//
// Entries are accumulated per key in one pass; budget lines then walk in
// input order, and each line consumes (removes) its key's accumulated amount
// from the map. When several lines share a key, the first one in input order
// claims the whole accumulated amount and later duplicates get zero from the
// map. Whatever is left in the map afterwards is by construction unmatched
// and becomes one Anomaly per key, so every realized amount is counted
// exactly once: either on a line or as an anomaly.
func Reconcile(lines []BudgetLine, entries []RealizationEntry) Reconciliation {
	accumulated := make(map[Key]float64, len(entries))
	first := make(map[Key]RealizationEntry, len(entries))
	for _, e := range entries {
		k := e.EntryKey()
		if _, ok := first[k]; !ok {
			first[k] = e
		}
		accumulated[k] += e.Realized
	}

	rec := Reconciliation{Lines: make([]LineFigure, 0, len(lines))}
	var totalAllocated, totalRealized float64
	for _, l := range lines {
		realized := l.Realized
		k := l.LineKey()
		if amt, ok := accumulated[k]; ok {
			realized += amt
			delete(accumulated, k)
		}
		rec.Lines = append(rec.Lines, LineFigure{Line: l, Realized: realized})
		totalAllocated += l.Allocated
		totalRealized += realized
	}

	for k, amt := range accumulated {
		rec.Anomalies = append(rec.Anomalies, Anomaly{Entry: first[k], Realized: amt})
		totalRealized += amt
	}
	sort.Slice(rec.Anomalies, func(i, j int) bool {
		return rec.Anomalies[i].Entry.EntryKey().String() < rec.Anomalies[j].Entry.EntryKey().String()
	})

	rec.Summary = NewSummary(totalAllocated, totalRealized)
	return rec
}

// Remaining quantities and execution percentage for a single figure.

// RemainingBudget is the line's allocation minus its realized total.
func (f LineFigure) RemainingBudget() float64 {
	return f.Line.Allocated - f.Realized
}

// RemainingCeiling is the line's disbursement ceiling minus its realized
// total.
func (f LineFigure) RemainingCeiling() float64 {
	return f.Line.Ceiling - f.Realized
}

// Percent is the line's execution percentage; 0 when nothing is allocated.
func (f LineFigure) Percent() float64 {
	if f.Line.Allocated <= 0 {
		return 0
	}
	return f.Realized / f.Line.Allocated * 100
}

// ByOrgUnit folds the reconciliation into one allocated-vs-realized pair per
// organizational unit, ordered by unit name. Lines group under their own
// unit; anomalies under the unit name carried by their representative entry.
func (r Reconciliation) ByOrgUnit() []OrgComparison {
	groups := make(map[string]*OrgComparison)
	order := make([]string, 0)
	get := func(name string) *OrgComparison {
		if g, ok := groups[name]; ok {
			return g
		}
		g := &OrgComparison{OrgUnit: name}
		groups[name] = g
		order = append(order, name)
		return g
	}
	for _, f := range r.Lines {
		g := get(f.Line.OrgUnit)
		g.Allocated += f.Line.Allocated
		g.Realized += f.Realized
	}
	for _, a := range r.Anomalies {
		get(a.Entry.OrgUnit).Realized += a.Realized
	}
	sort.Strings(order)
	out := make([]OrgComparison, 0, len(order))
	for _, name := range order {
		out = append(out, *groups[name])
	}
	return out
}
