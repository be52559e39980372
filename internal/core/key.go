package core

import "strings"

// keySeparator joins the two key components. It survives Canon (which only
// touches whitespace and case), so ("AB","1") and ("A","B1") can never
// collide the way naive concatenation would let them.
const keySeparator = "|"

// Canon normalizes a string for joining: zero-width and non-breaking space
// code points are removed, runs of whitespace collapse to a single space,
// and the result is trimmed and lower-cased. Canon is idempotent.
func Canon(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			// zero-width space, ZWNJ, ZWJ, BOM
			continue
		case '\u00a0', ' ', '\t', '\n', '\r', '\v', '\f':
			space = true
			continue
		}
		if space {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// Key is the canonical composite join key between a BudgetLine and a
// RealizationEntry. Construct it only through KeyOf.
type Key struct {
	OrgUnit      string
	SpendingCode string
}

// KeyOf builds a Key from an organizational-unit name and a spending code,
// canonicalizing both components.
func KeyOf(orgUnit, spendingCode string) Key {
	return Key{OrgUnit: Canon(orgUnit), SpendingCode: Canon(spendingCode)}
}

// LineKey returns the budget line's canonical join key.
func (l BudgetLine) LineKey() Key {
	return KeyOf(l.OrgUnit, l.SpendingCode)
}

// EntryKey returns the realization entry's canonical join key.
func (e RealizationEntry) EntryKey() Key {
	return KeyOf(e.OrgUnit, e.SpendingCode)
}

// String renders the key for display and stable ordering.
func (k Key) String() string {
	return k.OrgUnit + keySeparator + k.SpendingCode
}
