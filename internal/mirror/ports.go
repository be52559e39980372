// Package mirror defines the outbound port for the best-effort remote copy
// of the datasets. Mirror failures are logged by callers and never surface
// to whoever triggered the mutation.
package mirror

import (
	"context"

	"finrealize/internal/core"
)

// DatasetMirror rewrites the full remote copy of one dataset at a time.
type DatasetMirror interface {
	ReplaceBudgetLines(ctx context.Context, lines []core.BudgetLine) error
	ReplaceRealizations(ctx context.Context, entries []core.RealizationEntry) error
	ReplaceCategories(ctx context.Context, cats []core.SpendingCategory) error
}
