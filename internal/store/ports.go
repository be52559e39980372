// Package store defines the persistence ports for the three datasets.
package store

import (
	"context"
	"errors"

	"finrealize/internal/core"
)

// ErrNotFound reports an update or delete against an unknown record ID.
var ErrNotFound = errors.New("record not found")

// Ports for the local authoritative store. Appends are wholesale (one import
// batch at a time) and listing returns records in insertion order, so reports
// stay stable across reloads.
type (
	BudgetLineStore interface {
		ListBudgetLines(ctx context.Context) ([]core.BudgetLine, error)
		AppendBudgetLines(ctx context.Context, lines []core.BudgetLine) error
		ClearBudgetLines(ctx context.Context) error
		UpdateBudgetLine(ctx context.Context, line core.BudgetLine) error
		DeleteBudgetLine(ctx context.Context, id string) error
	}

	RealizationStore interface {
		ListRealizations(ctx context.Context) ([]core.RealizationEntry, error)
		AppendRealizations(ctx context.Context, entries []core.RealizationEntry) error
		ClearRealizations(ctx context.Context) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.SpendingCategory, error)
		AppendCategories(ctx context.Context, cats []core.SpendingCategory) error
		ClearCategories(ctx context.Context) error
	}

	// Store is the full persistence surface the service layer works
	// against.
	Store interface {
		BudgetLineStore
		RealizationStore
		CategoryStore
	}
)
