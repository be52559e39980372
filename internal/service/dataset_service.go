// Package service orchestrates dataset lifecycle operations: import, list,
// edit, clear, and the derived reconciliation views.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"finrealize/internal/amqp"
	"finrealize/internal/core"
	"finrealize/internal/ingest"
	"finrealize/internal/normalize"
	"finrealize/internal/store"
)

// SyncPublisher notifies the mirror worker that a dataset changed. Publish
// failures never fail the calling operation.
type SyncPublisher interface {
	PublishDatasetSync(ctx context.Context, dataset string, count int) error
}

// DatasetService owns the three datasets. The local store is authoritative;
// every mutation is followed by a fire-and-forget sync notification.
type DatasetService struct {
	store     store.Store
	publisher SyncPublisher
}

func NewDatasetService(store store.Store, publisher SyncPublisher) *DatasetService {
	return &DatasetService{store: store, publisher: publisher}
}

// ImportBudgetLines decodes an uploaded workbook and appends every data row
// to the master dataset. Malformed rows degrade to zero values rather than
// aborting; re-imports append duplicates on purpose. Returns the number of
// rows imported.
func (s *DatasetService) ImportBudgetLines(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ingest.DecodeFirstSheet(r)
	if err != nil {
		return 0, fmt.Errorf("decode workbook: %w", err)
	}
	lines := make([]core.BudgetLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, normalize.BudgetLine(row))
	}
	if err := s.store.AppendBudgetLines(ctx, lines); err != nil {
		return 0, fmt.Errorf("store budget lines: %w", err)
	}
	s.publishSync(ctx, amqp.DatasetBudgetLines, len(lines))
	return len(lines), nil
}

// ImportRealizations appends disbursement rows from an uploaded workbook.
func (s *DatasetService) ImportRealizations(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ingest.DecodeFirstSheet(r)
	if err != nil {
		return 0, fmt.Errorf("decode workbook: %w", err)
	}
	entries := make([]core.RealizationEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, normalize.RealizationEntry(row))
	}
	if err := s.store.AppendRealizations(ctx, entries); err != nil {
		return 0, fmt.Errorf("store realizations: %w", err)
	}
	s.publishSync(ctx, amqp.DatasetRealizations, len(entries))
	return len(entries), nil
}

// ImportCategories appends spending-category rows from an uploaded workbook.
func (s *DatasetService) ImportCategories(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ingest.DecodeFirstSheet(r)
	if err != nil {
		return 0, fmt.Errorf("decode workbook: %w", err)
	}
	cats := make([]core.SpendingCategory, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, normalize.SpendingCategory(row))
	}
	if err := s.store.AppendCategories(ctx, cats); err != nil {
		return 0, fmt.Errorf("store categories: %w", err)
	}
	s.publishSync(ctx, amqp.DatasetCategories, len(cats))
	return len(cats), nil
}

// BudgetLines lists the master dataset, optionally filtered by a
// case-insensitive substring over org unit, spending name and codes.
func (s *DatasetService) BudgetLines(ctx context.Context, search string) ([]core.BudgetLine, error) {
	lines, err := s.store.ListBudgetLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budget lines: %w", err)
	}
	if search == "" {
		return lines, nil
	}
	out := lines[:0:0]
	for _, l := range lines {
		if matchesSearch(search, l.OrgUnit, l.Spending, l.SpendingCode, l.OrgUnitCode) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Realizations lists the realization dataset with the same search semantics.
func (s *DatasetService) Realizations(ctx context.Context, search string) ([]core.RealizationEntry, error) {
	entries, err := s.store.ListRealizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list realizations: %w", err)
	}
	if search == "" {
		return entries, nil
	}
	out := entries[:0:0]
	for _, e := range entries {
		if matchesSearch(search, e.OrgUnit, e.Spending, e.SpendingCode, e.OrgUnitCode) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Categories lists the spending-category lookup table.
func (s *DatasetService) Categories(ctx context.Context, search string) ([]core.SpendingCategory, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if search == "" {
		return cats, nil
	}
	out := cats[:0:0]
	for _, c := range cats {
		if matchesSearch(search, c.Spending, c.SpendingCode) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *DatasetService) ClearBudgetLines(ctx context.Context) error {
	if err := s.store.ClearBudgetLines(ctx); err != nil {
		return fmt.Errorf("clear budget lines: %w", err)
	}
	s.publishSync(ctx, amqp.DatasetBudgetLines, 0)
	return nil
}

func (s *DatasetService) ClearRealizations(ctx context.Context) error {
	if err := s.store.ClearRealizations(ctx); err != nil {
		return fmt.Errorf("clear realizations: %w", err)
	}
	s.publishSync(ctx, amqp.DatasetRealizations, 0)
	return nil
}

func (s *DatasetService) ClearCategories(ctx context.Context) error {
	if err := s.store.ClearCategories(ctx); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	s.publishSync(ctx, amqp.DatasetCategories, 0)
	return nil
}

// UpdateBudgetLine replaces one master record in place.
func (s *DatasetService) UpdateBudgetLine(ctx context.Context, line core.BudgetLine) error {
	if err := s.store.UpdateBudgetLine(ctx, line); err != nil {
		return err
	}
	s.publishDatasetState(ctx, amqp.DatasetBudgetLines)
	return nil
}

// DeleteBudgetLine removes one master record by ID.
func (s *DatasetService) DeleteBudgetLine(ctx context.Context, id string) error {
	if err := s.store.DeleteBudgetLine(ctx, id); err != nil {
		return err
	}
	s.publishDatasetState(ctx, amqp.DatasetBudgetLines)
	return nil
}

// Reconciliation loads both financial datasets and joins them.
func (s *DatasetService) Reconciliation(ctx context.Context) (core.Reconciliation, error) {
	lines, err := s.store.ListBudgetLines(ctx)
	if err != nil {
		return core.Reconciliation{}, fmt.Errorf("list budget lines: %w", err)
	}
	entries, err := s.store.ListRealizations(ctx)
	if err != nil {
		return core.Reconciliation{}, fmt.Errorf("list realizations: %w", err)
	}
	return core.Reconcile(lines, entries), nil
}

// Report builds the hierarchical rollup for one level and filter set.
func (s *DatasetService) Report(ctx context.Context, opts core.ReportOptions) (core.Report, error) {
	lines, err := s.store.ListBudgetLines(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list budget lines: %w", err)
	}
	entries, err := s.store.ListRealizations(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list realizations: %w", err)
	}
	return core.BuildReport(lines, entries, opts), nil
}

func (s *DatasetService) publishSync(ctx context.Context, dataset string, count int) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message", "dataset", dataset)
		return
	}
	if err := s.publisher.PublishDatasetSync(ctx, dataset, count); err != nil {
		// The local store already committed; sync is best effort.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"dataset", dataset,
			"error", err)
	}
}

// publishDatasetState publishes a sync message with the dataset's current
// row count.
func (s *DatasetService) publishDatasetState(ctx context.Context, dataset string) {
	count := 0
	if lines, err := s.store.ListBudgetLines(ctx); err == nil {
		count = len(lines)
	}
	s.publishSync(ctx, dataset, count)
}

func matchesSearch(search string, fields ...string) bool {
	q := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
