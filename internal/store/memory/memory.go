// Package memory is the in-process store used as the default backend and in
// tests.
package memory

import (
	"context"
	"sync"

	"finrealize/internal/core"
	"finrealize/internal/store"
)

type Store struct {
	mu      sync.Mutex
	lines   []core.BudgetLine
	entries []core.RealizationEntry
	cats    []core.SpendingCategory
}

func New() *Store {
	return &Store{}
}

func (s *Store) ListBudgetLines(_ context.Context) ([]core.BudgetLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetLine(nil), s.lines...), nil
}

func (s *Store) AppendBudgetLines(_ context.Context, lines []core.BudgetLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
	return nil
}

func (s *Store) ClearBudgetLines(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return nil
}

func (s *Store) UpdateBudgetLine(_ context.Context, line core.BudgetLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == line.ID {
			s.lines[i] = line
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteBudgetLine(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ListRealizations(_ context.Context) ([]core.RealizationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RealizationEntry(nil), s.entries...), nil
}

func (s *Store) AppendRealizations(_ context.Context, entries []core.RealizationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) ClearRealizations(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.SpendingCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.SpendingCategory(nil), s.cats...), nil
}

func (s *Store) AppendCategories(_ context.Context, cats []core.SpendingCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = append(s.cats, cats...)
	return nil
}

func (s *Store) ClearCategories(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = nil
	return nil
}
