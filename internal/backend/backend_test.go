package backend

import (
	"context"
	"path/filepath"
	"testing"

	"finrealize/internal/config"
	"finrealize/internal/core"
)

func TestTypeIsValid(t *testing.T) {
	cases := []struct {
		in    Type
		valid bool
	}{
		{MemoryBackend, true},
		{SQLiteBackend, true},
		{Type("sheets"), false},
		{Type(""), false},
	}
	for _, tc := range cases {
		if got := tc.in.IsValid(); got != tc.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tc.in, got, tc.valid)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg := &config.Config{DataBackend: "memory"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got != MemoryBackend {
		t.Errorf("got %q, want %q", got, MemoryBackend)
	}

	cfg.DataBackend = "postgres"
	if _, err := FromAppConfig(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestFactoryCreateMemory(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.Create(&config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Store == nil {
		t.Fatal("expected store")
	}
	if res.Cleanup != nil {
		t.Error("memory backend should have no cleanup")
	}
}

func TestFactoryCreateSQLite(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.Create(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer res.Cleanup()

	ctx := context.Background()
	if err := res.Store.AppendBudgetLines(ctx, []core.BudgetLine{{ID: "a", OrgUnit: "Dinas A"}}); err != nil {
		t.Fatalf("AppendBudgetLines: %v", err)
	}
	lines, err := res.Store.ListBudgetLines(ctx)
	if err != nil {
		t.Fatalf("ListBudgetLines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}
