// Package sqlite persists the datasets in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"finrealize/internal/core"
	"finrealize/internal/store"

	_ "modernc.org/sqlite"
)

// Repository implements store.Store on SQLite. Records carry an explicit
// position column so listing reproduces insertion order exactly.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const budgetLineColumns = `id, org_unit, org_unit_code, program, program_code,
	activity, activity_code, sub_activity, sub_activity_code,
	spending, spending_code, allocated, ceiling, realized`

func (r *Repository) ListBudgetLines(ctx context.Context) ([]core.BudgetLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetLineColumns+` FROM budget_lines ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list budget lines: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetLine
	for rows.Next() {
		var l core.BudgetLine
		if err := rows.Scan(
			&l.ID, &l.OrgUnit, &l.OrgUnitCode, &l.Program, &l.ProgramCode,
			&l.Activity, &l.ActivityCode, &l.SubActivity, &l.SubActivityCode,
			&l.Spending, &l.SpendingCode, &l.Allocated, &l.Ceiling, &l.Realized,
		); err != nil {
			return nil, fmt.Errorf("scan budget line: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget lines: %w", err)
	}
	return out, nil
}

func (r *Repository) AppendBudgetLines(ctx context.Context, lines []core.BudgetLine) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, "budget_lines")
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO budget_lines (`+budgetLineColumns+`, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range lines {
			if _, err := stmt.ExecContext(ctx,
				l.ID, l.OrgUnit, l.OrgUnitCode, l.Program, l.ProgramCode,
				l.Activity, l.ActivityCode, l.SubActivity, l.SubActivityCode,
				l.Spending, l.SpendingCode, l.Allocated, l.Ceiling, l.Realized,
				pos,
			); err != nil {
				return fmt.Errorf("insert budget line %s: %w", l.ID, err)
			}
			pos++
		}
		return nil
	})
}

func (r *Repository) ClearBudgetLines(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_lines`); err != nil {
		return fmt.Errorf("clear budget lines: %w", err)
	}
	return nil
}

func (r *Repository) UpdateBudgetLine(ctx context.Context, l core.BudgetLine) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_lines SET
			org_unit = ?, org_unit_code = ?, program = ?, program_code = ?,
			activity = ?, activity_code = ?, sub_activity = ?, sub_activity_code = ?,
			spending = ?, spending_code = ?, allocated = ?, ceiling = ?, realized = ?
		 WHERE id = ?`,
		l.OrgUnit, l.OrgUnitCode, l.Program, l.ProgramCode,
		l.Activity, l.ActivityCode, l.SubActivity, l.SubActivityCode,
		l.Spending, l.SpendingCode, l.Allocated, l.Ceiling, l.Realized,
		l.ID)
	if err != nil {
		return fmt.Errorf("update budget line %s: %w", l.ID, err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteBudgetLine(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget line %s: %w", id, err)
	}
	return requireRow(res)
}

const realizationColumns = `id, org_unit, org_unit_code, program, program_code,
	activity, activity_code, sub_activity, sub_activity_code,
	spending, spending_code, realized`

func (r *Repository) ListRealizations(ctx context.Context) ([]core.RealizationEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+realizationColumns+` FROM realization_entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list realizations: %w", err)
	}
	defer rows.Close()

	var out []core.RealizationEntry
	for rows.Next() {
		var e core.RealizationEntry
		if err := rows.Scan(
			&e.ID, &e.OrgUnit, &e.OrgUnitCode, &e.Program, &e.ProgramCode,
			&e.Activity, &e.ActivityCode, &e.SubActivity, &e.SubActivityCode,
			&e.Spending, &e.SpendingCode, &e.Realized,
		); err != nil {
			return nil, fmt.Errorf("scan realization: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate realizations: %w", err)
	}
	return out, nil
}

func (r *Repository) AppendRealizations(ctx context.Context, entries []core.RealizationEntry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, "realization_entries")
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO realization_entries (`+realizationColumns+`, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				e.ID, e.OrgUnit, e.OrgUnitCode, e.Program, e.ProgramCode,
				e.Activity, e.ActivityCode, e.SubActivity, e.SubActivityCode,
				e.Spending, e.SpendingCode, e.Realized,
				pos,
			); err != nil {
				return fmt.Errorf("insert realization %s: %w", e.ID, err)
			}
			pos++
		}
		return nil
	})
}

func (r *Repository) ClearRealizations(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM realization_entries`); err != nil {
		return fmt.Errorf("clear realizations: %w", err)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.SpendingCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, spending, spending_code FROM spending_categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.SpendingCategory
	for rows.Next() {
		var c core.SpendingCategory
		if err := rows.Scan(&c.ID, &c.Spending, &c.SpendingCode); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *Repository) AppendCategories(ctx context.Context, cats []core.SpendingCategory) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, "spending_categories")
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO spending_categories (id, spending, spending_code, position)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, c := range cats {
			if _, err := stmt.ExecContext(ctx, c.ID, c.Spending, c.SpendingCode, pos); err != nil {
				return fmt.Errorf("insert category %s: %w", c.ID, err)
			}
			pos++
		}
		return nil
	})
}

func (r *Repository) ClearCategories(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM spending_categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nextPosition(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var pos int64
	// table names come from the fixed call sites above
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM `+table).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("next position for %s: %w", table, err)
	}
	return pos, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
