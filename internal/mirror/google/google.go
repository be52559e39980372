// Package google mirrors the datasets to a Google Sheets spreadsheet, one
// sheet per dataset. Each replace clears the sheet and rewrites it whole.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finrealize/internal/core"
	"finrealize/internal/mirror"
)

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	budgetSheet      string
	realizationSheet string
	categorySheet    string
}

var _ mirror.DatasetMirror = (*Client)(nil)

// NewFromEnv creates a mirror client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS).
// Optional sheet names: GOOGLE_BUDGET_SHEET_NAME (default "Master"),
// GOOGLE_REALIZATION_SHEET_NAME (default "Realisasi"),
// GOOGLE_CATEGORY_SHEET_NAME (default "Belanja").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		budgetSheet:      envOr("GOOGLE_BUDGET_SHEET_NAME", "Master"),
		realizationSheet: envOr("GOOGLE_REALIZATION_SHEET_NAME", "Realisasi"),
		categorySheet:    envOr("GOOGLE_CATEGORY_SHEET_NAME", "Belanja"),
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ReplaceBudgetLines(ctx context.Context, lines []core.BudgetLine) error {
	values := [][]any{{
		"SKPD", "Kode SKPD", "Program", "Kode Program",
		"Kegiatan", "Kode Kegiatan", "Sub Kegiatan", "Kode Sub Kegiatan",
		"Belanja", "Kode Belanja", "Anggaran", "Pagu SPD", "Realisasi",
	}}
	for _, l := range lines {
		values = append(values, []any{
			l.OrgUnit, l.OrgUnitCode, l.Program, l.ProgramCode,
			l.Activity, l.ActivityCode, l.SubActivity, l.SubActivityCode,
			l.Spending, l.SpendingCode, l.Allocated, l.Ceiling, l.Realized,
		})
	}
	return c.rewrite(ctx, c.budgetSheet, values)
}

func (c *Client) ReplaceRealizations(ctx context.Context, entries []core.RealizationEntry) error {
	values := [][]any{{
		"SKPD", "Kode SKPD", "Program", "Kode Program",
		"Kegiatan", "Kode Kegiatan", "Sub Kegiatan", "Kode Sub Kegiatan",
		"Belanja", "Kode Belanja", "Realisasi",
	}}
	for _, e := range entries {
		values = append(values, []any{
			e.OrgUnit, e.OrgUnitCode, e.Program, e.ProgramCode,
			e.Activity, e.ActivityCode, e.SubActivity, e.SubActivityCode,
			e.Spending, e.SpendingCode, e.Realized,
		})
	}
	return c.rewrite(ctx, c.realizationSheet, values)
}

func (c *Client) ReplaceCategories(ctx context.Context, cats []core.SpendingCategory) error {
	values := [][]any{{"Kode Belanja", "Belanja"}}
	for _, cat := range cats {
		values = append(values, []any{cat.SpendingCode, cat.Spending})
	}
	return c.rewrite(ctx, c.categorySheet, values)
}

// rewrite clears the whole sheet, then writes header plus rows from A1.
func (c *Client) rewrite(ctx context.Context, sheet string, values [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: values}
	writeRange := fmt.Sprintf("%s!A1", sheet)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", sheet, err)
	}
	return nil
}
