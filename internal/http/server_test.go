package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"finrealize/internal/core"
	"finrealize/internal/service"
	"finrealize/internal/store/memory"
)

type fakeInsights struct{ text string }

func (f fakeInsights) Summarize(_ context.Context, _ core.Summary) string { return f.text }

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := service.NewDatasetService(st, nil)
	srv := NewServer(":0", svc, fakeInsights{text: "ringkasan"})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, st
}

func do(t *testing.T, srv *Server, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

// uploadBody builds a multipart body containing a small xlsx workbook.
func uploadBody(t *testing.T, rows [][]any) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var wb bytes.Buffer
	if err := f.Write(&wb); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "upload.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(wb.Bytes()); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestImportAndListBudgetLines(t *testing.T) {
	srv, _ := newTestServer(t)

	body, ct := uploadBody(t, [][]any{
		{"SKPD", "Belanja", "Kode Belanja", "Anggaran", "Pagu SPD"},
		{"Dinas A", "Belanja Modal", "5.2.01", "1.000.000", "900.000"},
	})
	rr := do(t, srv, http.MethodPost, "/api/master/import", body, ct)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", rr.Code, rr.Body.String())
	}
	var imp importResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &imp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if imp.Imported != 1 {
		t.Fatalf("imported=%d", imp.Imported)
	}

	rr = do(t, srv, http.MethodGet, "/api/master", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var lines []core.BudgetLine
	if err := json.Unmarshal(rr.Body.Bytes(), &lines); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(lines) != 1 || lines[0].OrgUnit != "Dinas A" || lines[0].Allocated != 1000000 {
		t.Fatalf("lines: %+v", lines)
	}

	rr = do(t, srv, http.MethodGet, "/api/master?q=tidak-ada", nil, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &lines); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("search should be empty: %+v", lines)
	}
}

func TestImportRejectsMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("other", "x")
	mw.Close()
	rr := do(t, srv, http.MethodPost, "/api/realization/import", &body, mw.FormDataContentType())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestImportRejectsCorruptWorkbook(t *testing.T) {
	srv, _ := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "junk.xlsx")
	part.Write([]byte("not a workbook"))
	mw.Close()
	rr := do(t, srv, http.MethodPost, "/api/master/import", &body, mw.FormDataContentType())
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	st.AppendRealizations(ctx, []core.RealizationEntry{{ID: "r"}})

	rr := do(t, srv, http.MethodDelete, "/api/realization", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed clear status=%d", rr.Code)
	}
	entries, _ := st.ListRealizations(ctx)
	if len(entries) != 1 {
		t.Fatalf("dataset cleared without confirmation")
	}

	rr = do(t, srv, http.MethodDelete, "/api/realization?confirm=true", nil, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("confirmed clear status=%d", rr.Code)
	}
	entries, _ = st.ListRealizations(ctx)
	if len(entries) != 0 {
		t.Fatalf("dataset not cleared")
	}
}

func TestUpdateAndDeleteBudgetLine(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	st.AppendBudgetLines(ctx, []core.BudgetLine{{ID: "abc", Allocated: 100}})

	payload, _ := json.Marshal(core.BudgetLine{Allocated: 700, OrgUnit: "Dinas A"})
	rr := do(t, srv, http.MethodPut, "/api/master/abc", bytes.NewBuffer(payload), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	lines, _ := st.ListBudgetLines(ctx)
	if lines[0].Allocated != 700 || lines[0].ID != "abc" {
		t.Fatalf("update lost: %+v", lines[0])
	}

	rr = do(t, srv, http.MethodPut, "/api/master/missing", bytes.NewBuffer(payload), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing update status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/master/abc", nil, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/master/abc", nil, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func TestSummaryWithAnomalies(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	st.AppendBudgetLines(ctx, []core.BudgetLine{
		{ID: "a", OrgUnit: "Dinas A", SpendingCode: "5.1.01", Allocated: 1000000},
	})
	st.AppendRealizations(ctx, []core.RealizationEntry{
		{ID: "r1", OrgUnit: "Dinas A", SpendingCode: "5.1.01", Realized: 400000},
		{ID: "r2", OrgUnit: "Dinas B", Spending: "Tak Dikenal", SpendingCode: "9.9.99", Realized: 50000},
	})

	rr := do(t, srv, http.MethodGet, "/api/summary", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var resp summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary.TotalRealized != 450000 {
		t.Fatalf("total realized: %+v", resp.Summary)
	}
	if len(resp.Anomalies) != 1 || resp.Anomalies[0].SpendingCode != "9.9.99" {
		t.Fatalf("anomalies: %+v", resp.Anomalies)
	}
	if len(resp.ByOrgUnit) != 2 {
		t.Fatalf("by org unit: %+v", resp.ByOrgUnit)
	}
}

func TestSummaryCacheInvalidatedByImport(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/summary", nil, "")
	var before summaryResponse
	json.Unmarshal(rr.Body.Bytes(), &before)
	if before.Summary.TotalAllocated != 0 {
		t.Fatalf("empty summary: %+v", before.Summary)
	}

	body, ct := uploadBody(t, [][]any{
		{"SKPD", "Kode Belanja", "Anggaran"},
		{"Dinas A", "5.1.01", "500000"},
	})
	if rr := do(t, srv, http.MethodPost, "/api/master/import", body, ct); rr.Code != http.StatusOK {
		t.Fatalf("import status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/summary", nil, "")
	var after summaryResponse
	json.Unmarshal(rr.Body.Bytes(), &after)
	if after.Summary.TotalAllocated != 500000 {
		t.Fatalf("stale summary after import: %+v", after.Summary)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	st.AppendBudgetLines(ctx, []core.BudgetLine{
		{ID: "a", OrgUnit: "Dinas A", Program: "Program Satu", ProgramCode: "P.01", SpendingCode: "5.1.01", Allocated: 1000000},
	})

	rr := do(t, srv, http.MethodGet, "/api/report?level=program", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report status=%d", rr.Code)
	}
	var rep core.Report
	if err := json.Unmarshal(rr.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Level != core.LevelProgram || len(rep.Rows) != 1 || rep.Rows[0].Code != "P.01" {
		t.Fatalf("report: %+v", rep)
	}

	rr = do(t, srv, http.MethodGet, "/api/report?level=galaxy", nil, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad level status=%d", rr.Code)
	}
}

func TestReportExportHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/api/report/export?level=program", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type: %q", ct)
	}
	cd := rr.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "Laporan_program_") || !strings.Contains(cd, ".xlsx") {
		t.Fatalf("content disposition: %q", cd)
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("empty workbook body")
	}
}

func TestInsightEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/api/insight", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("insight status=%d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["insight"] != "ringkasan" {
		t.Fatalf("insight: %+v", resp)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Fatalf("request 61 should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Fatalf("other clients are independent")
	}
}

func TestLRUCacheEvictionAndTTL(t *testing.T) {
	c := newLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	if _, found := c.Get("a"); found {
		t.Fatalf("oldest entry should be evicted")
	}
	if v, found := c.Get("c"); !found || v != 3 {
		t.Fatalf("newest entry missing")
	}

	c.Purge()
	if _, found := c.Get("c"); found {
		t.Fatalf("purge should drop everything")
	}
}
