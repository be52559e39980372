package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"finrealize/internal/core"
	"finrealize/internal/export"
	"finrealize/internal/store"
)

// 32 MiB is plenty for any realistic budget export.
const maxUploadBytes = 32 << 20

type importResponse struct {
	Imported int `json:"imported"`
}

type anomalyJSON struct {
	OrgUnit      string  `json:"org_unit"`
	Spending     string  `json:"spending"`
	SpendingCode string  `json:"spending_code"`
	Realized     float64 `json:"realized"`
}

type summaryResponse struct {
	Summary   core.Summary         `json:"summary"`
	Anomalies []anomalyJSON        `json:"anomalies"`
	ByOrgUnit []core.OrgComparison `json:"by_org_unit"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// uploadedFile extracts the workbook from a multipart form.
func uploadedFile(r *http.Request) (multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field: %w", err)
	}
	return file, nil
}

func (s *Server) handleImportBudgetLines(w http.ResponseWriter, r *http.Request) {
	file, err := uploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "upload a workbook in the \"file\" field")
		return
	}
	defer file.Close()

	n, err := s.datasets.ImportBudgetLines(r.Context(), file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget line import failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not decode workbook")
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}

func (s *Server) handleImportRealizations(w http.ResponseWriter, r *http.Request) {
	file, err := uploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "upload a workbook in the \"file\" field")
		return
	}
	defer file.Close()

	n, err := s.datasets.ImportRealizations(r.Context(), file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Realization import failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not decode workbook")
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}

func (s *Server) handleImportCategories(w http.ResponseWriter, r *http.Request) {
	file, err := uploadedFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "upload a workbook in the \"file\" field")
		return
	}
	defer file.Close()

	n, err := s.datasets.ImportCategories(r.Context(), file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category import failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not decode workbook")
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, importResponse{Imported: n})
}

func (s *Server) handleListBudgetLines(w http.ResponseWriter, r *http.Request) {
	lines, err := s.datasets.BudgetLines(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.ErrorContext(r.Context(), "List budget lines failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load budget lines")
		return
	}
	if lines == nil {
		lines = []core.BudgetLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) handleListRealizations(w http.ResponseWriter, r *http.Request) {
	entries, err := s.datasets.Realizations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.ErrorContext(r.Context(), "List realizations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load realizations")
		return
	}
	if entries == nil {
		entries = []core.RealizationEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.datasets.Categories(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		slog.ErrorContext(r.Context(), "List categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load categories")
		return
	}
	if cats == nil {
		cats = []core.SpendingCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// confirmRequired gates a destructive clear behind ?confirm=true.
func confirmRequired(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "clearing a dataset requires confirm=true")
		return false
	}
	return true
}

func (s *Server) handleClearBudgetLines(w http.ResponseWriter, r *http.Request) {
	if !confirmRequired(w, r) {
		return
	}
	if err := s.datasets.ClearBudgetLines(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear budget lines failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear budget lines")
		return
	}
	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearRealizations(w http.ResponseWriter, r *http.Request) {
	if !confirmRequired(w, r) {
		return
	}
	if err := s.datasets.ClearRealizations(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear realizations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear realizations")
		return
	}
	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCategories(w http.ResponseWriter, r *http.Request) {
	if !confirmRequired(w, r) {
		return
	}
	if err := s.datasets.ClearCategories(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not clear categories")
		return
	}
	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateBudgetLine(w http.ResponseWriter, r *http.Request) {
	var line core.BudgetLine
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// The path is authoritative for the record identity.
	line.ID = r.PathValue("id")

	if err := s.datasets.UpdateBudgetLine(r.Context(), line); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget line not found")
			return
		}
		slog.ErrorContext(r.Context(), "Update budget line failed", "error", err, "id", line.ID)
		writeError(w, http.StatusInternalServerError, "could not update budget line")
		return
	}
	s.invalidateViews()
	writeJSON(w, http.StatusOK, line)
}

func (s *Server) handleDeleteBudgetLine(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.datasets.DeleteBudgetLine(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget line not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete budget line failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "could not delete budget line")
		return
	}
	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

const summaryCacheKey = "summary"

func (s *Server) currentSummary(r *http.Request) (summaryResponse, error) {
	if cached, found := s.summaryCache.Get(summaryCacheKey); found {
		return cached, nil
	}

	rec, err := s.datasets.Reconciliation(r.Context())
	if err != nil {
		return summaryResponse{}, err
	}
	resp := summaryResponse{
		Summary:   rec.Summary,
		Anomalies: []anomalyJSON{},
		ByOrgUnit: rec.ByOrgUnit(),
	}
	for _, a := range rec.Anomalies {
		resp.Anomalies = append(resp.Anomalies, anomalyJSON{
			OrgUnit:      a.Entry.OrgUnit,
			Spending:     a.Entry.Spending,
			SpendingCode: a.Entry.SpendingCode,
			Realized:     a.Realized,
		})
	}
	s.summaryCache.Set(summaryCacheKey, resp)
	return resp, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.currentSummary(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute summary")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func reportOptions(r *http.Request) (core.ReportOptions, error) {
	q := r.URL.Query()
	levelParam := q.Get("level")
	if levelParam == "" {
		levelParam = string(core.LevelProgram)
	}
	level, err := core.ParseLevel(levelParam)
	if err != nil {
		return core.ReportOptions{}, err
	}
	return core.ReportOptions{
		Level:  level,
		Parent: q.Get("parent"),
		Search: q.Get("q"),
	}, nil
}

func reportCacheKey(opts core.ReportOptions) string {
	return string(opts.Level) + "\x00" + opts.Parent + "\x00" + opts.Search
}

func (s *Server) currentReport(r *http.Request, opts core.ReportOptions) (core.Report, error) {
	key := reportCacheKey(opts)
	if cached, found := s.reportCache.Get(key); found {
		return cached, nil
	}
	rep, err := s.datasets.Report(r.Context(), opts)
	if err != nil {
		return core.Report{}, err
	}
	if rep.Rows == nil {
		rep.Rows = []core.ReportRow{}
	}
	s.reportCache.Set(key, rep)
	return rep, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	opts, err := reportOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.currentReport(r, opts)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report failed", "error", err, "level", opts.Level)
		writeError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	opts, err := reportOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rep, err := s.currentReport(r, opts)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report export failed", "error", err, "level", opts.Level)
		writeError(w, http.StatusInternalServerError, "could not build report")
		return
	}
	f, err := export.ReportWorkbook(rep)
	if err != nil {
		slog.ErrorContext(r.Context(), "Workbook build failed", "error", err, "level", opts.Level)
		writeError(w, http.StatusInternalServerError, "could not build workbook")
		return
	}
	defer f.Close()

	filename := export.Filename(opts.Level, time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		slog.ErrorContext(r.Context(), "Workbook write failed", "error", err)
	}
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	resp, err := s.currentSummary(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Insight summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not compute summary")
		return
	}
	text := s.insights.Summarize(r.Context(), resp.Summary)
	writeJSON(w, http.StatusOK, map[string]string{"insight": text})
}
