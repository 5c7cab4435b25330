package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alexcho121/expense/internal/core"
	"github.com/alexcho121/expense/internal/tracker"
)

// maxImportBytes bounds snapshot uploads; personal data sets are tiny.
const maxImportBytes = 1 << 20

const defaultSeriesMonths = 6

type errorResponse struct {
	Error string `json:"error"`
}

type goalView struct {
	core.Goal
	Percent int `json:"percent"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Nothing here is fatal to
// the session: the caller keeps its last-known-good state either way.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, tracker.ErrImportFormat):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, tracker.ErrGoalNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		s.log.ErrorContext(r.Context(), "Request failed", "method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", core.ErrValidation)
	}
	return nil
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.Summarize(s.tracker.State()))
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.ExpensesByCategory(s.tracker.State()))
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	months := defaultSeriesMonths
	if v := r.URL.Query().Get("months"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 24 {
			months = n
		}
	}
	writeJSON(w, http.StatusOK, core.MonthlySeries(s.tracker.State(), months, s.now()))
}

func (s *Server) handleBudgetUsage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.BudgetUsageFor(s.tracker.State(), s.now()))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Limit float64 `json:"limit"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.SetBudgetLimit(r.Context(), req.Limit); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("set_budget").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list := core.SortedTransactions(s.tracker.State())
	if r.URL.Query().Get("recurring") == "only" {
		list = core.FilterRecurring(list)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(list) {
			list = list[:n]
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Type        string  `json:"type"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
		Recurring   bool    `json:"recurring"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tx, err := s.tracker.AddTransaction(r.Context(), core.Transaction{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        core.Kind(req.Type),
		Category:    req.Category,
		Date:        req.Date,
		Recurring:   req.Recurring,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("add_transaction").Inc()
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("delete_transaction").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ClearTransactions(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("clear_transactions").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, _ *http.Request) {
	state := s.tracker.State()
	views := make([]goalView, 0, len(state.Goals))
	for _, g := range state.Goals {
		views = append(views, goalView{Goal: g, Percent: core.GoalProgress(g)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name"`
		Target  float64 `json:"target"`
		Current float64 `json:"current"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.tracker.AddGoal(r.Context(), core.Goal{Name: req.Name, Target: req.Target, Current: req.Current})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("add_goal").Inc()
	writeJSON(w, http.StatusCreated, goalView{Goal: g, Percent: core.GoalProgress(g)})
}

func (s *Server) handleEditGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target  float64 `json:"target"`
		Current float64 `json:"current"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.tracker.EditGoal(r.Context(), chi.URLParam(r, "id"), req.Target, req.Current)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("edit_goal").Inc()
	writeJSON(w, http.StatusOK, goalView{Goal: g, Percent: core.GoalProgress(g)})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("delete_goal").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.SetTheme(r.Context(), core.Theme(req.Theme)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("set_theme").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.tracker.ToggleTheme(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Mutations.WithLabelValues("toggle_theme").Inc()
	writeJSON(w, http.StatusOK, map[string]core.Theme{"theme": theme})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.tracker.ExportSnapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.SnapshotExports.Inc()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tracker.ExportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tracker.ImportSnapshot(r.Context(), data); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.SnapshotImports.Inc()
	w.WriteHeader(http.StatusNoContent)
}
