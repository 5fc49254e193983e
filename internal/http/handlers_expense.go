package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"spendtrack/internal/core"
)

// createExpenseRequest is the client-supplied part of an expense; the store
// assigns id and timestamps.
type createExpenseRequest struct {
	Title       string        `json:"title"`
	Amount      float64       `json:"amount"`
	Category    core.Category `json:"category"`
	Description string        `json:"description"`
	ExpenseDate core.Date     `json:"expense_date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}

	created, err := s.expenses.Create(r.Context(), core.Expense{
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		ExpenseDate: req.ExpenseDate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		"id", created.ID,
		"title", created.Title,
		"amount", created.Amount,
		"category", created.Category)

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	skip := 0
	limit := 0

	if v := r.URL.Query().Get("skip"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid skip parameter")
			return
		}
		skip = parsed
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	expenses, err := s.expenses.List(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid expense id")
		return
	}

	expense, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

// handleUpdateExpense serves both PUT and PATCH: all fields are
// independently optional at the update layer and only the supplied ones
// are merged into the stored record.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid expense id")
		return
	}

	var patch core.ExpensePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "No fields provided for update")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body: "+err.Error())
		return
	}

	updated, err := s.expenses.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense updated", "id", id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid expense id")
		return
	}

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
