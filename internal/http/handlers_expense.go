package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"smartspend/internal/core"
	"smartspend/internal/expense"
	"smartspend/internal/log"
)

const maxBodyBytes = 1 << 16

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := s.store.List(expense.Filter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
	})
	writeJSON(w, http.StatusOK, newExpenseList(items, s.store.Version()))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createExpenseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeValidationError(w, "invalid JSON body", map[string]string{"_": err.Error()})
		return
	}
	if fields := s.validate.Struct(req); fields != nil {
		writeValidationError(w, "invalid expense", fields)
		return
	}
	amount, date, fields := req.toNewExpense()
	if fields != nil {
		writeValidationError(w, "invalid expense", fields)
		return
	}

	note := req.Note
	if strings.TrimSpace(note) == "" {
		note = req.Description
	}

	e, err := s.store.Add(ctx, expense.NewExpense{
		Amount:   amount,
		Category: core.Category(req.Category),
		Date:     date,
		Note:     note,
	})
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		writeValidationError(w, "invalid expense", map[string]string{"amount": "must be a positive number"})
		return
	case errors.Is(err, core.ErrEmptyCategory):
		writeValidationError(w, "invalid expense", map[string]string{"category": "is required"})
		return
	case errors.Is(err, core.ErrNoteTooLong):
		writeValidationError(w, "invalid expense", map[string]string{"note": "must be at most 200 characters long"})
		return
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Failed to add expense", log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, CodeInternal, "could not add expense")
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// Unknown IDs are a no-op and still answer 204.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(r.Context(), expenseID(r))
	w.WriteHeader(http.StatusNoContent)
}

func expenseID(r *http.Request) core.ExpenseID {
	return core.ExpenseID(strings.TrimSpace(chi.URLParam(r, "id")))
}
