package http

import (
	"net/http"
)

func (s *Server) handleListTrash(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newExpenseList(s.store.Trash(), s.store.Version()))
}

func (s *Server) handleRestoreExpense(w http.ResponseWriter, r *http.Request) {
	s.store.Restore(r.Context(), expenseID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePurgeExpense(w http.ResponseWriter, r *http.Request) {
	s.store.Purge(r.Context(), expenseID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTrash(w http.ResponseWriter, r *http.Request) {
	s.store.ClearTrash(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
