package http

import (
	"encoding/json"
	"net/http"

	"smartspend/internal/core"
)

// Error codes carried in error bodies
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeRateLimited = "RATE_LIMITED"
	CodeInternal    = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorDetail{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}})
}

type expenseList struct {
	Items   []core.Expense `json:"items"`
	Count   int            `json:"count"`
	Total   core.Money     `json:"total"`
	Version uint64         `json:"version"`
}

func newExpenseList(items []core.Expense, version uint64) expenseList {
	if items == nil {
		items = []core.Expense{}
	}
	var total core.Money
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return expenseList{Items: items, Count: len(items), Total: total, Version: version}
}
