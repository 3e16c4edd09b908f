package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"cafe-ledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps a service error onto the HTTP status that matches its
// meaning. Every domain failure leaves the ledger untouched, so 4xx responses
// are always safe to retry after correcting the request.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		transitionErr *core.InvalidTransitionError
		stockErr      *core.InsufficientStockError
		conflictErr   *core.ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, err.Error(), "VALIDATION_FAILED", http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &transitionErr):
		writeError(w, r, err.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.As(err, &stockErr):
		writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusUnprocessableEntity)
	case errors.As(err, &conflictErr):
		writeError(w, r, err.Error(), "CONCURRENT_MODIFICATION", http.StatusConflict)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
