package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// apiValuation handles GET /api/reports/valuation.
func (h *Handler) apiValuation(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetStockValuation(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// apiLowStock handles GET /api/reports/low-stock.
func (h *Handler) apiLowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStockReport(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Lines)
}

// apiPulloutSummary handles GET /api/reports/pullout-summary.
// Query: from, to (YYYY-MM-DD, both optional).
func (h *Handler) apiPulloutSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.svc.GetPulloutSummary(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// apiMovementHistory handles GET /api/reports/movements/{ref}.
// Query: from, to (YYYY-MM-DD, both optional).
func (h *Handler) apiMovementHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.GetMovementHistory(r.Context(), chi.URLParam(r, "ref"), q.Get("from"), q.Get("to"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	type response struct {
		IngredientID   int    `json:"ingredient_id"`
		IngredientName string `json:"ingredient_name"`
		Unit           string `json:"unit"`
		Lines          any    `json:"lines"`
	}
	writeJSON(w, response{
		IngredientID:   result.IngredientID,
		IngredientName: result.IngredientName,
		Unit:           result.Unit,
		Lines:          result.Lines,
	})
}
