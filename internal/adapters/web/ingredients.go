package web

import (
	"net/http"

	"cafe-ledger/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ingredientRef extracts the {ref} URL parameter (numeric ID or name).
func ingredientRef(r *http.Request) string {
	return chi.URLParam(r, "ref")
}

// apiStockLevels handles GET /api/stock.
func (h *Handler) apiStockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Levels)
}

// apiGetIngredient handles GET /api/ingredients/{ref}.
func (h *Handler) apiGetIngredient(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetIngredient(r.Context(), ingredientRef(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Ingredient)
}

// apiCreateIngredient handles POST /api/ingredients.
// Body: { name, unit, minimum_quantity, unit_cost, supplier_ref?, opening_qty? }
func (h *Handler) apiCreateIngredient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Unit            string `json:"unit"`
		MinimumQuantity string `json:"minimum_quantity"`
		UnitCost        string `json:"unit_cost"`
		SupplierRef     string `json:"supplier_ref"`
		OpeningQty      string `json:"opening_qty"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	minimum, err := decimal.NewFromString(orZero(body.MinimumQuantity))
	if err != nil {
		writeError(w, r, "invalid minimum_quantity", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	unitCost, err := decimal.NewFromString(orZero(body.UnitCost))
	if err != nil {
		writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	opening, err := decimal.NewFromString(orZero(body.OpeningQty))
	if err != nil {
		writeError(w, r, "invalid opening_qty", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateIngredient(r.Context(), app.CreateIngredientRequest{
		Name:            body.Name,
		Unit:            body.Unit,
		MinimumQuantity: minimum,
		UnitCost:        unitCost,
		SupplierRef:     body.SupplierRef,
		OpeningQty:      opening,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Ingredient)
}

// apiUpdateIngredient handles PUT /api/ingredients/{ref}.
// Body: { name, unit, minimum_quantity, unit_cost, supplier_ref? }
func (h *Handler) apiUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		Unit            string `json:"unit"`
		MinimumQuantity string `json:"minimum_quantity"`
		UnitCost        string `json:"unit_cost"`
		SupplierRef     string `json:"supplier_ref"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	minimum, err := decimal.NewFromString(orZero(body.MinimumQuantity))
	if err != nil {
		writeError(w, r, "invalid minimum_quantity", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	unitCost, err := decimal.NewFromString(orZero(body.UnitCost))
	if err != nil {
		writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.UpdateIngredient(r.Context(), ingredientRef(r), app.UpdateIngredientRequest{
		Name:            body.Name,
		Unit:            body.Unit,
		MinimumQuantity: minimum,
		UnitCost:        unitCost,
		SupplierRef:     body.SupplierRef,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Ingredient)
}

// apiDeactivateIngredient handles DELETE /api/ingredients/{ref}.
// Ingredients with history are deactivated, never removed.
func (h *Handler) apiDeactivateIngredient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeactivateIngredient(r.Context(), ingredientRef(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiRestockIngredient handles POST /api/ingredients/{ref}/restock.
// Body: { quantity, reason, date?, requested_by, approved_by? }
func (h *Handler) apiRestockIngredient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity    string `json:"quantity"`
		Reason      string `json:"reason"`
		Date        string `json:"date"`
		RequestedBy string `json:"requested_by"`
		ApprovedBy  string `json:"approved_by"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	qty, err := decimal.NewFromString(body.Quantity)
	if err != nil {
		writeError(w, r, "invalid quantity", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.RestockIngredient(r.Context(), app.RestockRequest{
		IngredientRef: ingredientRef(r),
		Quantity:      qty,
		Reason:        body.Reason,
		Date:          body.Date,
		RequestedBy:   body.RequestedBy,
		ApprovedBy:    body.ApprovedBy,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, pulloutResponse{Pullout: result.Pullout, Warnings: result.Warnings})
}

// orZero maps an absent decimal field to "0" so optional amounts decode
// without a second code path.
func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
