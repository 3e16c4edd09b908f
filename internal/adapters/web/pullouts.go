package web

import (
	"net/http"

	"cafe-ledger/internal/app"
	"cafe-ledger/internal/core"

	"github.com/shopspring/decimal"
)

// pulloutResponse is the wire shape for pullout mutations. Warnings carry
// low-stock notices the operation surfaced; they never indicate failure.
type pulloutResponse struct {
	Pullout  *core.Pullout `json:"pullout"`
	Warnings []string      `json:"warnings,omitempty"`
}

// apiListPullouts handles GET /api/pullouts.
// Query: status, ingredient, from, to.
func (h *Handler) apiListPullouts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.ListPullouts(r.Context(), app.PulloutListRequest{
		Status:        q.Get("status"),
		IngredientRef: q.Get("ingredient"),
		DateFrom:      q.Get("from"),
		DateTo:        q.Get("to"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Pullouts)
}

// apiGetPullout handles GET /api/pullouts/{id}.
func (h *Handler) apiGetPullout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPullout(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Pullout)
}

// apiCreatePullout handles POST /api/pullouts.
// Body: { ingredient_ref, quantity, reason, date_of_pullout?, requested_by,
//
//	approved_by?, idempotency_key? }
func (h *Handler) apiCreatePullout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IngredientRef  string `json:"ingredient_ref"`
		Quantity       string `json:"quantity"`
		Reason         string `json:"reason"`
		DateOfPullout  string `json:"date_of_pullout"`
		RequestedBy    string `json:"requested_by"`
		ApprovedBy     string `json:"approved_by"`
		IdempotencyKey string `json:"idempotency_key"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	qty, err := decimal.NewFromString(body.Quantity)
	if err != nil {
		writeError(w, r, "invalid quantity", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreatePullout(r.Context(), app.CreatePulloutRequest{
		IngredientRef:  body.IngredientRef,
		Quantity:       qty,
		Reason:         body.Reason,
		DateOfPullout:  body.DateOfPullout,
		RequestedBy:    body.RequestedBy,
		ApprovedBy:     body.ApprovedBy,
		IdempotencyKey: body.IdempotencyKey,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, pulloutResponse{Pullout: result.Pullout, Warnings: result.Warnings})
}

// apiApprovePullout handles POST /api/pullouts/{id}/approve.
// Body: { approved_by }
func (h *Handler) apiApprovePullout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		ApprovedBy string `json:"approved_by"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ApprovePullout(r.Context(), id, body.ApprovedBy)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, pulloutResponse{Pullout: result.Pullout, Warnings: result.Warnings})
}

// apiRejectPullout handles POST /api/pullouts/{id}/reject.
// Body: { rejected_by, reason }
func (h *Handler) apiRejectPullout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		RejectedBy string `json:"rejected_by"`
		Reason     string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.RejectPullout(r.Context(), id, body.RejectedBy, body.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, pulloutResponse{Pullout: result.Pullout, Warnings: result.Warnings})
}

// apiEditPullout handles PATCH /api/pullouts/{id}.
// Body: { quantity?, reason?, date_of_pullout? }; absent fields stay unchanged.
func (h *Handler) apiEditPullout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		Quantity      *string `json:"quantity"`
		Reason        *string `json:"reason"`
		DateOfPullout *string `json:"date_of_pullout"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	var req app.EditPulloutRequest
	if body.Quantity != nil {
		qty, err := decimal.NewFromString(*body.Quantity)
		if err != nil {
			writeError(w, r, "invalid quantity", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Quantity = &qty
	}
	req.Reason = body.Reason
	req.DateOfPullout = body.DateOfPullout

	result, err := h.svc.EditPullout(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, pulloutResponse{Pullout: result.Pullout, Warnings: result.Warnings})
}

// apiDeletePullout handles DELETE /api/pullouts/{id}.
func (h *Handler) apiDeletePullout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePullout(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
