package web

import (
	"fmt"
	"net/http"

	"cafe-ledger/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ── Suppliers ─────────────────────────────────────────────────────────────────

// apiListSuppliers handles GET /api/suppliers. Query: include_inactive.
func (h *Handler) apiListSuppliers(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	result, err := h.svc.ListSuppliers(r.Context(), includeInactive)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Suppliers)
}

type supplierBody struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	LeadTimeDays  int    `json:"lead_time_days"`
}

func (b supplierBody) toRequest() app.SupplierRequest {
	return app.SupplierRequest{
		Code:          b.Code,
		Name:          b.Name,
		ContactPerson: b.ContactPerson,
		Email:         b.Email,
		Phone:         b.Phone,
		Address:       b.Address,
		LeadTimeDays:  b.LeadTimeDays,
	}
}

// apiCreateSupplier handles POST /api/suppliers.
// Body: { code, name, contact_person?, email?, phone?, address?, lead_time_days? }
func (h *Handler) apiCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var body supplierBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateSupplier(r.Context(), body.toRequest())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Supplier)
}

// apiUpdateSupplier handles PUT /api/suppliers/{ref}.
func (h *Handler) apiUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var body supplierBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateSupplier(r.Context(), chi.URLParam(r, "ref"), body.toRequest())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Supplier)
}

// apiDeactivateSupplier handles DELETE /api/suppliers/{ref}.
func (h *Handler) apiDeactivateSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeactivateSupplier(r.Context(), chi.URLParam(r, "ref")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Purchase orders ───────────────────────────────────────────────────────────

// apiListPurchaseOrders handles GET /api/purchase-orders. Query: status.
func (h *Handler) apiListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchaseOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Orders)
}

// apiGetPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) apiGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCreatePurchaseOrder handles POST /api/purchase-orders.
// Body: { supplier_ref, order_date?, expected_date?, notes?, created_by,
//
//	lines: [{ingredient_ref, quantity, unit_cost}] }
func (h *Handler) apiCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SupplierRef  string `json:"supplier_ref"`
		OrderDate    string `json:"order_date"`
		ExpectedDate string `json:"expected_date"`
		Notes        string `json:"notes"`
		CreatedBy    string `json:"created_by"`
		Lines        []struct {
			IngredientRef string `json:"ingredient_ref"`
			Quantity      string `json:"quantity"`
			UnitCost      string `json:"unit_cost"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.CreatePORequest{
		SupplierRef:  body.SupplierRef,
		OrderDate:    body.OrderDate,
		ExpectedDate: body.ExpectedDate,
		Notes:        body.Notes,
		CreatedBy:    body.CreatedBy,
	}
	for i, l := range body.Lines {
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil || !qty.IsPositive() {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		cost, err := decimal.NewFromString(orZero(l.UnitCost))
		if err != nil || cost.IsNegative() {
			writeError(w, r, fmt.Sprintf("line %d: invalid unit_cost", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.POLineRequest{
			IngredientRef: l.IngredientRef,
			Quantity:      qty,
			UnitCost:      cost,
		})
	}

	result, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Order)
}

// apiApprovePO handles POST /api/purchase-orders/{id}/approve.
// Body: { approved_by }
func (h *Handler) apiApprovePO(w http.ResponseWriter, r *http.Request) {
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
	result, err := h.svc.ApprovePurchaseOrder(r.Context(), id, body.ApprovedBy)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiCancelPO handles POST /api/purchase-orders/{id}/cancel.
func (h *Handler) apiCancelPO(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CancelPurchaseOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// apiReceivePO handles POST /api/purchase-orders/{id}/receive.
// Body: { received_by, lines: [{po_line_id, qty_received}] }
func (h *Handler) apiReceivePO(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		ReceivedBy string `json:"received_by"`
		Lines      []struct {
			POLineID    int    `json:"po_line_id"`
			QtyReceived string `json:"qty_received"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one receipt line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.ReceivePORequest{POID: id, ReceivedBy: body.ReceivedBy}
	for i, l := range body.Lines {
		qty, err := decimal.NewFromString(l.QtyReceived)
		if err != nil || !qty.IsPositive() {
			writeError(w, r, fmt.Sprintf("line %d: invalid qty_received", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.ReceiptLineRequest{
			POLineID:    l.POLineID,
			QtyReceived: qty,
		})
	}

	result, err := h.svc.ReceivePurchaseOrder(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	type response struct {
		Order    any      `json:"order"`
		Warnings []string `json:"warnings,omitempty"`
	}
	writeJSON(w, response{Order: result.Order, Warnings: result.Warnings})
}

// ── Consignments ──────────────────────────────────────────────────────────────

// apiListConsignments handles GET /api/consignments. Query: status.
func (h *Handler) apiListConsignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListConsignments(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Consignments)
}

// apiGetConsignment handles GET /api/consignments/{id}.
func (h *Handler) apiGetConsignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetConsignment(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Consignment)
}

// apiRecordConsignment handles POST /api/consignments.
// Body: { supplier_ref, delivery_date?, notes?, received_by,
//
//	lines: [{ingredient_ref, quantity, unit_cost}] }
func (h *Handler) apiRecordConsignment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SupplierRef  string `json:"supplier_ref"`
		DeliveryDate string `json:"delivery_date"`
		Notes        string `json:"notes"`
		ReceivedBy   string `json:"received_by"`
		Lines        []struct {
			IngredientRef string `json:"ingredient_ref"`
			Quantity      string `json:"quantity"`
			UnitCost      string `json:"unit_cost"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.Lines) == 0 {
		writeError(w, r, "at least one line is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.RecordConsignmentRequest{
		SupplierRef:  body.SupplierRef,
		DeliveryDate: body.DeliveryDate,
		Notes:        body.Notes,
		ReceivedBy:   body.ReceivedBy,
	}
	for i, l := range body.Lines {
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil || !qty.IsPositive() {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		cost, err := decimal.NewFromString(orZero(l.UnitCost))
		if err != nil || cost.IsNegative() {
			writeError(w, r, fmt.Sprintf("line %d: invalid unit_cost", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.ConsignmentLineRequest{
			IngredientRef: l.IngredientRef,
			Quantity:      qty,
			UnitCost:      cost,
		})
	}

	result, err := h.svc.RecordConsignment(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Consignment)
}

// apiStockConsignment handles POST /api/consignments/{id}/stock.
func (h *Handler) apiStockConsignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.StockConsignment(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	type response struct {
		Consignment any      `json:"consignment"`
		Warnings    []string `json:"warnings,omitempty"`
	}
	writeJSON(w, response{Consignment: result.Consignment, Warnings: result.Warnings})
}

// apiVoidConsignment handles POST /api/consignments/{id}/void.
// Body: { reason }
func (h *Handler) apiVoidConsignment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.VoidConsignment(r.Context(), id, body.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Consignment)
}
