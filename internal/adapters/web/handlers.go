package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cafe-ledger/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// 1 MB body limit on everything else; no endpoint takes larger payloads.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))

		// ── Stock & ingredients ───────────────────────────────────────────────
		r.Get("/api/stock", h.apiStockLevels)
		r.Post("/api/ingredients", h.apiCreateIngredient)
		r.Get("/api/ingredients/{ref}", h.apiGetIngredient)
		r.Put("/api/ingredients/{ref}", h.apiUpdateIngredient)
		r.Delete("/api/ingredients/{ref}", h.apiDeactivateIngredient)
		r.Post("/api/ingredients/{ref}/restock", h.apiRestockIngredient)

		// ── Pullouts ──────────────────────────────────────────────────────────
		r.Get("/api/pullouts", h.apiListPullouts)
		r.Post("/api/pullouts", h.apiCreatePullout)
		r.Get("/api/pullouts/{id}", h.apiGetPullout)
		r.Patch("/api/pullouts/{id}", h.apiEditPullout)
		r.Delete("/api/pullouts/{id}", h.apiDeletePullout)
		r.Post("/api/pullouts/{id}/approve", h.apiApprovePullout)
		r.Post("/api/pullouts/{id}/reject", h.apiRejectPullout)

		// ── Staff ─────────────────────────────────────────────────────────────
		r.Get("/api/staff", h.apiListStaff)
		r.Post("/api/staff", h.apiCreateStaff)
		r.Put("/api/staff/{id}", h.apiUpdateStaff)
		r.Delete("/api/staff/{id}", h.apiDeactivateStaff)

		// ── Suppliers ─────────────────────────────────────────────────────────
		r.Get("/api/suppliers", h.apiListSuppliers)
		r.Post("/api/suppliers", h.apiCreateSupplier)
		r.Put("/api/suppliers/{ref}", h.apiUpdateSupplier)
		r.Delete("/api/suppliers/{ref}", h.apiDeactivateSupplier)

		// ── Purchase orders ───────────────────────────────────────────────────
		r.Get("/api/purchase-orders", h.apiListPurchaseOrders)
		r.Post("/api/purchase-orders", h.apiCreatePurchaseOrder)
		r.Get("/api/purchase-orders/{id}", h.apiGetPurchaseOrder)
		r.Post("/api/purchase-orders/{id}/approve", h.apiApprovePO)
		r.Post("/api/purchase-orders/{id}/cancel", h.apiCancelPO)
		r.Post("/api/purchase-orders/{id}/receive", h.apiReceivePO)

		// ── Consignments ──────────────────────────────────────────────────────
		r.Get("/api/consignments", h.apiListConsignments)
		r.Post("/api/consignments", h.apiRecordConsignment)
		r.Get("/api/consignments/{id}", h.apiGetConsignment)
		r.Post("/api/consignments/{id}/stock", h.apiStockConsignment)
		r.Post("/api/consignments/{id}/void", h.apiVoidConsignment)

		// ── Reports ───────────────────────────────────────────────────────────
		r.Get("/api/reports/valuation", h.apiValuation)
		r.Get("/api/reports/low-stock", h.apiLowStock)
		r.Get("/api/reports/pullout-summary", h.apiPulloutSummary)
		r.Get("/api/reports/movements/{ref}", h.apiMovementHistory)
	})

	h.router = r
	return r
}

// health returns service status and a count of low-stock ingredients, so a
// dashboard probe gets reorder pressure for free.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	lowCount := 0
	if low, err := h.svc.GetLowStockReport(r.Context()); err == nil {
		lowCount = len(low.Lines)
	}

	type response struct {
		Status   string `json:"status"`
		LowStock int    `json:"low_stock"`
	}

	writeJSON(w, response{Status: "ok", LowStock: lowCount})
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the size limit set by RequestBodyLimit middleware; HTTP 400 for all
// other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// urlID extracts the {id} URL parameter as an integer. A non-numeric value
// writes a 400 and returns false.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id: "+raw, "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
