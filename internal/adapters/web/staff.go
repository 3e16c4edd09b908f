package web

import (
	"net/http"

	"cafe-ledger/internal/app"
)

// apiListStaff handles GET /api/staff. Query: include_inactive.
func (h *Handler) apiListStaff(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	result, err := h.svc.ListStaff(r.Context(), includeInactive)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Members)
}

// apiCreateStaff handles POST /api/staff.
// Body: { full_name, role, phone? }
func (h *Handler) apiCreateStaff(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		Phone    string `json:"phone"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateStaff(r.Context(), app.StaffRequest{
		FullName: body.FullName,
		Role:     body.Role,
		Phone:    body.Phone,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Staff)
}

// apiUpdateStaff handles PUT /api/staff/{id}.
func (h *Handler) apiUpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var body struct {
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		Phone    string `json:"phone"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.UpdateStaff(r.Context(), id, app.StaffRequest{
		FullName: body.FullName,
		Role:     body.Role,
		Phone:    body.Phone,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Staff)
}

// apiDeactivateStaff handles DELETE /api/staff/{id}. Staff rows are
// deactivated, never removed: pullout history references them.
func (h *Handler) apiDeactivateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeactivateStaff(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
