package core

import (
	"context"
	"strings"
	"time"
)

// Staff roles. Approval rights over pullouts are tied to the role, not to
// individual grants.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleBarista = "barista"
	RoleCook    = "cook"
	RoleCashier = "cashier"
)

var staffRoles = map[string]bool{
	RoleOwner:   true,
	RoleManager: true,
	RoleBarista: true,
	RoleCook:    true,
	RoleCashier: true,
}

// Staff represents a café employee who can request, and depending on role
// approve, stock operations.
type Staff struct {
	ID        int       `json:"id"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CanApprove reports whether the staff member's role carries pullout
// approval rights.
func (s *Staff) CanApprove() bool {
	return s.Role == RoleOwner || s.Role == RoleManager
}

// StaffInput carries the fields for creating or updating a staff member.
type StaffInput struct {
	FullName string
	Role     string
	Phone    string
}

// Validate checks the input fields before they reach the database.
func (in StaffInput) Validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return &ValidationError{Field: "full_name", Reason: "is required"}
	}
	if !staffRoles[in.Role] {
		return &ValidationError{Field: "role", Reason: "must be one of owner, manager, barista, cook, cashier"}
	}
	return nil
}

// StaffService provides staff lookup and management operations.
type StaffService interface {
	// CreateStaff registers a new staff member.
	CreateStaff(ctx context.Context, input StaffInput) (*Staff, error)

	// GetStaff returns a staff member by primary key.
	GetStaff(ctx context.Context, id int) (*Staff, error)

	// GetStaffByName finds an active staff member by full name, case-insensitive.
	GetStaffByName(ctx context.Context, name string) (*Staff, error)

	// ListStaff returns staff ordered by name. Inactive members are included
	// only when requested.
	ListStaff(ctx context.Context, includeInactive bool) ([]Staff, error)

	// UpdateStaff replaces the mutable fields of a staff member.
	UpdateStaff(ctx context.Context, id int, input StaffInput) (*Staff, error)

	// DeactivateStaff marks a staff member inactive. Their name stays on
	// historical pullouts; they can no longer request or approve new ones.
	DeactivateStaff(ctx context.Context, id int) error
}
