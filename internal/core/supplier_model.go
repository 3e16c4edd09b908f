package core

import (
	"context"
	"strings"
	"time"
)

// Supplier represents a vendor the café buys ingredients from.
type Supplier struct {
	ID            int       `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	LeadTimeDays  int       `json:"lead_time_days"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// SupplierInput holds the fields required to create or update a supplier.
type SupplierInput struct {
	Code          string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	LeadTimeDays  int
}

// Validate checks the input fields before they reach the database.
func (in SupplierInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return &ValidationError{Field: "code", Reason: "is required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.LeadTimeDays < 0 {
		return &ValidationError{Field: "lead_time_days", Reason: "cannot be negative"}
	}
	return nil
}

// SupplierService provides supplier master data operations.
type SupplierService interface {
	// CreateSupplier creates a new supplier record.
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)

	// GetSuppliers returns all active suppliers ordered by code.
	GetSuppliers(ctx context.Context, includeInactive bool) ([]Supplier, error)

	// GetSupplier returns a supplier by primary key.
	GetSupplier(ctx context.Context, id int) (*Supplier, error)

	// GetSupplierByCode returns a specific supplier by its code.
	GetSupplierByCode(ctx context.Context, code string) (*Supplier, error)

	// UpdateSupplier replaces the mutable fields of a supplier.
	UpdateSupplier(ctx context.Context, id int, input SupplierInput) (*Supplier, error)

	// DeactivateSupplier marks a supplier inactive. Ingredients keep their
	// reference; new purchase orders against it are refused.
	DeactivateSupplier(ctx context.Context, id int) error
}
