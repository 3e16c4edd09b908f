package core

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Consignment statuses. A recorded delivery is either stocked into inventory
// or voided; both outcomes are terminal.
type ConsignmentStatus string

const (
	ConsignmentDelivered ConsignmentStatus = "DELIVERED"
	ConsignmentStocked   ConsignmentStatus = "STOCKED"
	ConsignmentVoid      ConsignmentStatus = "VOID"
)

// Consignment represents a supplier delivery that arrived outside a purchase
// order, such as a standing weekly bread drop. It is recorded as DELIVERED
// with a gapless CN reference and stocks inventory only when confirmed.
type Consignment struct {
	ID             int               `json:"id"`
	Reference      string            `json:"reference"` // e.g. CN-2026-00001, assigned at recording
	SupplierID     int               `json:"supplier_id"`
	SupplierCode   string            `json:"supplier_code"`
	SupplierName   string            `json:"supplier_name"`
	Status         ConsignmentStatus `json:"status"`
	DeliveryDate   string            `json:"delivery_date"` // YYYY-MM-DD
	Notes          *string           `json:"notes,omitempty"`
	ReceivedBy     int               `json:"received_by"`
	ReceivedByName string            `json:"received_by_name"`
	VoidedReason   *string           `json:"voided_reason,omitempty"`
	StockedAt      *time.Time        `json:"stocked_at,omitempty"`
	VoidedAt       *time.Time        `json:"voided_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Lines          []ConsignmentLine `json:"lines"`
}

// ConsignmentLine represents a single delivered ingredient quantity.
type ConsignmentLine struct {
	ID             int             `json:"id"`
	ConsignmentID  int             `json:"consignment_id"`
	LineNumber     int             `json:"line_number"`
	IngredientID   int             `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
}

// ConsignmentLineInput holds the fields for one delivered line.
type ConsignmentLineInput struct {
	IngredientID int
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
}

// ConsignmentInput holds the fields required to record a delivery.
type ConsignmentInput struct {
	SupplierID   int
	DeliveryDate string // YYYY-MM-DD
	Notes        string
	ReceivedBy   int
	Lines        []ConsignmentLineInput
}

// Validate checks the consignment fields before they reach the database.
func (in ConsignmentInput) Validate() error {
	if in.SupplierID <= 0 {
		return &ValidationError{Field: "supplier_id", Reason: "is required"}
	}
	if in.ReceivedBy <= 0 {
		return &ValidationError{Field: "received_by", Reason: "is required"}
	}
	if strings.TrimSpace(in.DeliveryDate) == "" {
		return &ValidationError{Field: "delivery_date", Reason: "is required"}
	}
	if _, err := time.Parse("2006-01-02", in.DeliveryDate); err != nil {
		return &ValidationError{Field: "delivery_date", Reason: "must be a valid date (YYYY-MM-DD)"}
	}
	if len(in.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "consignment must have at least one line"}
	}
	seen := make(map[int]bool, len(in.Lines))
	for i, line := range in.Lines {
		if line.IngredientID <= 0 {
			return &ValidationError{Field: "lines", Reason: lineField(i, "ingredient_id is required")}
		}
		if seen[line.IngredientID] {
			return &ValidationError{Field: "lines", Reason: lineField(i, "duplicate ingredient")}
		}
		seen[line.IngredientID] = true
		if !line.Quantity.IsPositive() {
			return &ValidationError{Field: "lines", Reason: lineField(i, "quantity must be positive")}
		}
		if line.UnitCost.IsNegative() {
			return &ValidationError{Field: "lines", Reason: lineField(i, "unit cost cannot be negative")}
		}
	}
	return nil
}

// ConsignmentService provides consignment lifecycle operations.
type ConsignmentService interface {
	// RecordConsignment records a delivered consignment and assigns its CN
	// reference. Stock is not touched until the consignment is stocked.
	RecordConsignment(ctx context.Context, input ConsignmentInput) (*Consignment, error)

	// GetConsignment returns a consignment by ID, including all lines.
	GetConsignment(ctx context.Context, id int) (*Consignment, error)

	// ListConsignments returns consignments, optionally filtered by status,
	// newest first.
	ListConsignments(ctx context.Context, status ConsignmentStatus) ([]Consignment, error)

	// StockConsignment applies every line of a DELIVERED consignment to
	// inventory atomically, refreshing weighted average unit costs.
	StockConsignment(ctx context.Context, id int) (*Consignment, error)

	// VoidConsignment marks a DELIVERED consignment as refused. The reason
	// is required; stock is never touched.
	VoidConsignment(ctx context.Context, id int, reason string) (*Consignment, error)
}
