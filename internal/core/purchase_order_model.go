package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order statuses. A draft can be approved or cancelled; an approved
// order moves through receiving until every line is fully delivered.
type POStatus string

const (
	PODraft             POStatus = "DRAFT"
	POApproved          POStatus = "APPROVED"
	POPartiallyReceived POStatus = "PARTIALLY_RECEIVED"
	POReceived          POStatus = "RECEIVED"
	POCancelled         POStatus = "CANCELLED"
)

// PurchaseOrder represents a purchase order header with its lines.
type PurchaseOrder struct {
	ID             int                 `json:"id"`
	PONumber       *string             `json:"po_number,omitempty"` // assigned on approval, e.g. PO-2026-00001
	SupplierID     int                 `json:"supplier_id"`
	SupplierCode   string              `json:"supplier_code"`
	SupplierName   string              `json:"supplier_name"`
	Status         POStatus            `json:"status"`
	OrderDate      string              `json:"order_date"` // YYYY-MM-DD
	ExpectedDate   *string             `json:"expected_date,omitempty"`
	TotalCost      decimal.Decimal     `json:"total_cost"`
	Notes          *string             `json:"notes,omitempty"`
	CreatedBy      int                 `json:"created_by"`
	CreatedByName  string              `json:"created_by_name"`
	ApprovedBy     *int                `json:"approved_by,omitempty"`
	ApprovedByName *string             `json:"approved_by_name,omitempty"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`
	ReceivedAt     *time.Time          `json:"received_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Lines          []PurchaseOrderLine `json:"lines"`
}

// PurchaseOrderLine represents a single ingredient line on a purchase order.
// QtyReceived accumulates across partial deliveries and never exceeds Quantity.
type PurchaseOrderLine struct {
	ID             int             `json:"id"`
	OrderID        int             `json:"order_id"`
	LineNumber     int             `json:"line_number"`
	IngredientID   int             `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	LineTotal      decimal.Decimal `json:"line_total"`
	QtyReceived    decimal.Decimal `json:"qty_received"`
}

// POLineInput holds the fields required to create a purchase order line.
type POLineInput struct {
	IngredientID int
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
}

// POInput holds the fields required to create a draft purchase order.
type POInput struct {
	SupplierID   int
	OrderDate    string // YYYY-MM-DD
	ExpectedDate string // optional
	Notes        string
	CreatedBy    int
	Lines        []POLineInput
}

// Validate checks the order fields before they reach the database.
func (in POInput) Validate() error {
	if in.SupplierID <= 0 {
		return &ValidationError{Field: "supplier_id", Reason: "is required"}
	}
	if in.CreatedBy <= 0 {
		return &ValidationError{Field: "created_by", Reason: "is required"}
	}
	if strings.TrimSpace(in.OrderDate) == "" {
		return &ValidationError{Field: "order_date", Reason: "is required"}
	}
	if _, err := time.Parse("2006-01-02", in.OrderDate); err != nil {
		return &ValidationError{Field: "order_date", Reason: "must be a valid date (YYYY-MM-DD)"}
	}
	if in.ExpectedDate != "" {
		if _, err := time.Parse("2006-01-02", in.ExpectedDate); err != nil {
			return &ValidationError{Field: "expected_date", Reason: "must be a valid date (YYYY-MM-DD)"}
		}
	}
	if len(in.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "purchase order must have at least one line"}
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

func lineField(i int, msg string) string {
	return fmt.Sprintf("line %d: %s", i+1, msg)
}

// ReceiptLine represents one PO line being received.
type ReceiptLine struct {
	POLineID    int             // references purchase_order_lines.id
	QtyReceived decimal.Decimal // quantity delivered on this call
}

// PurchaseOrderService provides purchase order lifecycle operations.
type PurchaseOrderService interface {
	// CreatePO creates a new DRAFT purchase order with computed line totals.
	CreatePO(ctx context.Context, input POInput) (*PurchaseOrder, error)

	// ApprovePO transitions a DRAFT order to APPROVED, assigning a gapless PO
	// number. The approver must hold approval rights. It is idempotent:
	// approving an already-APPROVED order returns it unchanged.
	ApprovePO(ctx context.Context, id, approverID int) (*PurchaseOrder, error)

	// CancelPO cancels a DRAFT order. Approved orders cannot be cancelled;
	// their stock expectations are already visible to receiving.
	CancelPO(ctx context.Context, id int) (*PurchaseOrder, error)

	// ReceivePO records an ingredient delivery against an approved order.
	// Each received line stocks its ingredient and refreshes the weighted
	// average unit cost; cumulative receipts per line never exceed the
	// ordered quantity. The order becomes RECEIVED once every line is fully
	// delivered, PARTIALLY_RECEIVED otherwise. All effects apply atomically.
	ReceivePO(ctx context.Context, id int, receivedBy int, lines []ReceiptLine) (*PurchaseOrder, error)

	// GetPO returns a purchase order by its internal ID, including all lines.
	GetPO(ctx context.Context, id int) (*PurchaseOrder, error)

	// ListPOs returns purchase orders, optionally filtered by status.
	// An empty status returns all orders, newest first.
	ListPOs(ctx context.Context, status POStatus) ([]PurchaseOrder, error)
}
