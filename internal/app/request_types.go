package app

import (
	"github.com/shopspring/decimal"
)

// CreateIngredientRequest is the input for registering a new ingredient.
type CreateIngredientRequest struct {
	Name            string
	Unit            string
	MinimumQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	SupplierRef     string          // optional; numeric ID or supplier code
	OpeningQty      decimal.Decimal // optional opening stock balance
}

// UpdateIngredientRequest is the input for changing ingredient catalog fields.
type UpdateIngredientRequest struct {
	Name            string
	Unit            string
	MinimumQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	SupplierRef     string
}

// CreatePulloutRequest is the input for recording a stock removal request.
type CreatePulloutRequest struct {
	IngredientRef  string // numeric ID or ingredient name
	Quantity       decimal.Decimal
	Reason         string
	DateOfPullout  string // YYYY-MM-DD; empty means today
	RequestedBy    string // numeric ID or staff name
	ApprovedBy     string // optional; set for direct approval
	IdempotencyKey string // optional client retry token
}

// RestockRequest is the input for a manual stock addition. Quantity is the
// positive amount being added.
type RestockRequest struct {
	IngredientRef string
	Quantity      decimal.Decimal
	Reason        string
	Date          string // YYYY-MM-DD; empty means today
	RequestedBy   string
	ApprovedBy    string // optional; set for direct approval
}

// EditPulloutRequest carries the changed fields of a pullout edit. Nil fields
// are left untouched.
type EditPulloutRequest struct {
	Quantity      *decimal.Decimal
	Reason        *string
	DateOfPullout *string
}

// PulloutListRequest filters ListPullouts. Empty fields match everything.
type PulloutListRequest struct {
	Status        string
	IngredientRef string
	DateFrom      string
	DateTo        string
}

// StaffRequest is the input for creating or updating a staff member.
type StaffRequest struct {
	FullName string
	Role     string
	Phone    string
}

// SupplierRequest is the input for creating or updating a supplier.
type SupplierRequest struct {
	Code          string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	LeadTimeDays  int
}

// CreatePORequest is the input for creating a new purchase order.
type CreatePORequest struct {
	SupplierRef  string // numeric ID or supplier code
	OrderDate    string // YYYY-MM-DD; empty means today
	ExpectedDate string // optional
	Notes        string
	CreatedBy    string // numeric ID or staff name
	Lines        []POLineRequest
}

// POLineRequest is a single line within a CreatePORequest.
type POLineRequest struct {
	IngredientRef string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
}

// ReceivePORequest is the input for recording a delivery against a PO.
type ReceivePORequest struct {
	POID       int
	ReceivedBy string // numeric ID or staff name
	Lines      []ReceiptLineRequest
}

// ReceiptLineRequest is a single line in a ReceivePORequest.
type ReceiptLineRequest struct {
	POLineID    int
	QtyReceived decimal.Decimal
}

// RecordConsignmentRequest is the input for recording a supplier delivery
// that arrived outside a purchase order.
type RecordConsignmentRequest struct {
	SupplierRef  string
	DeliveryDate string // YYYY-MM-DD; empty means today
	Notes        string
	ReceivedBy   string // numeric ID or staff name
	Lines        []ConsignmentLineRequest
}

// ConsignmentLineRequest is a single delivered line.
type ConsignmentLineRequest struct {
	IngredientRef string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
}
