package app

import (
	"context"

	"cafe-ledger/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ── Ingredients ──

	// GetStockLevels returns current stock levels for all active ingredients.
	GetStockLevels(ctx context.Context) (*StockResult, error)

	// GetIngredient returns one ingredient by numeric ID or name.
	GetIngredient(ctx context.Context, ref string) (*IngredientResult, error)

	// CreateIngredient registers a new ingredient, optionally with an opening
	// stock balance.
	CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*IngredientResult, error)

	// UpdateIngredient changes an ingredient's catalog fields. Stock quantity
	// is not editable here; it moves only through pullouts, receipts and
	// consignments.
	UpdateIngredient(ctx context.Context, ref string, req UpdateIngredientRequest) (*IngredientResult, error)

	// DeactivateIngredient retires an ingredient. Refused while pullouts are
	// still pending against it.
	DeactivateIngredient(ctx context.Context, ref string) error

	// RestockIngredient records a manual stock addition as a reversed pullout,
	// flowing through the same approval workflow as removals.
	RestockIngredient(ctx context.Context, req RestockRequest) (*PulloutResult, error)

	// ── Pullouts ──

	// ListPullouts returns pullout records filtered by status, ingredient
	// and date range.
	ListPullouts(ctx context.Context, req PulloutListRequest) (*PulloutListResult, error)

	// GetPullout returns a single pullout by ID.
	GetPullout(ctx context.Context, id int) (*PulloutResult, error)

	// CreatePullout records a stock removal request. With an approver set it
	// is applied to stock immediately; otherwise it waits as pending.
	CreatePullout(ctx context.Context, req CreatePulloutRequest) (*PulloutResult, error)

	// ApprovePullout applies a pending pullout to stock. The approver may be
	// a numeric staff ID or a full name.
	ApprovePullout(ctx context.Context, id int, approverRef string) (*PulloutResult, error)

	// RejectPullout rejects a pending or approved pullout, restoring any stock
	// it had removed. A reason is required.
	RejectPullout(ctx context.Context, id int, staffRef, reason string) (*PulloutResult, error)

	// EditPullout changes quantity, reason or date on a pending or approved
	// pullout, re-reconciling stock to the new quantity.
	EditPullout(ctx context.Context, id int, req EditPulloutRequest) (*PulloutResult, error)

	// DeletePullout removes a pullout in any status, first reversing whatever
	// it had applied to stock.
	DeletePullout(ctx context.Context, id int) error

	// ── Staff ──

	// ListStaff returns staff members, optionally including inactive ones.
	ListStaff(ctx context.Context, includeInactive bool) (*StaffListResult, error)

	// CreateStaff registers a new staff member.
	CreateStaff(ctx context.Context, req StaffRequest) (*StaffResult, error)

	// UpdateStaff replaces a staff member's details.
	UpdateStaff(ctx context.Context, id int, req StaffRequest) (*StaffResult, error)

	// DeactivateStaff marks a staff member inactive.
	DeactivateStaff(ctx context.Context, id int) error

	// ── Suppliers ──

	// ListSuppliers returns suppliers, optionally including inactive ones.
	ListSuppliers(ctx context.Context, includeInactive bool) (*SupplierListResult, error)

	// CreateSupplier registers a new supplier.
	CreateSupplier(ctx context.Context, req SupplierRequest) (*SupplierResult, error)

	// UpdateSupplier replaces a supplier's details. ref may be a numeric ID
	// or a supplier code.
	UpdateSupplier(ctx context.Context, ref string, req SupplierRequest) (*SupplierResult, error)

	// DeactivateSupplier marks a supplier inactive.
	DeactivateSupplier(ctx context.Context, ref string) error

	// ── Purchase orders ──

	// ListPurchaseOrders returns purchase orders, optionally filtered by status.
	ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrderListResult, error)

	// GetPurchaseOrder returns a purchase order with lines by ID.
	GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrderResult, error)

	// CreatePurchaseOrder creates a new DRAFT purchase order.
	CreatePurchaseOrder(ctx context.Context, req CreatePORequest) (*PurchaseOrderResult, error)

	// ApprovePurchaseOrder transitions a DRAFT order to APPROVED, assigning
	// its gapless PO number.
	ApprovePurchaseOrder(ctx context.Context, id int, approverRef string) (*PurchaseOrderResult, error)

	// CancelPurchaseOrder cancels a DRAFT purchase order.
	CancelPurchaseOrder(ctx context.Context, id int) (*PurchaseOrderResult, error)

	// ReceivePurchaseOrder records a delivery against an approved order,
	// stocking ingredients and refreshing their weighted average costs.
	ReceivePurchaseOrder(ctx context.Context, req ReceivePORequest) (*PurchaseOrderResult, error)

	// ── Consignments ──

	// ListConsignments returns consignments, optionally filtered by status.
	ListConsignments(ctx context.Context, status string) (*ConsignmentListResult, error)

	// GetConsignment returns a consignment with lines by ID.
	GetConsignment(ctx context.Context, id int) (*ConsignmentResult, error)

	// RecordConsignment records a supplier delivery that arrived outside a
	// purchase order and assigns its CN reference.
	RecordConsignment(ctx context.Context, req RecordConsignmentRequest) (*ConsignmentResult, error)

	// StockConsignment applies a delivered consignment to inventory.
	StockConsignment(ctx context.Context, id int) (*ConsignmentResult, error)

	// VoidConsignment refuses a delivered consignment. A reason is required.
	VoidConsignment(ctx context.Context, id int, reason string) (*ConsignmentResult, error)

	// ── Reports ──

	// GetStockValuation values current inventory at weighted average cost.
	GetStockValuation(ctx context.Context) (*core.ValuationReport, error)

	// GetLowStockReport returns ingredients at or below minimum level.
	GetLowStockReport(ctx context.Context) (*LowStockResult, error)

	// GetPulloutSummary aggregates pullout activity per ingredient for a date
	// range. Empty dates mean unbounded.
	GetPulloutSummary(ctx context.Context, fromDate, toDate string) (*core.PulloutSummary, error)

	// GetMovementHistory returns one ingredient's movement trail with running
	// balances. ref may be a numeric ID or name; dates are optional bounds.
	GetMovementHistory(ctx context.Context, ref, fromDate, toDate string) (*MovementHistoryResult, error)
}
