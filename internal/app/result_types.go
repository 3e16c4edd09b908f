package app

import "cafe-ledger/internal/core"

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// IngredientResult is returned by ingredient operations. Warnings carry
// non-blocking notices such as the stock sitting below its minimum.
type IngredientResult struct {
	Ingredient *core.Ingredient
	Warnings   []string
}

// PulloutResult is returned by pullout lifecycle operations.
type PulloutResult struct {
	Pullout  *core.Pullout
	Warnings []string
}

// PulloutListResult is returned by ListPullouts.
type PulloutListResult struct {
	Pullouts []core.Pullout
}

// StaffResult is returned by staff operations.
type StaffResult struct {
	Staff *core.Staff
}

// StaffListResult is returned by ListStaff.
type StaffListResult struct {
	Members []core.Staff
}

// SupplierResult is returned by supplier operations.
type SupplierResult struct {
	Supplier *core.Supplier
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}

// PurchaseOrderResult is returned by purchase order lifecycle operations.
type PurchaseOrderResult struct {
	Order    *core.PurchaseOrder
	Warnings []string
}

// PurchaseOrderListResult is returned by ListPurchaseOrders.
type PurchaseOrderListResult struct {
	Orders []core.PurchaseOrder
}

// ConsignmentResult is returned by consignment lifecycle operations.
type ConsignmentResult struct {
	Consignment *core.Consignment
	Warnings    []string
}

// ConsignmentListResult is returned by ListConsignments.
type ConsignmentListResult struct {
	Consignments []core.Consignment
}

// LowStockResult is returned by GetLowStockReport.
type LowStockResult struct {
	Lines []core.LowStockLine
}

// MovementHistoryResult is returned by GetMovementHistory.
type MovementHistoryResult struct {
	IngredientID   int
	IngredientName string
	Unit           string
	Lines          []core.MovementLine
}
