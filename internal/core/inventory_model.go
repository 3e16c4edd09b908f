package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is one stocked item in the café's storeroom. Quantity is the
// on-hand amount and never goes below zero; it is mutated only through
// InventoryService.AdjustQuantityTx under a row lock.
type Ingredient struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"` // "kg", "g", "L", "pcs"
	Quantity        decimal.Decimal `json:"quantity"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	SupplierID      *int            `json:"supplier_id,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsLowStock reports whether on-hand quantity sits at or below the minimum.
func (i *Ingredient) IsLowStock() bool {
	return i.Quantity.LessThanOrEqual(i.MinimumQuantity)
}

// IngredientInput holds the master-data fields for creating or updating an
// ingredient. Quantity is intentionally absent: stock moves only through
// reconciled operations, never through a plain field update.
type IngredientInput struct {
	Name            string
	Unit            string
	MinimumQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	SupplierID      *int
}

// StockLevel is a read view of an ingredient joined with its preferred
// supplier, used by listings and the reporting layer.
type StockLevel struct {
	IngredientID int             `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	OnHand       decimal.Decimal `json:"on_hand"`
	Minimum      decimal.Decimal `json:"minimum"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SupplierCode *string         `json:"supplier_code,omitempty"`
	LowStock     bool            `json:"low_stock"`
}

// Movement types recorded in stock_movements.
const (
	MovementPulloutApply   = "PULLOUT_APPLY"
	MovementPulloutReverse = "PULLOUT_REVERSE"
	MovementPOReceipt      = "PO_RECEIPT"
	MovementConsignment    = "CONSIGNMENT"
	MovementAdjustment     = "ADJUSTMENT"
	MovementInitial        = "INITIAL"
)

// StockMovement is one append-only row in the movement log. QtyDelta is the
// signed change applied to the ingredient's on-hand quantity; the rows for an
// ingredient sum to its current quantity.
type StockMovement struct {
	ID            int             `json:"id"`
	IngredientID  int             `json:"ingredient_id"`
	MovementType  string          `json:"movement_type"`
	QtyDelta      decimal.Decimal `json:"qty_delta"`
	PulloutID     *int            `json:"pullout_id,omitempty"`
	ReferenceType *string         `json:"reference_type,omitempty"` // "purchase_order", "consignment"
	ReferenceID   *int            `json:"reference_id,omitempty"`
	CorrelationID string          `json:"correlation_id"` // uuid shared by all movement rows of one operation
	MovementDate  time.Time       `json:"movement_date"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementLine is a history row carrying the running on-hand balance after
// the movement was applied.
type MovementLine struct {
	MovementDate  time.Time       `json:"movement_date"`
	MovementType  string          `json:"movement_type"`
	QtyDelta      decimal.Decimal `json:"qty_delta"`
	RunningOnHand decimal.Decimal `json:"running_on_hand"`
	Notes         string          `json:"notes"`
}
