package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService manages ingredient master data and on-hand stock.
// Standalone methods run their own transactions; Tx-scoped methods work
// inside a caller-provided transaction so stock changes commit atomically
// with the record that justifies them.
type InventoryService interface {
	// CreateIngredient inserts a new ingredient. A positive openingQty is
	// applied immediately and logged as an INITIAL movement.
	CreateIngredient(ctx context.Context, input IngredientInput, openingQty decimal.Decimal) (*Ingredient, error)

	// GetIngredient returns an ingredient by ID, active or not.
	GetIngredient(ctx context.Context, id int) (*Ingredient, error)

	// GetIngredientByName returns an active ingredient by case-insensitive name.
	GetIngredientByName(ctx context.Context, name string) (*Ingredient, error)

	// GetStockLevels returns the active ingredients as display rows with
	// low-stock flags, ordered by name.
	GetStockLevels(ctx context.Context) ([]StockLevel, error)

	// GetLowStockItems returns only the rows at or below minimum quantity.
	GetLowStockItems(ctx context.Context) ([]StockLevel, error)

	// UpdateIngredientDetails updates master data fields. Quantity is not
	// among them; stock moves only through reconciled operations.
	UpdateIngredientDetails(ctx context.Context, id int, input IngredientInput) (*Ingredient, error)

	// DeactivateIngredient hides an ingredient from listings. Refused while
	// pending pullouts still reference it.
	DeactivateIngredient(ctx context.Context, id int) error

	// TX-scoped operations, used by the pullout, purchase order and
	// consignment services.

	// LockIngredientTx locks the ingredient row FOR UPDATE and returns its
	// current state. This lock is the per-ingredient serialization point:
	// every stock-touching operation takes it before reading any quantity
	// it will base arithmetic on.
	LockIngredientTx(ctx context.Context, tx pgx.Tx, id int) (*Ingredient, error)

	// AdjustQuantityTx applies a signed delta to on-hand stock under the row
	// lock. A result below zero aborts with InsufficientStockError; the
	// quantity is never clamped. Returns the ingredient after the change.
	AdjustQuantityTx(ctx context.Context, tx pgx.Tx, id int, delta decimal.Decimal) (*Ingredient, error)

	// ReceiveStockTx books a goods receipt: increases on-hand stock and
	// blends unitCost into the ingredient's weighted average cost.
	ReceiveStockTx(ctx context.Context, tx pgx.Tx, id int, qty, unitCost decimal.Decimal) (*Ingredient, error)
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// row helpers across standalone and tx-scoped paths.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx (for Query).
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type inventoryService struct {
	pool   *pgxpool.Pool
	ledger *StockLedger
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
// The ledger receives a movement row for every stock change this service
// initiates on its own (opening balances).
func NewInventoryService(pool *pgxpool.Pool, ledger *StockLedger) InventoryService {
	return &inventoryService{pool: pool, ledger: ledger}
}

const ingredientColumns = `
	i.id, i.name, i.unit, i.quantity, i.minimum_quantity, i.unit_cost,
	i.supplier_id, i.is_active, i.created_at, i.updated_at`

func scanIngredient(row pgx.Row) (*Ingredient, error) {
	ing := &Ingredient{}
	err := row.Scan(
		&ing.ID, &ing.Name, &ing.Unit, &ing.Quantity, &ing.MinimumQuantity,
		&ing.UnitCost, &ing.SupplierID, &ing.IsActive, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ing, nil
}

func fetchIngredientQ(ctx context.Context, q pgxQuerier, id int, forUpdate bool) (*Ingredient, error) {
	query := `SELECT` + ingredientColumns + ` FROM ingredients i WHERE i.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	ing, err := scanIngredient(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "ingredient", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch ingredient %d: %w", id, err)
	}
	return ing, nil
}

// ── Standalone operations ─────────────────────────────────────────────────────

func (s *inventoryService) CreateIngredient(ctx context.Context, input IngredientInput, openingQty decimal.Decimal) (*Ingredient, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if input.Unit == "" {
		return nil, &ValidationError{Field: "unit", Reason: "is required"}
	}
	if openingQty.IsNegative() {
		return nil, &ValidationError{Field: "opening_quantity", Reason: "must not be negative"}
	}
	if input.MinimumQuantity.IsNegative() {
		return nil, &ValidationError{Field: "minimum_quantity", Reason: "must not be negative"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ing := &Ingredient{}
	err = tx.QueryRow(ctx, `
		INSERT INTO ingredients (name, unit, quantity, minimum_quantity, unit_cost, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, unit, quantity, minimum_quantity, unit_cost,
		          supplier_id, is_active, created_at, updated_at`,
		input.Name, input.Unit, openingQty, input.MinimumQuantity, input.UnitCost, input.SupplierID,
	).Scan(
		&ing.ID, &ing.Name, &ing.Unit, &ing.Quantity, &ing.MinimumQuantity,
		&ing.UnitCost, &ing.SupplierID, &ing.IsActive, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create ingredient %q: %w", input.Name, err)
	}

	if openingQty.IsPositive() {
		note := "opening balance"
		err = s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  ing.ID,
			MovementType:  MovementInitial,
			QtyDelta:      openingQty,
			CorrelationID: uuid.NewString(),
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ing, nil
}

func (s *inventoryService) GetIngredient(ctx context.Context, id int) (*Ingredient, error) {
	return fetchIngredientQ(ctx, s.pool, id, false)
}

func (s *inventoryService) GetIngredientByName(ctx context.Context, name string) (*Ingredient, error) {
	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		SELECT`+ingredientColumns+`
		FROM ingredients i
		WHERE LOWER(i.name) = LOWER($1) AND i.is_active = true
		LIMIT 1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "ingredient", Ref: name}
		}
		return nil, fmt.Errorf("failed to fetch ingredient %q: %w", name, err)
	}
	return ing, nil
}

func (s *inventoryService) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	return s.queryStockLevels(ctx, "")
}

func (s *inventoryService) GetLowStockItems(ctx context.Context) ([]StockLevel, error) {
	return s.queryStockLevels(ctx, "AND i.quantity <= i.minimum_quantity")
}

func (s *inventoryService) queryStockLevels(ctx context.Context, extraWhere string) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.name, i.unit, i.quantity, i.minimum_quantity, i.unit_cost, sup.code
		FROM ingredients i
		LEFT JOIN suppliers sup ON sup.id = i.supplier_id
		WHERE i.is_active = true `+extraWhere+`
		ORDER BY i.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.IngredientID, &sl.Name, &sl.Unit, &sl.OnHand,
			&sl.Minimum, &sl.UnitCost, &sl.SupplierCode); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		sl.LowStock = sl.OnHand.LessThanOrEqual(sl.Minimum)
		levels = append(levels, sl)
	}
	return levels, nil
}

func (s *inventoryService) UpdateIngredientDetails(ctx context.Context, id int, input IngredientInput) (*Ingredient, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if input.Unit == "" {
		return nil, &ValidationError{Field: "unit", Reason: "is required"}
	}
	if input.MinimumQuantity.IsNegative() {
		return nil, &ValidationError{Field: "minimum_quantity", Reason: "must not be negative"}
	}

	ing := &Ingredient{}
	err := s.pool.QueryRow(ctx, `
		UPDATE ingredients
		SET name = $1, unit = $2, minimum_quantity = $3, unit_cost = $4,
		    supplier_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, name, unit, quantity, minimum_quantity, unit_cost,
		          supplier_id, is_active, created_at, updated_at`,
		input.Name, input.Unit, input.MinimumQuantity, input.UnitCost, input.SupplierID, id,
	).Scan(
		&ing.ID, &ing.Name, &ing.Unit, &ing.Quantity, &ing.MinimumQuantity,
		&ing.UnitCost, &ing.SupplierID, &ing.IsActive, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "ingredient", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("update ingredient %d: %w", id, err)
	}
	return ing, nil
}

func (s *inventoryService) DeactivateIngredient(ctx context.Context, id int) error {
	var pending int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM pullouts WHERE ingredient_id = $1 AND status = $2",
		id, string(PulloutPending),
	).Scan(&pending)
	if err != nil {
		return fmt.Errorf("failed to count pending pullouts: %w", err)
	}
	if pending > 0 {
		return &ValidationError{
			Field:  "ingredient_id",
			Reason: fmt.Sprintf("%d pending pullouts still reference it", pending),
		}
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE ingredients SET is_active = false, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deactivate ingredient %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: "ingredient", Ref: strconv.Itoa(id)}
	}
	return nil
}

// ── TX-scoped operations ──────────────────────────────────────────────────────

func (s *inventoryService) LockIngredientTx(ctx context.Context, tx pgx.Tx, id int) (*Ingredient, error) {
	return fetchIngredientQ(ctx, tx, id, true)
}

func (s *inventoryService) AdjustQuantityTx(ctx context.Context, tx pgx.Tx, id int, delta decimal.Decimal) (*Ingredient, error) {
	ing, err := fetchIngredientQ(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	newQty := ing.Quantity.Add(delta)
	if newQty.IsNegative() {
		return nil, &InsufficientStockError{
			Ingredient: ing.Name,
			Available:  ing.Quantity,
			Requested:  delta.Neg(),
		}
	}

	_, err = tx.Exec(ctx,
		"UPDATE ingredients SET quantity = $1, updated_at = NOW() WHERE id = $2",
		newQty, id)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust quantity for ingredient %d: %w", id, err)
	}
	ing.Quantity = newQty
	return ing, nil
}

func (s *inventoryService) ReceiveStockTx(ctx context.Context, tx pgx.Tx, id int, qty, unitCost decimal.Decimal) (*Ingredient, error) {
	if !qty.IsPositive() {
		return nil, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if unitCost.IsNegative() {
		return nil, &ValidationError{Field: "unit_cost", Reason: "must not be negative"}
	}

	ing, err := fetchIngredientQ(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	newQty := ing.Quantity.Add(qty)

	// Weighted average cost: existing stock at the old cost blended with the
	// received quantity at the receipt cost.
	newCost := ing.UnitCost
	if unitCost.IsPositive() {
		if ing.Quantity.IsPositive() && ing.UnitCost.IsPositive() {
			totalValue := ing.Quantity.Mul(ing.UnitCost).Add(qty.Mul(unitCost))
			newCost = totalValue.Div(newQty).Round(4)
		} else {
			newCost = unitCost
		}
	}

	_, err = tx.Exec(ctx,
		"UPDATE ingredients SET quantity = $1, unit_cost = $2, updated_at = NOW() WHERE id = $3",
		newQty, newCost, id)
	if err != nil {
		return nil, fmt.Errorf("failed to receive stock for ingredient %d: %w", id, err)
	}
	ing.Quantity = newQty
	ing.UnitCost = newCost
	return ing, nil
}
