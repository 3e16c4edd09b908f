package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockLedger is the append-only movement log kept beside the ingredients
// table. Every reconciled stock change writes exactly one movement row in
// the same transaction as the quantity update, so the log for an ingredient
// always sums to the on-hand quantity it explains. Rows are never updated
// or deleted; corrections appear as further movements.
type StockLedger struct {
	pool *pgxpool.Pool
}

func NewStockLedger(pool *pgxpool.Pool) *StockLedger {
	return &StockLedger{pool: pool}
}

// RecordMovementTx appends one movement row inside the caller's transaction.
// MovementDate defaults to the current date when zero.
func (l *StockLedger) RecordMovementTx(ctx context.Context, tx pgx.Tx, m StockMovement) error {
	if m.QtyDelta.IsZero() {
		return fmt.Errorf("refusing to record zero-delta movement for ingredient %d", m.IngredientID)
	}

	var err error
	if m.MovementDate.IsZero() {
		_, err = tx.Exec(ctx, `
			INSERT INTO stock_movements (ingredient_id, movement_type, qty_delta, pullout_id,
			                             reference_type, reference_id, correlation_id, movement_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_DATE, $8)`,
			m.IngredientID, m.MovementType, m.QtyDelta, m.PulloutID,
			m.ReferenceType, m.ReferenceID, m.CorrelationID, m.Notes)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO stock_movements (ingredient_id, movement_type, qty_delta, pullout_id,
			                             reference_type, reference_id, correlation_id, movement_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.IngredientID, m.MovementType, m.QtyDelta, m.PulloutID,
			m.ReferenceType, m.ReferenceID, m.CorrelationID, m.MovementDate, m.Notes)
	}
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// GetMovements returns an ingredient's movement history oldest first, each
// line carrying the running on-hand balance after it. fromDate and toDate
// are optional YYYY-MM-DD bounds; the running balance is computed over the
// full history so a bounded window still shows true levels.
func (l *StockLedger) GetMovements(ctx context.Context, ingredientID int, fromDate, toDate string) ([]MovementLine, error) {
	var fromArg, toArg *string
	if fromDate != "" {
		fromArg = &fromDate
	}
	if toDate != "" {
		toArg = &toDate
	}

	rows, err := l.pool.Query(ctx, `
		SELECT movement_date, movement_type, qty_delta, notes, running_on_hand
		FROM (
			SELECT movement_date, movement_type, qty_delta,
			       COALESCE(notes, '') AS notes, created_at, id,
			       SUM(qty_delta) OVER (ORDER BY created_at, id) AS running_on_hand
			FROM stock_movements
			WHERE ingredient_id = $1
		) m
		WHERE ($2::date IS NULL OR m.movement_date >= $2::date)
		  AND ($3::date IS NULL OR m.movement_date <= $3::date)
		ORDER BY m.created_at, m.id`,
		ingredientID, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements for ingredient %d: %w", ingredientID, err)
	}
	defer rows.Close()

	var lines []MovementLine
	for rows.Next() {
		var ml MovementLine
		if err := rows.Scan(&ml.MovementDate, &ml.MovementType, &ml.QtyDelta,
			&ml.Notes, &ml.RunningOnHand); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		lines = append(lines, ml)
	}
	return lines, rows.Err()
}

// VerifyBalance recomputes an ingredient's on-hand quantity from its
// movement rows and compares it with the stored value. A mismatch means a
// stock write bypassed the reconciliation path.
func (l *StockLedger) VerifyBalance(ctx context.Context, ingredientID int) (ok bool, ledgerSum, onHand decimal.Decimal, err error) {
	err = l.pool.QueryRow(ctx, `
		SELECT COALESCE((SELECT SUM(qty_delta) FROM stock_movements WHERE ingredient_id = $1), 0),
		       i.quantity
		FROM ingredients i
		WHERE i.id = $1`,
		ingredientID).Scan(&ledgerSum, &onHand)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, ledgerSum, onHand, fmt.Errorf("ingredient %d not found", ingredientID)
		}
		return false, ledgerSum, onHand, fmt.Errorf("failed to verify balance for ingredient %d: %w", ingredientID, err)
	}
	return ledgerSum.Equal(onHand), ledgerSum, onHand, nil
}
