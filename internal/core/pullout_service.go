package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type pulloutService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	staff     StaffService
	ledger    *StockLedger
}

// NewPulloutService constructs the pullout store backed by PostgreSQL.
// Stock effects flow through inventory under its row lock; every applied or
// reversed quantity leaves a movement row in the ledger.
func NewPulloutService(pool *pgxpool.Pool, inventory InventoryService, staff StaffService, ledger *StockLedger) PulloutService {
	return &pulloutService{pool: pool, inventory: inventory, staff: staff, ledger: ledger}
}

const pulloutColumns = `
	p.id, p.ingredient_id, i.name, i.unit, p.quantity, p.reason,
	p.date_of_pullout::text, p.requested_by, req.full_name,
	p.approved_by, app.full_name, p.status, p.applied_delta,
	p.rejected_reason, p.approved_at, p.rejected_at, p.idempotency_key,
	p.created_at, p.updated_at`

const pulloutJoins = `
	FROM pullouts p
	JOIN ingredients i ON i.id = p.ingredient_id
	JOIN staff req ON req.id = p.requested_by
	LEFT JOIN staff app ON app.id = p.approved_by`

func scanPullout(row pgx.Row) (*Pullout, error) {
	p := &Pullout{}
	var status string
	err := row.Scan(
		&p.ID, &p.IngredientID, &p.IngredientName, &p.Unit, &p.Quantity, &p.Reason,
		&p.DateOfPullout, &p.RequestedBy, &p.RequestedByName,
		&p.ApprovedBy, &p.ApprovedByName, &status, &p.AppliedDelta,
		&p.RejectedReason, &p.ApprovedAt, &p.RejectedAt, &p.IdempotencyKey,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = PulloutStatus(status)
	return p, nil
}

func fetchPulloutQ(ctx context.Context, q pgxQuerier, id int, forUpdate bool) (*Pullout, error) {
	query := `SELECT` + pulloutColumns + pulloutJoins + ` WHERE p.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF p`
	}
	p, err := scanPullout(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "pullout", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch pullout %d: %w", id, err)
	}
	return p, nil
}

// requireApprover checks that the staff member exists, is active and holds
// approval rights. Returned errors carry the field name that referenced them.
func (s *pulloutService) requireApprover(ctx context.Context, staffID int, field string) (*Staff, error) {
	st, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if !st.IsActive {
		return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("staff member %s is inactive", st.FullName)}
	}
	if !st.CanApprove() {
		return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("staff member %s (%s) cannot approve pullouts", st.FullName, st.Role)}
	}
	return st, nil
}

// ── Creation ──────────────────────────────────────────────────────────────────

func (s *pulloutService) CreatePullout(ctx context.Context, input PulloutInput) (*Pullout, error) {
	return s.create(ctx, input)
}

func (s *pulloutService) CreateRestock(ctx context.Context, input PulloutInput) (*Pullout, error) {
	// Validate the positive magnitude first, then negate: additions exist
	// only past this point, never from raw client input.
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input.Quantity = input.Quantity.Neg()
	input.allowAddition = true
	return s.create(ctx, input)
}

func (s *pulloutService) create(ctx context.Context, input PulloutInput) (*Pullout, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	requester, err := s.staff.GetStaff(ctx, input.RequestedBy)
	if err != nil {
		return nil, err
	}
	if !requester.IsActive {
		return nil, &ValidationError{Field: "requested_by", Reason: fmt.Sprintf("staff member %s is inactive", requester.FullName)}
	}

	target := PulloutPending
	var approver *Staff
	if input.ApprovedBy != nil {
		if approver, err = s.requireApprover(ctx, *input.ApprovedBy, "approved_by"); err != nil {
			return nil, err
		}
		target = PulloutApproved
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ing, err := s.inventory.LockIngredientTx(ctx, tx, input.IngredientID)
	if err != nil {
		return nil, err
	}
	if !ing.IsActive {
		return nil, &ValidationError{Field: "ingredient_id", Reason: fmt.Sprintf("ingredient %s is inactive", ing.Name)}
	}

	// Gate: the record must be applicable against current stock even when it
	// starts pending, otherwise approval could never succeed.
	prospective := signedEffect(PulloutApproved, input.Quantity)
	if ing.Quantity.Sub(prospective).IsNegative() {
		return nil, &InsufficientStockError{Ingredient: ing.Name, Available: ing.Quantity, Requested: prospective}
	}

	newApplied, stockDelta := reconcileDiff(target, input.Quantity, decimal.Zero)

	var keyArg *string
	if input.IdempotencyKey != "" {
		keyArg = &input.IdempotencyKey
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO pullouts (ingredient_id, quantity, reason, date_of_pullout,
		                      requested_by, status, applied_delta, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id`,
		input.IngredientID, input.Quantity, strings.TrimSpace(input.Reason), input.DateOfPullout,
		input.RequestedBy, string(PulloutPending), decimal.Zero, keyArg,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Retried create: the key already has a record. Return it untouched.
			return fetchPulloutByKey(ctx, s.pool, input.IdempotencyKey)
		}
		return nil, fmt.Errorf("failed to insert pullout: %w", err)
	}

	if target == PulloutApproved {
		if _, err := s.inventory.AdjustQuantityTx(ctx, tx, input.IngredientID, stockDelta); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("approved at creation by %s", approver.FullName)
		err = s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  input.IngredientID,
			MovementType:  pulloutMovementType(stockDelta, input.Quantity),
			QtyDelta:      stockDelta,
			PulloutID:     &id,
			CorrelationID: uuid.NewString(),
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `
			UPDATE pullouts
			SET status = $1, applied_delta = $2, approved_by = $3, approved_at = NOW(), updated_at = NOW()
			WHERE id = $4`,
			string(PulloutApproved), newApplied, *input.ApprovedBy, id)
		if err != nil {
			return nil, fmt.Errorf("failed to mark pullout %d approved: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("create pullout", err))
	}
	return fetchPulloutQ(ctx, s.pool, id, false)
}

func fetchPulloutByKey(ctx context.Context, q pgxQuerier, key string) (*Pullout, error) {
	p, err := scanPullout(q.QueryRow(ctx,
		`SELECT`+pulloutColumns+pulloutJoins+` WHERE p.idempotency_key = $1`, key))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pullout by idempotency key: %w", err)
	}
	return p, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *pulloutService) GetPullout(ctx context.Context, id int) (*Pullout, error) {
	return fetchPulloutQ(ctx, s.pool, id, false)
}

func (s *pulloutService) ListPullouts(ctx context.Context, filter PulloutFilter) ([]Pullout, error) {
	query := `SELECT` + pulloutColumns + pulloutJoins + ` WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	if filter.IngredientID > 0 {
		args = append(args, filter.IngredientID)
		query += fmt.Sprintf(" AND p.ingredient_id = $%d", len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		query += fmt.Sprintf(" AND p.date_of_pullout >= $%d::date", len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		query += fmt.Sprintf(" AND p.date_of_pullout <= $%d::date", len(args))
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pullouts: %w", err)
	}
	defer rows.Close()

	var pullouts []Pullout
	for rows.Next() {
		p, err := scanPullout(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pullout: %w", err)
		}
		pullouts = append(pullouts, *p)
	}
	return pullouts, rows.Err()
}

// ── Lifecycle transitions ─────────────────────────────────────────────────────

// lockForReconcile opens the mutation locks in their fixed order: ingredient
// row first (the per-ingredient serialization point), then the pullout row.
// The pullout's status is re-read under the lock, so transition checks hold
// for the rest of the transaction.
func (s *pulloutService) lockForReconcile(ctx context.Context, tx pgx.Tx, id int) (*Ingredient, *Pullout, error) {
	var ingredientID int
	err := tx.QueryRow(ctx, "SELECT ingredient_id FROM pullouts WHERE id = $1", id).Scan(&ingredientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Kind: "pullout", Ref: strconv.Itoa(id)}
		}
		return nil, nil, fmt.Errorf("failed to resolve pullout %d: %w", id, err)
	}

	ing, err := s.inventory.LockIngredientTx(ctx, tx, ingredientID)
	if err != nil {
		return nil, nil, err
	}

	p, err := fetchPulloutQ(ctx, tx, id, true)
	if err != nil {
		return nil, nil, err
	}
	return ing, p, nil
}

func (s *pulloutService) ApprovePullout(ctx context.Context, id, approverID int) (*Pullout, error) {
	approver, err := s.requireApprover(ctx, approverID, "approved_by")
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, p, err := s.lockForReconcile(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPulloutTransition(p.Status, pulloutActionApprove); err != nil {
		return nil, err
	}

	newApplied, stockDelta := reconcileDiff(PulloutApproved, p.Quantity, p.AppliedDelta)
	if !stockDelta.IsZero() {
		if _, err := s.inventory.AdjustQuantityTx(ctx, tx, p.IngredientID, stockDelta); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("approved by %s", approver.FullName)
		err = s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  p.IngredientID,
			MovementType:  pulloutMovementType(stockDelta, p.Quantity),
			QtyDelta:      stockDelta,
			PulloutID:     &p.ID,
			CorrelationID: uuid.NewString(),
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE pullouts
		SET status = $1, applied_delta = $2, approved_by = $3, approved_at = NOW(), updated_at = NOW()
		WHERE id = $4`,
		string(PulloutApproved), newApplied, approverID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update pullout %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("approve pullout", err))
	}
	return fetchPulloutQ(ctx, s.pool, id, false)
}

func (s *pulloutService) RejectPullout(ctx context.Context, id, staffID int, reason string) (*Pullout, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Reason: "is required to reject a pullout"}
	}
	rejecter, err := s.requireApprover(ctx, staffID, "rejected_by")
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, p, err := s.lockForReconcile(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPulloutTransition(p.Status, pulloutActionReject); err != nil {
		return nil, err
	}

	// Rejection after approval restores exactly what was applied; rejecting
	// a pending record touches no stock at all.
	newApplied, stockDelta := reconcileDiff(PulloutRejected, p.Quantity, p.AppliedDelta)
	if !stockDelta.IsZero() {
		if _, err := s.inventory.AdjustQuantityTx(ctx, tx, p.IngredientID, stockDelta); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("rejected by %s: %s", rejecter.FullName, strings.TrimSpace(reason))
		err = s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  p.IngredientID,
			MovementType:  pulloutMovementType(stockDelta, p.Quantity),
			QtyDelta:      stockDelta,
			PulloutID:     &p.ID,
			CorrelationID: uuid.NewString(),
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE pullouts
		SET status = $1, applied_delta = $2, rejected_reason = $3, rejected_at = NOW(), updated_at = NOW()
		WHERE id = $4`,
		string(PulloutRejected), newApplied, strings.TrimSpace(reason), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update pullout %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("reject pullout", err))
	}
	return fetchPulloutQ(ctx, s.pool, id, false)
}

func (s *pulloutService) EditPullout(ctx context.Context, id int, edit PulloutEdit) (*Pullout, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ing, p, err := s.lockForReconcile(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPulloutTransition(p.Status, pulloutActionEdit); err != nil {
		return nil, err
	}
	if err := validateEdit(p, edit); err != nil {
		return nil, err
	}

	newQty := p.Quantity
	if edit.Quantity != nil {
		newQty = *edit.Quantity
	}
	newReason := p.Reason
	if edit.Reason != nil {
		newReason = strings.TrimSpace(*edit.Reason)
	}
	newDate := p.DateOfPullout
	if edit.DateOfPullout != nil {
		newDate = *edit.DateOfPullout
	}

	// Gate: the edited record must still be applicable. The current applied
	// delta offsets the check, so shrinking an approved pullout always passes.
	prospective := signedEffect(PulloutApproved, newQty).Sub(p.AppliedDelta)
	if ing.Quantity.Sub(prospective).IsNegative() {
		return nil, &InsufficientStockError{Ingredient: ing.Name, Available: ing.Quantity, Requested: prospective}
	}

	// Re-reconcile in place: the target state is the record's current state,
	// only the quantity underneath it changed.
	newApplied, stockDelta := reconcileDiff(p.Status, newQty, p.AppliedDelta)
	if !stockDelta.IsZero() {
		if _, err := s.inventory.AdjustQuantityTx(ctx, tx, p.IngredientID, stockDelta); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("edited: quantity %s → %s", p.Quantity.String(), newQty.String())
		err = s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  p.IngredientID,
			MovementType:  pulloutMovementType(stockDelta, newQty),
			QtyDelta:      stockDelta,
			PulloutID:     &p.ID,
			CorrelationID: uuid.NewString(),
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE pullouts
		SET quantity = $1, reason = $2, date_of_pullout = $3, applied_delta = $4, updated_at = NOW()
		WHERE id = $5`,
		newQty, newReason, newDate, newApplied, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update pullout %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("edit pullout", err))
	}
	return fetchPulloutQ(ctx, s.pool, id, false)
}

func (s *pulloutService) DeletePullout(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, p, err := s.lockForReconcile(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := checkPulloutTransition(p.Status, pulloutActionDelete); err != nil {
		return err
	}

	// Reconcile to zero before the row goes: a deleted record must leave no
	// trace in stock, and the reversal movement keeps the history auditable.
	_, stockDelta := reconcileDiff(pulloutDeleted, p.Quantity, p.AppliedDelta)
	if !stockDelta.IsZero() {
		if _, err := s.inventory.AdjustQuantityTx(ctx, tx, p.IngredientID, stockDelta); err != nil {
			return err
		}
		note := fmt.Sprintf("pullout #%d deleted (was %s)", p.ID, p.Status)
		err = s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  p.IngredientID,
			MovementType:  pulloutMovementType(stockDelta, p.Quantity),
			QtyDelta:      stockDelta,
			PulloutID:     &p.ID,
			CorrelationID: uuid.NewString(),
			Notes:         &note,
		})
		if err != nil {
			return err
		}
	}

	// Movement rows keep their trail via ON DELETE SET NULL on pullout_id.
	if _, err := tx.Exec(ctx, "DELETE FROM pullouts WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete pullout %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateDBError("delete pullout", err))
	}
	return nil
}
