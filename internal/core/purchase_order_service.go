package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type purchaseOrderService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	staff     StaffService
	ledger    *StockLedger
	documents DocumentService
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by PostgreSQL.
func NewPurchaseOrderService(pool *pgxpool.Pool, inventory InventoryService, staff StaffService,
	ledger *StockLedger, documents DocumentService) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, inventory: inventory, staff: staff, ledger: ledger, documents: documents}
}

func (s *purchaseOrderService) CreatePO(ctx context.Context, input POInput) (*PurchaseOrder, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	creator, err := s.staff.GetStaff(ctx, input.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !creator.IsActive {
		return nil, &ValidationError{Field: "created_by", Reason: fmt.Sprintf("staff member %s is inactive", creator.FullName)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierActive bool
	err = tx.QueryRow(ctx,
		"SELECT is_active FROM suppliers WHERE id = $1", input.SupplierID,
	).Scan(&supplierActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "supplier", Ref: strconv.Itoa(input.SupplierID)}
		}
		return nil, fmt.Errorf("failed to check supplier %d: %w", input.SupplierID, err)
	}
	if !supplierActive {
		return nil, &ValidationError{Field: "supplier_id", Reason: "supplier is inactive"}
	}

	// Resolve lines against the ingredient catalog and compute totals.
	type resolvedLine struct {
		ingredientID int
		quantity     decimal.Decimal
		unitCost     decimal.Decimal
		lineTotal    decimal.Decimal
	}
	var resolved []resolvedLine
	var totalCost decimal.Decimal

	for i, line := range input.Lines {
		var active bool
		err := tx.QueryRow(ctx,
			"SELECT is_active FROM ingredients WHERE id = $1", line.IngredientID,
		).Scan(&active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &ValidationError{Field: "lines", Reason: lineField(i, fmt.Sprintf("ingredient %d not found", line.IngredientID))}
			}
			return nil, fmt.Errorf("failed to resolve ingredient %d: %w", line.IngredientID, err)
		}
		if !active {
			return nil, &ValidationError{Field: "lines", Reason: lineField(i, fmt.Sprintf("ingredient %d is inactive", line.IngredientID))}
		}

		lineTotal := line.Quantity.Mul(line.UnitCost)
		totalCost = totalCost.Add(lineTotal)
		resolved = append(resolved, resolvedLine{
			ingredientID: line.IngredientID,
			quantity:     line.Quantity,
			unitCost:     line.UnitCost,
			lineTotal:    lineTotal,
		})
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	var poID int
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (supplier_id, status, order_date, expected_date, total_cost, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		input.SupplierID, string(PODraft), input.OrderDate, toPtr(input.ExpectedDate),
		totalCost, toPtr(strings.TrimSpace(input.Notes)), input.CreatedBy,
	).Scan(&poID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase order: %w", err)
	}

	for i, rl := range resolved {
		_, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_lines (order_id, line_number, ingredient_id, quantity, unit_cost, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			poID, i+1, rl.ingredientID, rl.quantity, rl.unitCost, rl.lineTotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert purchase order line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("create purchase order", err))
	}
	return s.GetPO(ctx, poID)
}

func (s *purchaseOrderService) ApprovePO(ctx context.Context, id, approverID int) (*PurchaseOrder, error) {
	approver, err := s.staff.GetStaff(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if !approver.IsActive {
		return nil, &ValidationError{Field: "approved_by", Reason: fmt.Sprintf("staff member %s is inactive", approver.FullName)}
	}
	if !approver.CanApprove() {
		return nil, &ValidationError{Field: "approved_by", Reason: fmt.Sprintf("staff member %s (%s) cannot approve purchase orders", approver.FullName, approver.Role)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var orderDate string
	err = tx.QueryRow(ctx,
		"SELECT status, order_date::text FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status, &orderDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "purchase order", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch purchase order %d: %w", id, err)
	}

	// Idempotent: already approved is a no-op.
	if POStatus(status) == POApproved {
		return s.GetPO(ctx, id)
	}
	if POStatus(status) != PODraft {
		return nil, &InvalidTransitionError{Entity: "purchase order", Action: "approved", From: status, Want: string(PODraft)}
	}

	year := time.Now().Year()
	if d, err := time.Parse("2006-01-02", orderDate); err == nil {
		year = d.Year()
	}
	poNumber, err := s.documents.NextDocumentNumberTx(ctx, tx, DocTypePurchaseOrder, year)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $1, po_number = $2, approved_by = $3, approved_at = NOW()
		WHERE id = $4`,
		string(POApproved), poNumber, approverID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve purchase order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("approve purchase order", err))
	}
	return s.GetPO(ctx, id)
}

func (s *purchaseOrderService) CancelPO(ctx context.Context, id int) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "purchase order", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch purchase order %d: %w", id, err)
	}

	if POStatus(status) != PODraft {
		return nil, &InvalidTransitionError{Entity: "purchase order", Action: "cancelled", From: status, Want: string(PODraft)}
	}

	_, err = tx.Exec(ctx,
		"UPDATE purchase_orders SET status = $1, cancelled_at = NOW() WHERE id = $2",
		string(POCancelled), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel purchase order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("cancel purchase order", err))
	}
	return s.GetPO(ctx, id)
}

func (s *purchaseOrderService) ReceivePO(ctx context.Context, id int, receivedBy int, lines []ReceiptLine) (*PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "lines", Reason: "at least one received line is required"}
	}
	receiver, err := s.staff.GetStaff(ctx, receivedBy)
	if err != nil {
		return nil, err
	}
	if !receiver.IsActive {
		return nil, &ValidationError{Field: "received_by", Reason: fmt.Sprintf("staff member %s is inactive", receiver.FullName)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	var poNumber *string
	err = tx.QueryRow(ctx,
		"SELECT status, po_number FROM purchase_orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&status, &poNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "purchase order", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch purchase order %d: %w", id, err)
	}
	if POStatus(status) != POApproved && POStatus(status) != POPartiallyReceived {
		return nil, &InvalidTransitionError{Entity: "purchase order", Action: "received", From: status, Want: string(POApproved)}
	}

	poLines, err := fetchPOLinesQ(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	lineByID := make(map[int]PurchaseOrderLine, len(poLines))
	for _, l := range poLines {
		lineByID[l.ID] = l
	}

	// Validate the batch before touching stock, and sort by ingredient so row
	// locks are always taken in the same order across concurrent receipts.
	type receipt struct {
		line PurchaseOrderLine
		qty  decimal.Decimal
	}
	var receipts []receipt
	for _, rl := range lines {
		if !rl.QtyReceived.IsPositive() {
			return nil, &ValidationError{Field: "lines", Reason: fmt.Sprintf("line %d: received quantity must be positive", rl.POLineID)}
		}
		pol, ok := lineByID[rl.POLineID]
		if !ok {
			return nil, &ValidationError{Field: "lines", Reason: fmt.Sprintf("line %d not found on purchase order %d", rl.POLineID, id)}
		}
		remaining := pol.Quantity.Sub(pol.QtyReceived)
		if rl.QtyReceived.GreaterThan(remaining) {
			return nil, &ValidationError{Field: "lines", Reason: fmt.Sprintf(
				"line %d: receiving %s exceeds outstanding %s (ordered %s, already received %s)",
				rl.POLineID, rl.QtyReceived.String(), remaining.String(),
				pol.Quantity.String(), pol.QtyReceived.String())}
		}
		receipts = append(receipts, receipt{line: pol, qty: rl.QtyReceived})
	}
	sort.Slice(receipts, func(i, j int) bool {
		return receipts[i].line.IngredientID < receipts[j].line.IngredientID
	})

	reference := strconv.Itoa(id)
	if poNumber != nil {
		reference = *poNumber
	}
	correlationID := uuid.NewString()
	refType := "purchase_order"

	for _, r := range receipts {
		if _, err := s.inventory.ReceiveStockTx(ctx, tx, r.line.IngredientID, r.qty, r.line.UnitCost); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("receipt against %s line %d by %s", reference, r.line.LineNumber, receiver.FullName)
		err := s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  r.line.IngredientID,
			MovementType:  MovementPOReceipt,
			QtyDelta:      r.qty,
			ReferenceType: &refType,
			ReferenceID:   &id,
			CorrelationID: correlationID,
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx,
			"UPDATE purchase_order_lines SET qty_received = qty_received + $1 WHERE id = $2",
			r.qty, r.line.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update received quantity on line %d: %w", r.line.ID, err)
		}
	}

	// Fully delivered once no line has outstanding quantity.
	var outstanding int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM purchase_order_lines WHERE order_id = $1 AND qty_received < quantity", id,
	).Scan(&outstanding)
	if err != nil {
		return nil, fmt.Errorf("failed to check outstanding lines: %w", err)
	}

	if outstanding == 0 {
		_, err = tx.Exec(ctx,
			"UPDATE purchase_orders SET status = $1, received_at = NOW() WHERE id = $2",
			string(POReceived), id)
	} else {
		_, err = tx.Exec(ctx,
			"UPDATE purchase_orders SET status = $1 WHERE id = $2",
			string(POPartiallyReceived), id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order %d status: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("receive purchase order", err))
	}
	return s.GetPO(ctx, id)
}

const poColumns = `
	po.id, po.po_number, po.supplier_id, s.code, s.name, po.status,
	po.order_date::text, po.expected_date::text, po.total_cost, po.notes,
	po.created_by, cb.full_name, po.approved_by, ab.full_name,
	po.approved_at, po.received_at, po.cancelled_at, po.created_at`

const poJoins = `
	FROM purchase_orders po
	JOIN suppliers s ON s.id = po.supplier_id
	JOIN staff cb ON cb.id = po.created_by
	LEFT JOIN staff ab ON ab.id = po.approved_by`

func scanPO(row pgx.Row) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	var status string
	err := row.Scan(
		&po.ID, &po.PONumber, &po.SupplierID, &po.SupplierCode, &po.SupplierName, &status,
		&po.OrderDate, &po.ExpectedDate, &po.TotalCost, &po.Notes,
		&po.CreatedBy, &po.CreatedByName, &po.ApprovedBy, &po.ApprovedByName,
		&po.ApprovedAt, &po.ReceivedAt, &po.CancelledAt, &po.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	po.Status = POStatus(status)
	return po, nil
}

func (s *purchaseOrderService) GetPO(ctx context.Context, id int) (*PurchaseOrder, error) {
	po, err := scanPO(s.pool.QueryRow(ctx,
		`SELECT`+poColumns+poJoins+` WHERE po.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "purchase order", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch purchase order %d: %w", id, err)
	}

	lines, err := fetchPOLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return po, nil
}

func (s *purchaseOrderService) ListPOs(ctx context.Context, status POStatus) ([]PurchaseOrder, error) {
	query := `SELECT` + poColumns + poJoins
	var args []any
	if status != "" {
		args = append(args, string(status))
		query += " WHERE po.status = $1"
	}
	query += " ORDER BY po.created_at DESC, po.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		orders = append(orders, *po)
	}
	return orders, rows.Err()
}

func fetchPOLinesQ(ctx context.Context, q pgxRowQuerier, orderID int) ([]PurchaseOrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT pol.id, pol.order_id, pol.line_number, pol.ingredient_id, i.name, i.unit,
		       pol.quantity, pol.unit_cost, pol.line_total, pol.qty_received
		FROM purchase_order_lines pol
		JOIN ingredients i ON i.id = pol.ingredient_id
		WHERE pol.order_id = $1
		ORDER BY pol.line_number`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for purchase order %d: %w", orderID, err)
	}
	defer rows.Close()

	var lines []PurchaseOrderLine
	for rows.Next() {
		var l PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.LineNumber, &l.IngredientID, &l.IngredientName, &l.Unit,
			&l.Quantity, &l.UnitCost, &l.LineTotal, &l.QtyReceived,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
