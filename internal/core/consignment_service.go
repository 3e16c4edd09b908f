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
)

type consignmentService struct {
	pool      *pgxpool.Pool
	inventory InventoryService
	staff     StaffService
	ledger    *StockLedger
	documents DocumentService
}

// NewConsignmentService constructs a ConsignmentService backed by PostgreSQL.
func NewConsignmentService(pool *pgxpool.Pool, inventory InventoryService, staff StaffService,
	ledger *StockLedger, documents DocumentService) ConsignmentService {
	return &consignmentService{pool: pool, inventory: inventory, staff: staff, ledger: ledger, documents: documents}
}

func (s *consignmentService) RecordConsignment(ctx context.Context, input ConsignmentInput) (*Consignment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	receiver, err := s.staff.GetStaff(ctx, input.ReceivedBy)
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
	}

	// The CN reference is issued in the same transaction as the insert, so a
	// failed recording never burns a number.
	year := time.Now().Year()
	if d, err := time.Parse("2006-01-02", input.DeliveryDate); err == nil {
		year = d.Year()
	}
	reference, err := s.documents.NextDocumentNumberTx(ctx, tx, DocTypeConsignment, year)
	if err != nil {
		return nil, err
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO consignments (reference, supplier_id, status, delivery_date, notes, received_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		reference, input.SupplierID, string(ConsignmentDelivered), input.DeliveryDate,
		toPtr(strings.TrimSpace(input.Notes)), input.ReceivedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert consignment: %w", err)
	}

	for i, line := range input.Lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO consignment_lines (consignment_id, line_number, ingredient_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5)`,
			id, i+1, line.IngredientID, line.Quantity, line.UnitCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert consignment line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("record consignment", err))
	}
	return s.GetConsignment(ctx, id)
}

func (s *consignmentService) StockConsignment(ctx context.Context, id int) (*Consignment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status, reference string
	err = tx.QueryRow(ctx,
		"SELECT status, reference FROM consignments WHERE id = $1 FOR UPDATE", id,
	).Scan(&status, &reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "consignment", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch consignment %d: %w", id, err)
	}
	if ConsignmentStatus(status) != ConsignmentDelivered {
		return nil, &InvalidTransitionError{Entity: "consignment", Action: "stocked", From: status, Want: string(ConsignmentDelivered)}
	}

	lines, err := fetchConsignmentLinesQ(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// Ingredient rows lock in ascending order, matching every other
	// multi-ingredient writer.
	sort.Slice(lines, func(i, j int) bool { return lines[i].IngredientID < lines[j].IngredientID })

	correlationID := uuid.NewString()
	refType := "consignment"
	for _, line := range lines {
		if _, err := s.inventory.ReceiveStockTx(ctx, tx, line.IngredientID, line.Quantity, line.UnitCost); err != nil {
			return nil, err
		}
		note := fmt.Sprintf("consignment %s line %d", reference, line.LineNumber)
		err := s.ledger.RecordMovementTx(ctx, tx, StockMovement{
			IngredientID:  line.IngredientID,
			MovementType:  MovementConsignment,
			QtyDelta:      line.Quantity,
			ReferenceType: &refType,
			ReferenceID:   &id,
			CorrelationID: correlationID,
			Notes:         &note,
		})
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx,
		"UPDATE consignments SET status = $1, stocked_at = NOW() WHERE id = $2",
		string(ConsignmentStocked), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update consignment %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("stock consignment", err))
	}
	return s.GetConsignment(ctx, id)
}

func (s *consignmentService) VoidConsignment(ctx context.Context, id int, reason string) (*Consignment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Reason: "is required to void a consignment"}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM consignments WHERE id = $1 FOR UPDATE", id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "consignment", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch consignment %d: %w", id, err)
	}
	if ConsignmentStatus(status) != ConsignmentDelivered {
		return nil, &InvalidTransitionError{Entity: "consignment", Action: "voided", From: status, Want: string(ConsignmentDelivered)}
	}

	_, err = tx.Exec(ctx,
		"UPDATE consignments SET status = $1, voided_reason = $2, voided_at = NOW() WHERE id = $3",
		string(ConsignmentVoid), strings.TrimSpace(reason), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to void consignment %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", translateDBError("void consignment", err))
	}
	return s.GetConsignment(ctx, id)
}

const consignmentColumns = `
	c.id, c.reference, c.supplier_id, s.code, s.name, c.status,
	c.delivery_date::text, c.notes, c.received_by, rb.full_name,
	c.voided_reason, c.stocked_at, c.voided_at, c.created_at`

const consignmentJoins = `
	FROM consignments c
	JOIN suppliers s ON s.id = c.supplier_id
	JOIN staff rb ON rb.id = c.received_by`

func scanConsignment(row pgx.Row) (*Consignment, error) {
	c := &Consignment{}
	var status string
	err := row.Scan(
		&c.ID, &c.Reference, &c.SupplierID, &c.SupplierCode, &c.SupplierName, &status,
		&c.DeliveryDate, &c.Notes, &c.ReceivedBy, &c.ReceivedByName,
		&c.VoidedReason, &c.StockedAt, &c.VoidedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = ConsignmentStatus(status)
	return c, nil
}

func (s *consignmentService) GetConsignment(ctx context.Context, id int) (*Consignment, error) {
	c, err := scanConsignment(s.pool.QueryRow(ctx,
		`SELECT`+consignmentColumns+consignmentJoins+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "consignment", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch consignment %d: %w", id, err)
	}

	lines, err := fetchConsignmentLinesQ(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	c.Lines = lines
	return c, nil
}

func (s *consignmentService) ListConsignments(ctx context.Context, status ConsignmentStatus) ([]Consignment, error) {
	query := `SELECT` + consignmentColumns + consignmentJoins
	var args []any
	if status != "" {
		args = append(args, string(status))
		query += " WHERE c.status = $1"
	}
	query += " ORDER BY c.created_at DESC, c.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query consignments: %w", err)
	}
	defer rows.Close()

	var consignments []Consignment
	for rows.Next() {
		c, err := scanConsignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consignment: %w", err)
		}
		consignments = append(consignments, *c)
	}
	return consignments, rows.Err()
}

func fetchConsignmentLinesQ(ctx context.Context, q pgxRowQuerier, consignmentID int) ([]ConsignmentLine, error) {
	rows, err := q.Query(ctx, `
		SELECT cl.id, cl.consignment_id, cl.line_number, cl.ingredient_id, i.name, i.unit,
		       cl.quantity, cl.unit_cost
		FROM consignment_lines cl
		JOIN ingredients i ON i.id = cl.ingredient_id
		WHERE cl.consignment_id = $1
		ORDER BY cl.line_number`,
		consignmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for consignment %d: %w", consignmentID, err)
	}
	defer rows.Close()

	var lines []ConsignmentLine
	for rows.Next() {
		var l ConsignmentLine
		if err := rows.Scan(
			&l.ID, &l.ConsignmentID, &l.LineNumber, &l.IngredientID, &l.IngredientName, &l.Unit,
			&l.Quantity, &l.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan consignment line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
