package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

const supplierColumns = `id, code, name, contact_person, email, phone, address,
	       lead_time_days, is_active, created_at`

func scanSupplier(row pgx.Row) (*Supplier, error) {
	sp := &Supplier{}
	err := row.Scan(
		&sp.ID, &sp.Code, &sp.Name,
		&sp.ContactPerson, &sp.Email, &sp.Phone, &sp.Address,
		&sp.LeadTimeDays, &sp.IsActive, &sp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *supplierService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	sp, err := scanSupplier(s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (code, name, contact_person, email, phone, address, lead_time_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+supplierColumns,
		strings.ToUpper(strings.TrimSpace(input.Code)), strings.TrimSpace(input.Name),
		toPtr(input.ContactPerson), toPtr(input.Email), toPtr(input.Phone), toPtr(input.Address),
		input.LeadTimeDays,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier %q: %w", input.Code, err)
	}
	return sp, nil
}

func (s *supplierService) GetSuppliers(ctx context.Context, includeInactive bool) ([]Supplier, error) {
	query := "SELECT " + supplierColumns + " FROM suppliers"
	if !includeInactive {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY code"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, *sp)
	}
	return suppliers, rows.Err()
}

func (s *supplierService) GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	sp, err := scanSupplier(s.pool.QueryRow(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "supplier", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch supplier %d: %w", id, err)
	}
	return sp, nil
}

func (s *supplierService) GetSupplierByCode(ctx context.Context, code string) (*Supplier, error) {
	sp, err := scanSupplier(s.pool.QueryRow(ctx,
		"SELECT "+supplierColumns+" FROM suppliers WHERE code = $1",
		strings.ToUpper(strings.TrimSpace(code))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "supplier", Ref: code}
		}
		return nil, fmt.Errorf("failed to fetch supplier %q: %w", code, err)
	}
	return sp, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id int, input SupplierInput) (*Supplier, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	sp, err := scanSupplier(s.pool.QueryRow(ctx, `
		UPDATE suppliers
		SET code = $1, name = $2, contact_person = $3, email = $4, phone = $5,
		    address = $6, lead_time_days = $7
		WHERE id = $8
		RETURNING `+supplierColumns,
		strings.ToUpper(strings.TrimSpace(input.Code)), strings.TrimSpace(input.Name),
		toPtr(input.ContactPerson), toPtr(input.Email), toPtr(input.Phone), toPtr(input.Address),
		input.LeadTimeDays, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "supplier", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to update supplier %d: %w", id, err)
	}
	return sp, nil
}

func (s *supplierService) DeactivateSupplier(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "UPDATE suppliers SET is_active = false WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate supplier %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: "supplier", Ref: strconv.Itoa(id)}
	}
	return nil
}
