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

type staffService struct {
	pool *pgxpool.Pool
}

// NewStaffService constructs a StaffService backed by PostgreSQL.
func NewStaffService(pool *pgxpool.Pool) StaffService {
	return &staffService{pool: pool}
}

const staffColumns = "id, full_name, role, phone, is_active, created_at"

func scanStaff(row pgx.Row) (*Staff, error) {
	st := &Staff{}
	err := row.Scan(&st.ID, &st.FullName, &st.Role, &st.Phone, &st.IsActive, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *staffService) CreateStaff(ctx context.Context, input StaffInput) (*Staff, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	st, err := scanStaff(s.pool.QueryRow(ctx, `
		INSERT INTO staff (full_name, role, phone)
		VALUES ($1, $2, $3)
		RETURNING `+staffColumns,
		strings.TrimSpace(input.FullName), input.Role, toPtr(input.Phone),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create staff member %q: %w", input.FullName, err)
	}
	return st, nil
}

func (s *staffService) GetStaff(ctx context.Context, id int) (*Staff, error) {
	st, err := scanStaff(s.pool.QueryRow(ctx,
		"SELECT "+staffColumns+" FROM staff WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "staff member", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to fetch staff member %d: %w", id, err)
	}
	return st, nil
}

func (s *staffService) GetStaffByName(ctx context.Context, name string) (*Staff, error) {
	st, err := scanStaff(s.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE LOWER(full_name) = LOWER($1) AND is_active = true
		LIMIT 1`,
		strings.TrimSpace(name),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "staff member", Ref: name}
		}
		return nil, fmt.Errorf("failed to fetch staff member %q: %w", name, err)
	}
	return st, nil
}

func (s *staffService) ListStaff(ctx context.Context, includeInactive bool) ([]Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff"
	if !includeInactive {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY full_name"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var members []Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		members = append(members, *st)
	}
	return members, rows.Err()
}

func (s *staffService) UpdateStaff(ctx context.Context, id int, input StaffInput) (*Staff, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	st, err := scanStaff(s.pool.QueryRow(ctx, `
		UPDATE staff
		SET full_name = $1, role = $2, phone = $3
		WHERE id = $4
		RETURNING `+staffColumns,
		strings.TrimSpace(input.FullName), input.Role, toPtr(input.Phone), id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "staff member", Ref: strconv.Itoa(id)}
		}
		return nil, fmt.Errorf("failed to update staff member %d: %w", id, err)
	}
	return st, nil
}

func (s *staffService) DeactivateStaff(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "UPDATE staff SET is_active = false WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate staff member %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Kind: "staff member", Ref: strconv.Itoa(id)}
	}
	return nil
}
