package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Domain error types. Services return them (usually wrapped with %w context)
// so adapters can pick a transport status with errors.As. None of them is
// fatal: the ledger state is unchanged whenever one is returned.

// NotFoundError reports a failed entity lookup.
type NotFoundError struct {
	Kind string // "ingredient", "pullout", "supplier", "purchase order", "consignment", "staff"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// ValidationError reports input rejected before any mutation was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError reports an adjustment that would drive an
// ingredient's quantity below zero. Stock is never clamped; the operation
// that produced this error was aborted whole.
type InsufficientStockError struct {
	Ingredient string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %s, required %s",
		e.Ingredient, e.Available.String(), e.Requested.String())
}

// InvalidTransitionError reports a lifecycle action applied in a state that
// does not permit it. The record is left exactly as it was.
type InvalidTransitionError struct {
	Entity string // "pullout", "purchase order", "consignment"
	Action string // "approved", "rejected", "edited", "received", ...
	From   string // current status
	Want   string // required status, empty when several are acceptable
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s cannot be %s: status is %s", e.Entity, e.Action, e.From)
	if e.Want != "" {
		msg += fmt.Sprintf(" (must be %s)", e.Want)
	}
	return msg
}

// ConcurrencyConflictError reports that Postgres aborted the transaction due
// to a serialization failure or deadlock. The caller should re-read current
// state and retry; the service never retries on its own.
type ConcurrencyConflictError struct {
	Op string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent modification detected during %s, retry from fresh state", e.Op)
}

// translateDBError converts retryable Postgres failure codes into
// ConcurrencyConflictError and passes everything else through unchanged.
func translateDBError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return &ConcurrencyConflictError{Op: op}
		}
	}
	return err
}
