package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PulloutStatus is the lifecycle state of a pullout record.
type PulloutStatus string

const (
	PulloutPending  PulloutStatus = "pending"
	PulloutApproved PulloutStatus = "approved"
	PulloutRejected PulloutStatus = "rejected"
)

// pendingAffectsStock is the stock-effect policy for pending records: a
// pullout holds no stock until it is approved. Every reconciliation reads the
// policy through signedEffect, so flipping this single constant is the only
// change needed to reserve stock at request time instead.
const pendingAffectsStock = false

// Pullout is a recorded stock removal (or, with a negated quantity via the
// restock path, an addition) awaiting or past managerial approval.
//
// Quantity is the requested amount in the ingredient's unit; positive means
// removal. AppliedDelta is the portion of that effect currently reflected in
// the ingredient's on-hand quantity: zero while pending or rejected, equal
// to Quantity once approved. It is persisted so that edits, rejections and
// deletes can reconcile against exactly what was applied, not against a
// guess reconstructed from status.
type Pullout struct {
	ID              int             `json:"id"`
	IngredientID    int             `json:"ingredient_id"` // immutable after creation
	IngredientName  string          `json:"ingredient_name"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reason          string          `json:"reason"`
	DateOfPullout   string          `json:"date_of_pullout"` // YYYY-MM-DD
	RequestedBy     int             `json:"requested_by"`
	RequestedByName string          `json:"requested_by_name"`
	ApprovedBy      *int            `json:"approved_by,omitempty"`
	ApprovedByName  *string         `json:"approved_by_name,omitempty"`
	Status          PulloutStatus   `json:"status"`
	AppliedDelta    decimal.Decimal `json:"applied_delta"`
	RejectedReason  *string         `json:"rejected_reason,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	IdempotencyKey  *string         `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PulloutInput holds the fields for creating a pullout record.
type PulloutInput struct {
	IngredientID  int
	Quantity      decimal.Decimal
	Reason        string
	DateOfPullout string // YYYY-MM-DD
	RequestedBy   int
	// ApprovedBy, when set, creates the record directly in approved status
	// (manager recording an already-performed removal). The referenced staff
	// member must hold approval rights.
	ApprovedBy *int
	// IdempotencyKey deduplicates client retries of the same create call.
	IdempotencyKey string
	// allowAddition is set only by the restock path; the public gate refuses
	// non-positive quantities.
	allowAddition bool
}

// PulloutEdit holds the three editable fields. Nil pointers leave the current
// value unchanged. Moving a pullout to another ingredient is not an edit;
// delete and recreate instead.
type PulloutEdit struct {
	Quantity      *decimal.Decimal
	Reason        *string
	DateOfPullout *string // YYYY-MM-DD
}

// PulloutFilter narrows ListPullouts. Zero values mean "no constraint".
type PulloutFilter struct {
	Status       PulloutStatus
	IngredientID int
	DateFrom     string // YYYY-MM-DD inclusive
	DateTo       string // YYYY-MM-DD inclusive
}

// PulloutService is the pullout record store, reconciliation engine and
// approval state machine behind one interface. Every mutation runs in a
// single transaction that locks the ingredient row first, so record fields,
// AppliedDelta and ingredient quantity can never drift apart.
type PulloutService interface {
	// CreatePullout validates the input and stores a new record, pending by
	// default or directly approved when input.ApprovedBy is set. When an
	// idempotency key is supplied and a record with that key already exists,
	// the existing record is returned unchanged.
	CreatePullout(ctx context.Context, input PulloutInput) (*Pullout, error)

	// CreateRestock records a stock addition riding the pullout rails: the
	// validated positive quantity is negated before storage, so approval
	// increases the ingredient's on-hand amount.
	CreateRestock(ctx context.Context, input PulloutInput) (*Pullout, error)

	// GetPullout returns a single record with ingredient and staff names joined.
	GetPullout(ctx context.Context, id int) (*Pullout, error)

	// ListPullouts returns records matching the filter, newest first.
	ListPullouts(ctx context.Context, filter PulloutFilter) ([]Pullout, error)

	// ApprovePullout transitions pending → approved and applies the stock
	// effect. Approving a record in any other state fails with
	// InvalidTransitionError and changes nothing.
	ApprovePullout(ctx context.Context, id, approverID int) (*Pullout, error)

	// RejectPullout transitions pending or approved → rejected, restoring any
	// applied stock. Rejected is terminal. A non-blank reason is required.
	RejectPullout(ctx context.Context, id, staffID int, reason string) (*Pullout, error)

	// EditPullout updates quantity, reason and/or date on a pending or
	// approved record and re-reconciles the stock effect in the same
	// transaction. Rejected records cannot be edited.
	EditPullout(ctx context.Context, id int, edit PulloutEdit) (*Pullout, error)

	// DeletePullout reconciles the record's effect back to zero and removes
	// the row. Legal from any status; the movement log keeps the trail.
	DeletePullout(ctx context.Context, id int) error
}
