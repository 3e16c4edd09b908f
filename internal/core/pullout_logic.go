package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// pulloutDeleted is a reconciliation target only: deletion first reconciles
// the record to zero effect, then removes the row. The value is never stored.
const pulloutDeleted PulloutStatus = "deleted"

// Past-participle action names, used in transition error messages.
const (
	pulloutActionApprove = "approved"
	pulloutActionReject  = "rejected"
	pulloutActionEdit    = "edited"
	pulloutActionDelete  = "deleted"
)

// signedEffect returns the stock effect a record exerts in the given status,
// in pullout sign convention: positive = removed from stock. The on-hand
// adjustment for any state change is the negated difference of effects.
func signedEffect(status PulloutStatus, quantity decimal.Decimal) decimal.Decimal {
	switch status {
	case PulloutApproved:
		return quantity
	case PulloutPending:
		if pendingAffectsStock {
			return quantity
		}
		return decimal.Zero
	default: // rejected, deleted
		return decimal.Zero
	}
}

// reconcileDiff computes the reconciliation step that moves a record with
// the given applied delta into (target, quantity):
//
//	newApplied = signedEffect(target, quantity)
//	stockDelta = -(newApplied - applied)
//
// stockDelta is added to the ingredient's on-hand quantity and newApplied
// replaces the record's AppliedDelta, both inside one transaction. A zero
// stockDelta means the record is already reconciled and callers skip the
// stock write entirely, which is what makes replays harmless.
func reconcileDiff(target PulloutStatus, quantity, applied decimal.Decimal) (newApplied, stockDelta decimal.Decimal) {
	newApplied = signedEffect(target, quantity)
	stockDelta = newApplied.Sub(applied).Neg()
	return newApplied, stockDelta
}

// pulloutTransitions lists the statuses each lifecycle action may start from.
// Rejected is terminal apart from deletion; re-approval needs a new record.
var pulloutTransitions = map[string][]PulloutStatus{
	pulloutActionApprove: {PulloutPending},
	pulloutActionReject:  {PulloutPending, PulloutApproved},
	pulloutActionEdit:    {PulloutPending, PulloutApproved},
	pulloutActionDelete:  {PulloutPending, PulloutApproved, PulloutRejected},
}

// checkPulloutTransition returns an InvalidTransitionError when action is not
// legal from the record's current status. Callers hold the record row locked,
// so a nil result stays true for the rest of the transaction.
func checkPulloutTransition(from PulloutStatus, action string) error {
	for _, s := range pulloutTransitions[action] {
		if s == from {
			return nil
		}
	}
	return &InvalidTransitionError{Entity: "pullout", Action: action, From: string(from)}
}

// pulloutMovementType labels a reconciliation movement: APPLY when the stock
// change moves toward the record's full effect, REVERSE when it gives the
// effect back. Only called for a nonzero stockDelta.
func pulloutMovementType(stockDelta, recordQty decimal.Decimal) string {
	if stockDelta.Mul(recordQty).IsNegative() {
		return MovementPulloutApply
	}
	return MovementPulloutReverse
}

// Validate is the gate in front of CreatePullout and CreateRestock. It
// rejects bad input before any transaction is opened; stock sufficiency is
// checked separately under the ingredient row lock.
func (in PulloutInput) Validate() error {
	if in.IngredientID <= 0 {
		return &ValidationError{Field: "ingredient_id", Reason: "must reference an ingredient"}
	}
	if in.Quantity.IsZero() {
		return &ValidationError{Field: "quantity", Reason: "must not be zero"}
	}
	if !in.allowAddition && in.Quantity.IsNegative() {
		return &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(in.Reason) == "" {
		return &ValidationError{Field: "reason", Reason: "is required"}
	}
	if in.DateOfPullout == "" {
		return &ValidationError{Field: "date_of_pullout", Reason: "is required"}
	}
	if _, err := time.Parse("2006-01-02", in.DateOfPullout); err != nil {
		return &ValidationError{Field: "date_of_pullout", Reason: "must be YYYY-MM-DD"}
	}
	if in.RequestedBy <= 0 {
		return &ValidationError{Field: "requested_by", Reason: "must reference a staff member"}
	}
	return nil
}

// validateEdit checks the editable fields against the current record.
// Quantity edits keep the record's direction: a removal stays a removal and
// a restock stays a restock. Zero is never allowed.
func validateEdit(current *Pullout, edit PulloutEdit) error {
	if edit.Quantity == nil && edit.Reason == nil && edit.DateOfPullout == nil {
		return &ValidationError{Field: "edit", Reason: "no editable fields supplied"}
	}
	if edit.Quantity != nil {
		q := *edit.Quantity
		if q.IsZero() {
			return &ValidationError{Field: "quantity", Reason: "must not be zero"}
		}
		if current.Quantity.IsPositive() && !q.IsPositive() {
			return &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
		}
		if current.Quantity.IsNegative() && !q.IsNegative() {
			return &ValidationError{Field: "quantity", Reason: "restock quantity must stay negative"}
		}
	}
	if edit.Reason != nil && strings.TrimSpace(*edit.Reason) == "" {
		return &ValidationError{Field: "reason", Reason: "is required"}
	}
	if edit.DateOfPullout != nil {
		if _, err := time.Parse("2006-01-02", *edit.DateOfPullout); err != nil {
			return &ValidationError{Field: "date_of_pullout", Reason: "must be YYYY-MM-DD"}
		}
	}
	return nil
}
