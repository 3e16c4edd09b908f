package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSignedEffect(t *testing.T) {
	qty := dec("8")
	tests := []struct {
		status PulloutStatus
		want   string
	}{
		{PulloutPending, "0"},
		{PulloutApproved, "8"},
		{PulloutRejected, "0"},
		{pulloutDeleted, "0"},
	}
	for _, tt := range tests {
		got := signedEffect(tt.status, qty)
		if got.String() != tt.want {
			t.Errorf("signedEffect(%s, 8) = %s, want %s", tt.status, got, tt.want)
		}
	}

	// Restock records carry a negated quantity; the effect keeps its sign.
	if got := signedEffect(PulloutApproved, dec("-5")); got.String() != "-5" {
		t.Errorf("signedEffect(approved, -5) = %s, want -5", got)
	}
}

func TestReconcileDiff(t *testing.T) {
	tests := []struct {
		name        string
		target      PulloutStatus
		quantity    string
		applied     string
		wantApplied string
		wantDelta   string
	}{
		{"create pending", PulloutPending, "8", "0", "0", "0"},
		{"approve pending", PulloutApproved, "8", "0", "8", "-8"},
		{"approve replay", PulloutApproved, "8", "8", "8", "0"},
		{"reject pending", PulloutRejected, "8", "0", "0", "0"},
		{"reject approved", PulloutRejected, "8", "8", "0", "8"},
		{"shrink approved", PulloutApproved, "3", "8", "3", "5"},
		{"grow approved", PulloutApproved, "10", "8", "10", "-2"},
		{"delete approved", pulloutDeleted, "8", "8", "0", "8"},
		{"delete pending", pulloutDeleted, "8", "0", "0", "0"},
		{"approve restock", PulloutApproved, "-5", "0", "-5", "5"},
		{"delete approved restock", pulloutDeleted, "-5", "-5", "0", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newApplied, stockDelta := reconcileDiff(tt.target, dec(tt.quantity), dec(tt.applied))
			if newApplied.String() != tt.wantApplied {
				t.Errorf("newApplied = %s, want %s", newApplied, tt.wantApplied)
			}
			if stockDelta.String() != tt.wantDelta {
				t.Errorf("stockDelta = %s, want %s", stockDelta, tt.wantDelta)
			}
		})
	}
}

// TestReconcileDiff_Lifecycle runs one record through its whole life and
// checks the on-hand arithmetic at each step. Starting from 20 on hand:
// a pending request holds nothing, approval removes 8, shrinking the
// approved quantity to 3 gives 5 back, deletion returns the rest.
func TestReconcileDiff_Lifecycle(t *testing.T) {
	onHand := dec("20")
	applied := decimal.Zero
	qty := dec("8")

	step := func(name string, target PulloutStatus, quantity decimal.Decimal, wantOnHand string) {
		t.Helper()
		newApplied, stockDelta := reconcileDiff(target, quantity, applied)
		onHand = onHand.Add(stockDelta)
		applied = newApplied
		if onHand.String() != wantOnHand {
			t.Fatalf("%s: on hand = %s, want %s", name, onHand, wantOnHand)
		}
	}

	step("create pending", PulloutPending, qty, "20")
	step("approve", PulloutApproved, qty, "12")

	// A second removal of 15 must not fit: the full effect exceeds stock.
	prospective := signedEffect(PulloutApproved, dec("15"))
	if !onHand.Sub(prospective).IsNegative() {
		t.Fatalf("expected 15 to exceed available %s", onHand)
	}

	qty = dec("3")
	step("edit to 3", PulloutApproved, qty, "17")
	step("delete", pulloutDeleted, qty, "20")

	if !applied.IsZero() {
		t.Errorf("applied delta after delete = %s, want 0", applied)
	}
}

func TestCheckPulloutTransition(t *testing.T) {
	tests := []struct {
		from    PulloutStatus
		action  string
		wantErr bool
	}{
		{PulloutPending, pulloutActionApprove, false},
		{PulloutApproved, pulloutActionApprove, true},
		{PulloutRejected, pulloutActionApprove, true},
		{PulloutPending, pulloutActionReject, false},
		{PulloutApproved, pulloutActionReject, false},
		{PulloutRejected, pulloutActionReject, true},
		{PulloutPending, pulloutActionEdit, false},
		{PulloutApproved, pulloutActionEdit, false},
		{PulloutRejected, pulloutActionEdit, true},
		{PulloutPending, pulloutActionDelete, false},
		{PulloutApproved, pulloutActionDelete, false},
		{PulloutRejected, pulloutActionDelete, false},
	}

	for _, tt := range tests {
		err := checkPulloutTransition(tt.from, tt.action)
		if tt.wantErr && err == nil {
			t.Errorf("%s from %s: expected error, got nil", tt.action, tt.from)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s from %s: unexpected error: %v", tt.action, tt.from, err)
		}
		if tt.wantErr {
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Errorf("%s from %s: expected InvalidTransitionError, got %T", tt.action, tt.from, err)
			}
		}
	}
}

func TestPulloutMovementType(t *testing.T) {
	tests := []struct {
		name      string
		delta     string
		recordQty string
		want      string
	}{
		{"removal applied", "-8", "8", MovementPulloutApply},
		{"removal reversed", "8", "8", MovementPulloutReverse},
		{"restock applied", "5", "-5", MovementPulloutApply},
		{"restock reversed", "-5", "-5", MovementPulloutReverse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pulloutMovementType(dec(tt.delta), dec(tt.recordQty)); got != tt.want {
				t.Errorf("pulloutMovementType(%s, %s) = %s, want %s", tt.delta, tt.recordQty, got, tt.want)
			}
		})
	}
}

func TestPulloutInput_Validate(t *testing.T) {
	valid := PulloutInput{
		IngredientID:  1,
		Quantity:      dec("2.5"),
		Reason:        "spoiled batch",
		DateOfPullout: "2026-08-20",
		RequestedBy:   1,
	}

	tests := []struct {
		name    string
		mutate  func(*PulloutInput)
		wantErr bool
	}{
		{"valid", func(in *PulloutInput) {}, false},
		{"missing ingredient", func(in *PulloutInput) { in.IngredientID = 0 }, true},
		{"zero quantity", func(in *PulloutInput) { in.Quantity = decimal.Zero }, true},
		{"negative quantity", func(in *PulloutInput) { in.Quantity = dec("-2") }, true},
		{"negative allowed on restock path", func(in *PulloutInput) {
			in.Quantity = dec("-2")
			in.allowAddition = true
		}, false},
		{"blank reason", func(in *PulloutInput) { in.Reason = "   " }, true},
		{"missing date", func(in *PulloutInput) { in.DateOfPullout = "" }, true},
		{"malformed date", func(in *PulloutInput) { in.DateOfPullout = "20/08/2026" }, true},
		{"missing requester", func(in *PulloutInput) { in.RequestedBy = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateEdit(t *testing.T) {
	removal := &Pullout{Quantity: dec("8")}
	restock := &Pullout{Quantity: dec("-5")}

	qty := func(s string) *decimal.Decimal {
		d := dec(s)
		return &d
	}
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		current *Pullout
		edit    PulloutEdit
		wantErr bool
	}{
		{"no fields", removal, PulloutEdit{}, true},
		{"quantity only", removal, PulloutEdit{Quantity: qty("3")}, false},
		{"reason only", removal, PulloutEdit{Reason: str("recount")}, false},
		{"date only", removal, PulloutEdit{DateOfPullout: str("2026-08-21")}, false},
		{"zero quantity", removal, PulloutEdit{Quantity: qty("0")}, true},
		{"removal flipped negative", removal, PulloutEdit{Quantity: qty("-3")}, true},
		{"restock stays negative", restock, PulloutEdit{Quantity: qty("-2")}, false},
		{"restock flipped positive", restock, PulloutEdit{Quantity: qty("2")}, true},
		{"blank reason", removal, PulloutEdit{Reason: str("  ")}, true},
		{"malformed date", removal, PulloutEdit{DateOfPullout: str("yesterday")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEdit(tt.current, tt.edit)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
