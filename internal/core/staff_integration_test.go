package core_test

import (
	"context"
	"errors"
	"testing"

	"cafe-ledger/internal/core"
)

func TestStaff_CreateAndLookup(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	staff := core.NewStaffService(pool)
	ctx := context.Background()

	created, err := staff.CreateStaff(ctx, core.StaffInput{
		FullName: "Ramil Bautista",
		Role:     core.RoleCook,
		Phone:    "0917-555-0188",
	})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if created.Role != core.RoleCook {
		t.Errorf("role = %s, want cook", created.Role)
	}
	if !created.IsActive {
		t.Error("new staff member must be active")
	}
	if created.CanApprove() {
		t.Error("a cook must not hold approval rights")
	}

	byName, err := staff.GetStaffByName(ctx, "ramil bautista")
	if err != nil {
		t.Fatalf("GetStaffByName: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("lookup returned %d, want %d", byName.ID, created.ID)
	}
}

func TestStaff_RoleValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	staff := core.NewStaffService(pool)
	ctx := context.Background()

	var ve *core.ValidationError
	if _, err := staff.CreateStaff(ctx, core.StaffInput{FullName: "X", Role: "janitor"}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for unknown role, got %v", err)
	}
	if _, err := staff.CreateStaff(ctx, core.StaffInput{FullName: "  ", Role: core.RoleBarista}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for blank name, got %v", err)
	}
}

func TestStaff_ApprovalRightsByRole(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	staff := core.NewStaffService(pool)
	ctx := context.Background()

	cases := []struct {
		role string
		want bool
	}{
		{core.RoleOwner, true},
		{core.RoleManager, true},
		{core.RoleBarista, false},
		{core.RoleCook, false},
		{core.RoleCashier, false},
	}
	for _, tc := range cases {
		st, err := staff.CreateStaff(ctx, core.StaffInput{FullName: "Role Probe " + tc.role, Role: tc.role})
		if err != nil {
			t.Fatalf("CreateStaff %s: %v", tc.role, err)
		}
		if st.CanApprove() != tc.want {
			t.Errorf("%s: CanApprove() = %v, want %v", tc.role, st.CanApprove(), tc.want)
		}
	}
}

func TestStaff_UpdateAndDeactivate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	staff := core.NewStaffService(pool)
	ctx := context.Background()

	st, err := staff.CreateStaff(ctx, core.StaffInput{FullName: "Grace Lim", Role: core.RoleCashier})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}

	// Promotion changes approval rights immediately.
	promoted, err := staff.UpdateStaff(ctx, st.ID, core.StaffInput{FullName: "Grace Lim", Role: core.RoleManager})
	if err != nil {
		t.Fatalf("UpdateStaff: %v", err)
	}
	if !promoted.CanApprove() {
		t.Error("promoted manager must hold approval rights")
	}

	if err := staff.DeactivateStaff(ctx, st.ID); err != nil {
		t.Fatalf("DeactivateStaff: %v", err)
	}

	// Gone from the active roster and from name lookup, still there by ID.
	active, err := staff.ListStaff(ctx, false)
	if err != nil {
		t.Fatalf("ListStaff: %v", err)
	}
	for _, m := range active {
		if m.ID == st.ID {
			t.Error("deactivated member still in active roster")
		}
	}
	var nfe *core.NotFoundError
	if _, err := staff.GetStaffByName(ctx, "Grace Lim"); !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError by name, got %v", err)
	}
	all, err := staff.ListStaff(ctx, true)
	if err != nil {
		t.Fatalf("ListStaff all: %v", err)
	}
	found := false
	for _, m := range all {
		if m.ID == st.ID && !m.IsActive {
			found = true
		}
	}
	if !found {
		t.Error("deactivated member missing from full roster")
	}
}

func TestStaff_InactiveCannotRequestOrApprove(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	inv, pullouts, _ := newStockServices(pool)
	staff := core.NewStaffService(pool)
	ctx := context.Background()

	ing := seedIngredient(t, inv, "Condensed Milk", "8")

	former, err := staff.CreateStaff(ctx, core.StaffInput{FullName: "Dennis Yu", Role: core.RoleManager})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}

	p, err := pullouts.CreatePullout(ctx, core.PulloutInput{
		IngredientID:  ing.ID,
		Quantity:      dec("2"),
		Reason:        "bulging can",
		DateOfPullout: "2026-08-20",
		RequestedBy:   baristaID,
	})
	if err != nil {
		t.Fatalf("CreatePullout: %v", err)
	}

	if err := staff.DeactivateStaff(ctx, former.ID); err != nil {
		t.Fatalf("DeactivateStaff: %v", err)
	}

	// Leaving the roster ends both requesting and approving.
	var ve *core.ValidationError
	if _, err := pullouts.ApprovePullout(ctx, p.ID, former.ID); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for inactive approver, got %v", err)
	}
	_, err = pullouts.CreatePullout(ctx, core.PulloutInput{
		IngredientID:  ing.ID,
		Quantity:      dec("1"),
		Reason:        "bulging can",
		DateOfPullout: "2026-08-20",
		RequestedBy:   former.ID,
	})
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for inactive requester, got %v", err)
	}
}
