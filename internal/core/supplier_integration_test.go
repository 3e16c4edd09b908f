package core_test

import (
	"context"
	"errors"
	"testing"

	"cafe-ledger/internal/core"
)

func TestSupplier_CreateAndLookup(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	suppliers := core.NewSupplierService(pool)
	ctx := context.Background()

	created, err := suppliers.CreateSupplier(ctx, core.SupplierInput{
		Code:          "sup-010",
		Name:          "Monte Verde Coffee Traders",
		ContactPerson: "Elena Cruz",
		Email:         "orders@monteverde.ph",
		LeadTimeDays:  5,
	})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	// Codes are normalized to upper case on the way in.
	if created.Code != "SUP-010" {
		t.Errorf("code = %s, want SUP-010", created.Code)
	}
	if created.ContactPerson == nil || *created.ContactPerson != "Elena Cruz" {
		t.Errorf("contact person = %v", created.ContactPerson)
	}

	byCode, err := suppliers.GetSupplierByCode(ctx, "sup-010")
	if err != nil {
		t.Fatalf("GetSupplierByCode: %v", err)
	}
	if byCode.ID != created.ID {
		t.Errorf("lookup returned %d, want %d", byCode.ID, created.ID)
	}

	var ve *core.ValidationError
	if _, err := suppliers.CreateSupplier(ctx, core.SupplierInput{Name: "No Code"}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for missing code, got %v", err)
	}
	if _, err := suppliers.CreateSupplier(ctx, core.SupplierInput{Code: "X", Name: "Y", LeadTimeDays: -1}); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for negative lead time, got %v", err)
	}

	// Supplier codes are unique.
	if _, err := suppliers.CreateSupplier(ctx, core.SupplierInput{Code: "SUP-010", Name: "Duplicate"}); err == nil {
		t.Error("expected error for duplicate code, got nil")
	}
}

func TestSupplier_Update(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	suppliers := core.NewSupplierService(pool)
	ctx := context.Background()

	sp, err := suppliers.GetSupplier(ctx, supplierID)
	if err != nil {
		t.Fatalf("GetSupplier: %v", err)
	}

	updated, err := suppliers.UpdateSupplier(ctx, sp.ID, core.SupplierInput{
		Code:         sp.Code,
		Name:         sp.Name,
		Phone:        "0917-555-0100",
		LeadTimeDays: 7,
	})
	if err != nil {
		t.Fatalf("UpdateSupplier: %v", err)
	}
	if updated.LeadTimeDays != 7 {
		t.Errorf("lead time = %d, want 7", updated.LeadTimeDays)
	}
	if updated.Phone == nil || *updated.Phone != "0917-555-0100" {
		t.Errorf("phone = %v", updated.Phone)
	}
}

func TestSupplier_DeactivateBlocksNewOrders(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	inv := core.NewInventoryService(pool, ledger)
	staff := core.NewStaffService(pool)
	docs := core.NewDocumentService(pool)
	pos := core.NewPurchaseOrderService(pool, inv, staff, ledger, docs)
	suppliers := core.NewSupplierService(pool)
	ctx := context.Background()

	ing := seedIngredient(t, inv, "Robusta Beans", "12")

	if err := suppliers.DeactivateSupplier(ctx, supplierID); err != nil {
		t.Fatalf("DeactivateSupplier: %v", err)
	}

	listed, err := suppliers.GetSuppliers(ctx, false)
	if err != nil {
		t.Fatalf("GetSuppliers: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected empty active supplier list, got %d", len(listed))
	}

	_, err = pos.CreatePO(ctx, core.POInput{
		SupplierID: supplierID,
		OrderDate:  "2026-08-10",
		CreatedBy:  managerID,
		Lines:      []core.POLineInput{{IngredientID: ing.ID, Quantity: dec("5"), UnitCost: dec("380")}},
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for inactive supplier, got %v", err)
	}
}
