package core_test

import (
	"context"
	"errors"
	"testing"

	"cafe-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupConsignmentTest(t *testing.T) (*pgxpool.Pool, core.ConsignmentService, core.InventoryService, *core.StockLedger, *core.Ingredient) {
	t.Helper()
	pool := setupTestDB(t)

	ledger := core.NewStockLedger(pool)
	inv := core.NewInventoryService(pool, ledger)
	staff := core.NewStaffService(pool)
	docs := core.NewDocumentService(pool)
	cons := core.NewConsignmentService(pool, inv, staff, ledger, docs)

	supID := supplierID
	bread, err := inv.CreateIngredient(context.Background(), core.IngredientInput{
		Name:            "Sourdough Loaf",
		Unit:            "pcs",
		MinimumQuantity: dec("4"),
		UnitCost:        dec("60"),
		SupplierID:      &supID,
	}, dec("10"))
	if err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}
	return pool, cons, inv, ledger, bread
}

func TestConsignment_RecordAndStock(t *testing.T) {
	pool, cons, inv, ledger, bread := setupConsignmentTest(t)
	defer pool.Close()
	ctx := context.Background()

	c, err := cons.RecordConsignment(ctx, core.ConsignmentInput{
		SupplierID:   supplierID,
		DeliveryDate: "2026-08-18",
		Notes:        "standing Tuesday drop",
		ReceivedBy:   baristaID,
		Lines: []core.ConsignmentLineInput{
			{IngredientID: bread.ID, Quantity: dec("30"), UnitCost: dec("50")},
		},
	})
	if err != nil {
		t.Fatalf("RecordConsignment: %v", err)
	}
	if c.Status != core.ConsignmentDelivered {
		t.Errorf("status = %s, want DELIVERED", c.Status)
	}
	if c.Reference != "CN-2026-00001" {
		t.Errorf("reference = %s, want CN-2026-00001", c.Reference)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Lines))
	}

	// Recording alone never moves stock.
	assertOnHand(t, inv, bread.ID, "10")

	stocked, err := cons.StockConsignment(ctx, c.ID)
	if err != nil {
		t.Fatalf("StockConsignment: %v", err)
	}
	if stocked.Status != core.ConsignmentStocked {
		t.Errorf("status = %s, want STOCKED", stocked.Status)
	}
	if stocked.StockedAt == nil {
		t.Error("stocked_at must be set")
	}

	// 10 pcs at 60 blended with 30 pcs at 50: 2100 / 40 = 52.5.
	ing, err := inv.GetIngredient(ctx, bread.ID)
	if err != nil {
		t.Fatalf("GetIngredient: %v", err)
	}
	if !ing.Quantity.Equal(dec("40")) {
		t.Errorf("on hand = %s, want 40", ing.Quantity)
	}
	if !ing.UnitCost.Equal(dec("52.5")) {
		t.Errorf("unit cost = %s, want 52.5", ing.UnitCost)
	}

	lines, err := ledger.GetMovements(ctx, bread.ID, "", "")
	if err != nil {
		t.Fatalf("GetMovements: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(lines))
	}
	if lines[1].MovementType != core.MovementConsignment {
		t.Errorf("movement type = %s, want %s", lines[1].MovementType, core.MovementConsignment)
	}

	ok, sum, onHand, err := ledger.VerifyBalance(ctx, bread.ID)
	if err != nil {
		t.Fatalf("VerifyBalance: %v", err)
	}
	if !ok {
		t.Errorf("ledger sums to %s but on hand is %s", sum, onHand)
	}

	// Stocked is terminal: no second stocking, no void.
	var ite *core.InvalidTransitionError
	if _, err := cons.StockConsignment(ctx, c.ID); !errors.As(err, &ite) {
		t.Errorf("expected InvalidTransitionError on double stock, got %v", err)
	}
	if _, err := cons.VoidConsignment(ctx, c.ID, "driver took it back"); !errors.As(err, &ite) {
		t.Errorf("expected InvalidTransitionError voiding stocked consignment, got %v", err)
	}
	assertOnHand(t, inv, bread.ID, "40")
}

func TestConsignment_Void(t *testing.T) {
	pool, cons, inv, _, bread := setupConsignmentTest(t)
	defer pool.Close()
	ctx := context.Background()

	c, err := cons.RecordConsignment(ctx, core.ConsignmentInput{
		SupplierID:   supplierID,
		DeliveryDate: "2026-08-18",
		ReceivedBy:   baristaID,
		Lines: []core.ConsignmentLineInput{
			{IngredientID: bread.ID, Quantity: dec("30"), UnitCost: dec("50")},
		},
	})
	if err != nil {
		t.Fatalf("RecordConsignment: %v", err)
	}

	var ve *core.ValidationError
	if _, err := cons.VoidConsignment(ctx, c.ID, "  "); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank reason, got %v", err)
	}

	voided, err := cons.VoidConsignment(ctx, c.ID, "mold on delivery")
	if err != nil {
		t.Fatalf("VoidConsignment: %v", err)
	}
	if voided.Status != core.ConsignmentVoid {
		t.Errorf("status = %s, want VOID", voided.Status)
	}
	if voided.VoidedReason == nil || *voided.VoidedReason != "mold on delivery" {
		t.Errorf("voided reason = %v", voided.VoidedReason)
	}
	assertOnHand(t, inv, bread.ID, "10")

	// A voided consignment can never be stocked.
	var ite *core.InvalidTransitionError
	if _, err := cons.StockConsignment(ctx, c.ID); !errors.As(err, &ite) {
		t.Errorf("expected InvalidTransitionError stocking voided consignment, got %v", err)
	}
}

func TestConsignment_ReferencesAreSequential(t *testing.T) {
	pool, cons, _, _, bread := setupConsignmentTest(t)
	defer pool.Close()
	ctx := context.Background()

	mk := func() *core.Consignment {
		c, err := cons.RecordConsignment(ctx, core.ConsignmentInput{
			SupplierID:   supplierID,
			DeliveryDate: "2026-08-18",
			ReceivedBy:   baristaID,
			Lines: []core.ConsignmentLineInput{
				{IngredientID: bread.ID, Quantity: dec("5"), UnitCost: dec("50")},
			},
		})
		if err != nil {
			t.Fatalf("RecordConsignment: %v", err)
		}
		return c
	}

	if ref := mk().Reference; ref != "CN-2026-00001" {
		t.Errorf("first reference = %s, want CN-2026-00001", ref)
	}
	if ref := mk().Reference; ref != "CN-2026-00002" {
		t.Errorf("second reference = %s, want CN-2026-00002", ref)
	}

	delivered, err := cons.ListConsignments(ctx, core.ConsignmentDelivered)
	if err != nil {
		t.Fatalf("ListConsignments: %v", err)
	}
	if len(delivered) != 2 {
		t.Errorf("expected 2 delivered consignments, got %d", len(delivered))
	}
}

func TestConsignment_RecordValidation(t *testing.T) {
	pool, cons, inv, _, bread := setupConsignmentTest(t)
	defer pool.Close()
	ctx := context.Background()

	base := core.ConsignmentInput{
		SupplierID:   supplierID,
		DeliveryDate: "2026-08-18",
		ReceivedBy:   baristaID,
		Lines: []core.ConsignmentLineInput{
			{IngredientID: bread.ID, Quantity: dec("5"), UnitCost: dec("50")},
		},
	}

	var ve *core.ValidationError

	in := base
	in.Lines = nil
	if _, err := cons.RecordConsignment(ctx, in); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for missing lines, got %v", err)
	}

	in = base
	in.DeliveryDate = "18/08/2026"
	if _, err := cons.RecordConsignment(ctx, in); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for malformed date, got %v", err)
	}

	in = base
	in.Lines = []core.ConsignmentLineInput{{IngredientID: bread.ID, Quantity: dec("0"), UnitCost: dec("50")}}
	if _, err := cons.RecordConsignment(ctx, in); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for zero quantity, got %v", err)
	}

	// Deliveries against a deactivated ingredient are refused.
	if err := inv.DeactivateIngredient(ctx, bread.ID); err != nil {
		t.Fatalf("DeactivateIngredient: %v", err)
	}
	if _, err := cons.RecordConsignment(ctx, base); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for inactive ingredient, got %v", err)
	}

	// A failed recording must not have burnt a reference.
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM document_sequences").Scan(&count); err != nil {
		t.Fatalf("count sequences: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no sequence rows after failed recordings, got %d", count)
	}
}
