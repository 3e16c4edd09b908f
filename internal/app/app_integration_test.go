package app_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"cafe-ledger/internal/app"
	"cafe-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// setupApp wires the full service graph the way the binaries do and returns
// the facade every adapter talks to.
func setupApp(t *testing.T) (*pgxpool.Pool, app.ApplicationService) {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_movements, pullouts, consignment_lines, consignments,
			purchase_order_lines, purchase_orders, ingredients, suppliers, staff,
			document_sequences RESTART IDENTITY CASCADE;

		INSERT INTO staff (full_name, role, phone) VALUES
		('Joanna Reyes', 'manager', NULL),
		('Paolo Santos', 'barista', NULL);

		INSERT INTO suppliers (code, name, lead_time_days) VALUES
		('SUP-T01', 'Test Beans Trading', 3);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	ledger := core.NewStockLedger(pool)
	inventory := core.NewInventoryService(pool, ledger)
	staff := core.NewStaffService(pool)
	suppliers := core.NewSupplierService(pool)
	documents := core.NewDocumentService(pool)
	pullouts := core.NewPulloutService(pool, inventory, staff, ledger)
	orders := core.NewPurchaseOrderService(pool, inventory, staff, ledger, documents)
	consignments := core.NewConsignmentService(pool, inventory, staff, ledger, documents)
	reporting := core.NewReportingService(pool, ledger)

	return pool, app.NewAppService(inventory, pullouts, staff, suppliers, orders, consignments, reporting)
}

func TestApp_ResolvesReferencesByIDOrName(t *testing.T) {
	pool, svc := setupApp(t)
	defer pool.Close()
	ctx := context.Background()

	// Supplier referenced by code, not ID.
	created, err := svc.CreateIngredient(ctx, app.CreateIngredientRequest{
		Name:            "Arabica Beans",
		Unit:            "kg",
		MinimumQuantity: dec("5"),
		UnitCost:        dec("620"),
		SupplierRef:     "SUP-T01",
		OpeningQty:      dec("20"),
	})
	if err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}
	if created.Ingredient.SupplierID == nil {
		t.Fatal("supplier reference not resolved")
	}

	// Ingredient and staff referenced by name; approver by name too.
	res, err := svc.CreatePullout(ctx, app.CreatePulloutRequest{
		IngredientRef: "arabica beans",
		Quantity:      dec("8"),
		Reason:        "weevil contamination",
		DateOfPullout: "2026-08-20",
		RequestedBy:   "Paolo Santos",
		ApprovedBy:    "Joanna Reyes",
	})
	if err != nil {
		t.Fatalf("CreatePullout: %v", err)
	}
	if res.Pullout.Status != core.PulloutApproved {
		t.Errorf("status = %s, want approved", res.Pullout.Status)
	}
	if res.Pullout.RequestedByName != "Paolo Santos" {
		t.Errorf("requested by = %s", res.Pullout.RequestedByName)
	}

	ing, err := svc.GetIngredient(ctx, "Arabica Beans")
	if err != nil {
		t.Fatalf("GetIngredient by name: %v", err)
	}
	if !ing.Ingredient.Quantity.Equal(dec("12")) {
		t.Errorf("on hand = %s, want 12", ing.Ingredient.Quantity)
	}

	// The same lookup works by numeric ID rendered as a string.
	byID, err := svc.GetIngredient(ctx, "1")
	if err != nil {
		t.Fatalf("GetIngredient by id: %v", err)
	}
	if byID.Ingredient.Name != "Arabica Beans" {
		t.Errorf("lookup by id returned %s", byID.Ingredient.Name)
	}

	// Unknown names surface as not-found, not as silent zero results.
	var nfe *core.NotFoundError
	if _, err := svc.GetIngredient(ctx, "robusta beans"); !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestApp_LowStockWarningsOnMutations(t *testing.T) {
	pool, svc := setupApp(t)
	defer pool.Close()
	ctx := context.Background()

	if _, err := svc.CreateIngredient(ctx, app.CreateIngredientRequest{
		Name:            "Matcha Powder",
		Unit:            "kg",
		MinimumQuantity: dec("1"),
		UnitCost:        dec("2200"),
		OpeningQty:      dec("1.5"),
	}); err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}

	// The approval drops matcha to 0.7 kg, under its 1 kg minimum.
	res, err := svc.CreatePullout(ctx, app.CreatePulloutRequest{
		IngredientRef: "Matcha Powder",
		Quantity:      dec("0.8"),
		Reason:        "clumped from humidity",
		DateOfPullout: "2026-08-20",
		RequestedBy:   "Paolo Santos",
		ApprovedBy:    "Joanna Reyes",
	})
	if err != nil {
		t.Fatalf("CreatePullout: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(res.Warnings), res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], "below minimum") {
		t.Errorf("unexpected warning text: %s", res.Warnings[0])
	}

	// Restocking back above the minimum clears the warning.
	restocked, err := svc.RestockIngredient(ctx, app.RestockRequest{
		IngredientRef: "Matcha Powder",
		Quantity:      dec("1"),
		Reason:        "emergency top-up from sister branch",
		RequestedBy:   "Paolo Santos",
		ApprovedBy:    "Joanna Reyes",
	})
	if err != nil {
		t.Fatalf("RestockIngredient: %v", err)
	}
	if len(restocked.Warnings) != 0 {
		t.Errorf("expected no warnings after restock, got %v", restocked.Warnings)
	}

	ing, err := svc.GetIngredient(ctx, "Matcha Powder")
	if err != nil {
		t.Fatalf("GetIngredient: %v", err)
	}
	if !ing.Ingredient.Quantity.Equal(dec("1.7")) {
		t.Errorf("on hand = %s, want 1.7", ing.Ingredient.Quantity)
	}
}

func TestApp_ListPulloutsRejectsUnknownStatus(t *testing.T) {
	pool, svc := setupApp(t)
	defer pool.Close()

	_, err := svc.ListPullouts(context.Background(), app.PulloutListRequest{Status: "maybe"})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestApp_MovementHistoryByName(t *testing.T) {
	pool, svc := setupApp(t)
	defer pool.Close()
	ctx := context.Background()

	if _, err := svc.CreateIngredient(ctx, app.CreateIngredientRequest{
		Name:       "Whole Milk",
		Unit:       "L",
		OpeningQty: dec("30"),
	}); err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}
	if _, err := svc.CreatePullout(ctx, app.CreatePulloutRequest{
		IngredientRef: "Whole Milk",
		Quantity:      dec("6"),
		Reason:        "spoiled in warm fridge",
		DateOfPullout: "2026-08-20",
		RequestedBy:   "Paolo Santos",
		ApprovedBy:    "Joanna Reyes",
	}); err != nil {
		t.Fatalf("CreatePullout: %v", err)
	}

	history, err := svc.GetMovementHistory(ctx, "whole milk", "", "")
	if err != nil {
		t.Fatalf("GetMovementHistory: %v", err)
	}
	if history.IngredientName != "Whole Milk" {
		t.Errorf("resolved ingredient = %s", history.IngredientName)
	}
	if len(history.Lines) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(history.Lines))
	}
	if !history.Lines[1].RunningOnHand.Equal(dec("24")) {
		t.Errorf("running balance = %s, want 24", history.Lines[1].RunningOnHand)
	}
}

func TestApp_PurchasingEndToEnd(t *testing.T) {
	pool, svc := setupApp(t)
	defer pool.Close()
	ctx := context.Background()

	if _, err := svc.CreateIngredient(ctx, app.CreateIngredientRequest{
		Name:            "Robusta Beans",
		Unit:            "kg",
		MinimumQuantity: dec("4"),
		UnitCost:        dec("380"),
		SupplierRef:     "SUP-T01",
		OpeningQty:      dec("2"),
	}); err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}

	created, err := svc.CreatePurchaseOrder(ctx, app.CreatePORequest{
		SupplierRef: "SUP-T01",
		OrderDate:   "2026-08-10",
		CreatedBy:   "Joanna Reyes",
		Lines: []app.POLineRequest{
			{IngredientRef: "Robusta Beans", Quantity: dec("10"), UnitCost: dec("360")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}

	approved, err := svc.ApprovePurchaseOrder(ctx, created.Order.ID, "Joanna Reyes")
	if err != nil {
		t.Fatalf("ApprovePurchaseOrder: %v", err)
	}
	if approved.Order.PONumber == nil || *approved.Order.PONumber != "PO-2026-00001" {
		t.Errorf("po number = %v, want PO-2026-00001", approved.Order.PONumber)
	}

	// Receiving only part of the line keeps robusta under its minimum, so the
	// receipt response warns.
	received, err := svc.ReceivePurchaseOrder(ctx, app.ReceivePORequest{
		POID:       created.Order.ID,
		ReceivedBy: "Paolo Santos",
		Lines: []app.ReceiptLineRequest{
			{POLineID: approved.Order.Lines[0].ID, QtyReceived: dec("1")},
		},
	})
	if err != nil {
		t.Fatalf("ReceivePurchaseOrder: %v", err)
	}
	if received.Order.Status != core.POPartiallyReceived {
		t.Errorf("status = %s, want PARTIALLY_RECEIVED", received.Order.Status)
	}
	if len(received.Warnings) != 1 {
		t.Errorf("expected 1 low stock warning, got %v", received.Warnings)
	}

	// The rest of the delivery lifts it clear; no warning this time.
	final, err := svc.ReceivePurchaseOrder(ctx, app.ReceivePORequest{
		POID:       created.Order.ID,
		ReceivedBy: "Paolo Santos",
		Lines: []app.ReceiptLineRequest{
			{POLineID: approved.Order.Lines[0].ID, QtyReceived: dec("9")},
		},
	})
	if err != nil {
		t.Fatalf("ReceivePurchaseOrder rest: %v", err)
	}
	if final.Order.Status != core.POReceived {
		t.Errorf("status = %s, want RECEIVED", final.Order.Status)
	}
	if len(final.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", final.Warnings)
	}
}
