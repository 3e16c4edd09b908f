package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cafe-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupPOTest seeds the purchasing fixtures: beans carry opening stock at a
// known cost so receipts exercise the weighted average, milk starts empty.
func setupPOTest(t *testing.T) (*pgxpool.Pool, core.PurchaseOrderService, core.InventoryService, *core.StockLedger, *core.Ingredient, *core.Ingredient) {
	t.Helper()
	pool := setupTestDB(t)

	ledger := core.NewStockLedger(pool)
	inv := core.NewInventoryService(pool, ledger)
	staff := core.NewStaffService(pool)
	docs := core.NewDocumentService(pool)
	pos := core.NewPurchaseOrderService(pool, inv, staff, ledger, docs)

	ctx := context.Background()
	supID := supplierID
	beans, err := inv.CreateIngredient(ctx, core.IngredientInput{
		Name:            "Arabica Beans",
		Unit:            "kg",
		MinimumQuantity: dec("5"),
		UnitCost:        dec("620"),
		SupplierID:      &supID,
	}, dec("20"))
	if err != nil {
		t.Fatalf("CreateIngredient beans: %v", err)
	}
	milk, err := inv.CreateIngredient(ctx, core.IngredientInput{
		Name:            "Whole Milk",
		Unit:            "L",
		MinimumQuantity: dec("10"),
		SupplierID:      &supID,
	}, dec("0"))
	if err != nil {
		t.Fatalf("CreateIngredient milk: %v", err)
	}
	return pool, pos, inv, ledger, beans, milk
}

func findPOLine(t *testing.T, po *core.PurchaseOrder, ingredientID int) core.PurchaseOrderLine {
	t.Helper()
	for _, l := range po.Lines {
		if l.IngredientID == ingredientID {
			return l
		}
	}
	t.Fatalf("purchase order %d has no line for ingredient %d", po.ID, ingredientID)
	return core.PurchaseOrderLine{}
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	pool, pos, inv, ledger, beans, milk := setupPOTest(t)
	defer pool.Close()
	ctx := context.Background()

	var poID int

	t.Run("CreatePO_DraftWithTotals", func(t *testing.T) {
		po, err := pos.CreatePO(ctx, core.POInput{
			SupplierID: supplierID,
			OrderDate:  "2026-08-10",
			CreatedBy:  managerID,
			Notes:      "weekly replenishment",
			Lines: []core.POLineInput{
				{IngredientID: beans.ID, Quantity: dec("10"), UnitCost: dec("600")},
				{IngredientID: milk.ID, Quantity: dec("24"), UnitCost: dec("95")},
			},
		})
		if err != nil {
			t.Fatalf("CreatePO: %v", err)
		}
		if po.Status != core.PODraft {
			t.Errorf("status = %s, want DRAFT", po.Status)
		}
		if po.PONumber != nil {
			t.Errorf("draft carries number %s, want none", *po.PONumber)
		}
		if !po.TotalCost.Equal(dec("8280")) {
			t.Errorf("total cost = %s, want 8280", po.TotalCost)
		}
		if len(po.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(po.Lines))
		}
		bl := findPOLine(t, po, beans.ID)
		if !bl.LineTotal.Equal(dec("6000")) {
			t.Errorf("beans line total = %s, want 6000", bl.LineTotal)
		}
		if !bl.QtyReceived.IsZero() {
			t.Errorf("fresh line has qty received %s, want 0", bl.QtyReceived)
		}
		poID = po.ID
	})

	t.Run("ReceivePO_Draft_Fails", func(t *testing.T) {
		po, err := pos.GetPO(ctx, poID)
		if err != nil {
			t.Fatalf("GetPO: %v", err)
		}
		_, err = pos.ReceivePO(ctx, poID, baristaID, []core.ReceiptLine{
			{POLineID: po.Lines[0].ID, QtyReceived: dec("1")},
		})
		var ite *core.InvalidTransitionError
		if !errors.As(err, &ite) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("ApprovePO_AssignsNumber", func(t *testing.T) {
		po, err := pos.ApprovePO(ctx, poID, managerID)
		if err != nil {
			t.Fatalf("ApprovePO: %v", err)
		}
		if po.Status != core.POApproved {
			t.Errorf("status = %s, want APPROVED", po.Status)
		}
		if po.PONumber == nil || *po.PONumber != "PO-2026-00001" {
			t.Errorf("po number = %v, want PO-2026-00001", po.PONumber)
		}
		if po.ApprovedBy == nil || *po.ApprovedBy != managerID {
			t.Errorf("approved_by = %v, want %d", po.ApprovedBy, managerID)
		}

		// Re-approving an approved order is a no-op, not an error, and must
		// not consume another number.
		again, err := pos.ApprovePO(ctx, poID, managerID)
		if err != nil {
			t.Fatalf("re-approve: %v", err)
		}
		if *again.PONumber != "PO-2026-00001" {
			t.Errorf("re-approve changed number to %s", *again.PONumber)
		}
	})

	t.Run("CancelPO_Approved_Fails", func(t *testing.T) {
		_, err := pos.CancelPO(ctx, poID)
		var ite *core.InvalidTransitionError
		if !errors.As(err, &ite) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("ReceivePO_Partial", func(t *testing.T) {
		po, err := pos.GetPO(ctx, poID)
		if err != nil {
			t.Fatalf("GetPO: %v", err)
		}
		bl := findPOLine(t, po, beans.ID)

		po, err = pos.ReceivePO(ctx, poID, baristaID, []core.ReceiptLine{
			{POLineID: bl.ID, QtyReceived: dec("6")},
		})
		if err != nil {
			t.Fatalf("ReceivePO: %v", err)
		}
		if po.Status != core.POPartiallyReceived {
			t.Errorf("status = %s, want PARTIALLY_RECEIVED", po.Status)
		}
		if got := findPOLine(t, po, beans.ID).QtyReceived; !got.Equal(dec("6")) {
			t.Errorf("qty received = %s, want 6", got)
		}

		// 20 kg at 620 blended with 6 kg at 600: 16000 / 26 ≈ 615.3846.
		ing, err := inv.GetIngredient(ctx, beans.ID)
		if err != nil {
			t.Fatalf("GetIngredient: %v", err)
		}
		if !ing.Quantity.Equal(dec("26")) {
			t.Errorf("beans on hand = %s, want 26", ing.Quantity)
		}
		if !ing.UnitCost.Equal(dec("615.3846")) {
			t.Errorf("beans unit cost = %s, want 615.3846", ing.UnitCost)
		}
	})

	t.Run("ReceivePO_OverOutstanding_Fails", func(t *testing.T) {
		po, err := pos.GetPO(ctx, poID)
		if err != nil {
			t.Fatalf("GetPO: %v", err)
		}
		bl := findPOLine(t, po, beans.ID)

		// 6 of 10 already in; 5 more would overshoot.
		_, err = pos.ReceivePO(ctx, poID, baristaID, []core.ReceiptLine{
			{POLineID: bl.ID, QtyReceived: dec("5")},
		})
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(ve.Reason, "exceeds outstanding") {
			t.Errorf("unexpected reason: %s", ve.Reason)
		}

		// The rejected batch must not have touched stock.
		assertOnHand(t, inv, beans.ID, "26")
	})

	t.Run("ReceivePO_Rest_CompletesOrder", func(t *testing.T) {
		po, err := pos.GetPO(ctx, poID)
		if err != nil {
			t.Fatalf("GetPO: %v", err)
		}
		bl := findPOLine(t, po, beans.ID)
		ml := findPOLine(t, po, milk.ID)

		po, err = pos.ReceivePO(ctx, poID, baristaID, []core.ReceiptLine{
			{POLineID: bl.ID, QtyReceived: dec("4")},
			{POLineID: ml.ID, QtyReceived: dec("24")},
		})
		if err != nil {
			t.Fatalf("ReceivePO: %v", err)
		}
		if po.Status != core.POReceived {
			t.Errorf("status = %s, want RECEIVED", po.Status)
		}
		if po.ReceivedAt == nil {
			t.Error("received_at must be set")
		}

		assertOnHand(t, inv, beans.ID, "30")
		// Milk had no stock and no cost, so the receipt cost sticks as-is.
		milkNow, err := inv.GetIngredient(ctx, milk.ID)
		if err != nil {
			t.Fatalf("GetIngredient: %v", err)
		}
		if !milkNow.Quantity.Equal(dec("24")) {
			t.Errorf("milk on hand = %s, want 24", milkNow.Quantity)
		}
		if !milkNow.UnitCost.Equal(dec("95")) {
			t.Errorf("milk unit cost = %s, want 95", milkNow.UnitCost)
		}
	})

	t.Run("LedgerInBalance", func(t *testing.T) {
		for _, ing := range []*core.Ingredient{beans, milk} {
			ok, sum, onHand, err := ledger.VerifyBalance(ctx, ing.ID)
			if err != nil {
				t.Fatalf("VerifyBalance %s: %v", ing.Name, err)
			}
			if !ok {
				t.Errorf("%s: ledger sums to %s but on hand is %s", ing.Name, sum, onHand)
			}
		}

		// Beans trail: INITIAL +20, receipt +6, receipt +4.
		lines, err := ledger.GetMovements(ctx, beans.ID, "", "")
		if err != nil {
			t.Fatalf("GetMovements: %v", err)
		}
		if len(lines) != 3 {
			t.Fatalf("expected 3 movements, got %d", len(lines))
		}
		if lines[1].MovementType != core.MovementPOReceipt {
			t.Errorf("movement type = %s, want %s", lines[1].MovementType, core.MovementPOReceipt)
		}
		if !lines[2].RunningOnHand.Equal(dec("30")) {
			t.Errorf("final running balance = %s, want 30", lines[2].RunningOnHand)
		}
	})
}

func TestPurchaseOrder_CreateValidation(t *testing.T) {
	pool, pos, _, _, beans, _ := setupPOTest(t)
	defer pool.Close()
	ctx := context.Background()

	base := core.POInput{
		SupplierID: supplierID,
		OrderDate:  "2026-08-10",
		CreatedBy:  managerID,
		Lines:      []core.POLineInput{{IngredientID: beans.ID, Quantity: dec("5"), UnitCost: dec("600")}},
	}

	tests := []struct {
		name   string
		mutate func(*core.POInput)
	}{
		{"no lines", func(in *core.POInput) { in.Lines = nil }},
		{"missing order date", func(in *core.POInput) { in.OrderDate = "" }},
		{"malformed order date", func(in *core.POInput) { in.OrderDate = "10-08-2026" }},
		{"zero quantity line", func(in *core.POInput) { in.Lines[0].Quantity = dec("0") }},
		{"negative unit cost", func(in *core.POInput) { in.Lines[0].UnitCost = dec("-1") }},
		{"duplicate ingredient", func(in *core.POInput) {
			in.Lines = append(in.Lines, core.POLineInput{IngredientID: beans.ID, Quantity: dec("2"), UnitCost: dec("600")})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Lines = append([]core.POLineInput(nil), base.Lines...)
			tt.mutate(&in)
			_, err := pos.CreatePO(ctx, in)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("unknown supplier", func(t *testing.T) {
		in := base
		in.SupplierID = 999
		_, err := pos.CreatePO(ctx, in)
		var nfe *core.NotFoundError
		if !errors.As(err, &nfe) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("inactive supplier", func(t *testing.T) {
		if _, err := pool.Exec(ctx, `
			INSERT INTO suppliers (code, name, lead_time_days, is_active)
			VALUES ('SUP-T02', 'Closed Trading', 1, false)`); err != nil {
			t.Fatalf("seed inactive supplier: %v", err)
		}
		var id int
		if err := pool.QueryRow(ctx, "SELECT id FROM suppliers WHERE code = 'SUP-T02'").Scan(&id); err != nil {
			t.Fatalf("resolve inactive supplier: %v", err)
		}
		in := base
		in.SupplierID = id
		_, err := pos.CreatePO(ctx, in)
		var ve *core.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestPurchaseOrder_CancelDraft(t *testing.T) {
	pool, pos, _, _, beans, _ := setupPOTest(t)
	defer pool.Close()
	ctx := context.Background()

	mk := func() *core.PurchaseOrder {
		po, err := pos.CreatePO(ctx, core.POInput{
			SupplierID: supplierID,
			OrderDate:  "2026-08-10",
			CreatedBy:  managerID,
			Lines:      []core.POLineInput{{IngredientID: beans.ID, Quantity: dec("5"), UnitCost: dec("600")}},
		})
		if err != nil {
			t.Fatalf("CreatePO: %v", err)
		}
		return po
	}

	doomed := mk()
	cancelled, err := pos.CancelPO(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("CancelPO: %v", err)
	}
	if cancelled.Status != core.POCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Error("cancelled_at must be set")
	}

	// Cancelled is terminal.
	var ite *core.InvalidTransitionError
	if _, err := pos.ApprovePO(ctx, doomed.ID, managerID); !errors.As(err, &ite) {
		t.Errorf("expected InvalidTransitionError approving cancelled order, got %v", err)
	}

	// The cancelled draft never consumed a document number.
	second := mk()
	approved, err := pos.ApprovePO(ctx, second.ID, managerID)
	if err != nil {
		t.Fatalf("ApprovePO: %v", err)
	}
	if approved.PONumber == nil || *approved.PONumber != "PO-2026-00001" {
		t.Errorf("po number = %v, want PO-2026-00001", approved.PONumber)
	}
}

func TestPurchaseOrder_ApprovalRights(t *testing.T) {
	pool, pos, _, _, beans, _ := setupPOTest(t)
	defer pool.Close()
	ctx := context.Background()

	po, err := pos.CreatePO(ctx, core.POInput{
		SupplierID: supplierID,
		OrderDate:  "2026-08-10",
		CreatedBy:  baristaID,
		Lines:      []core.POLineInput{{IngredientID: beans.ID, Quantity: dec("5"), UnitCost: dec("600")}},
	})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}

	_, err = pos.ApprovePO(ctx, po.ID, baristaID)
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for barista approval, got %v", err)
	}

	fresh, err := pos.GetPO(ctx, po.ID)
	if err != nil {
		t.Fatalf("GetPO: %v", err)
	}
	if fresh.Status != core.PODraft {
		t.Errorf("status = %s, want DRAFT after failed approval", fresh.Status)
	}
}

func TestPurchaseOrder_ListByStatus(t *testing.T) {
	pool, pos, _, _, beans, _ := setupPOTest(t)
	defer pool.Close()
	ctx := context.Background()

	mk := func() *core.PurchaseOrder {
		po, err := pos.CreatePO(ctx, core.POInput{
			SupplierID: supplierID,
			OrderDate:  "2026-08-10",
			CreatedBy:  managerID,
			Lines:      []core.POLineInput{{IngredientID: beans.ID, Quantity: dec("2"), UnitCost: dec("600")}},
		})
		if err != nil {
			t.Fatalf("CreatePO: %v", err)
		}
		return po
	}

	mk()
	approvedPO := mk()
	cancelledPO := mk()
	if _, err := pos.ApprovePO(ctx, approvedPO.ID, managerID); err != nil {
		t.Fatalf("ApprovePO: %v", err)
	}
	if _, err := pos.CancelPO(ctx, cancelledPO.ID); err != nil {
		t.Fatalf("CancelPO: %v", err)
	}

	drafts, err := pos.ListPOs(ctx, core.PODraft)
	if err != nil {
		t.Fatalf("ListPOs drafts: %v", err)
	}
	if len(drafts) != 1 {
		t.Errorf("expected 1 draft, got %d", len(drafts))
	}

	all, err := pos.ListPOs(ctx, "")
	if err != nil {
		t.Fatalf("ListPOs all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 orders, got %d", len(all))
	}
}
