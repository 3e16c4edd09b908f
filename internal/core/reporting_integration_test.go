package core_test

import (
	"context"
	"testing"

	"cafe-ledger/internal/core"
)

func TestReporting_StockValuation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	inv := core.NewInventoryService(pool, ledger)
	reports := core.NewReportingService(pool, ledger)
	ctx := context.Background()

	mk := func(name, qty, cost string) {
		if _, err := inv.CreateIngredient(ctx, core.IngredientInput{
			Name:     name,
			Unit:     "kg",
			UnitCost: dec(cost),
		}, dec(qty)); err != nil {
			t.Fatalf("CreateIngredient %s: %v", name, err)
		}
	}
	mk("Arabica Beans", "20", "620") // 12400
	mk("White Sugar", "15", "85")    // 1275
	mk("Cocoa Powder", "4", "450")   // 1800

	report, err := reports.GetStockValuation(ctx)
	if err != nil {
		t.Fatalf("GetStockValuation: %v", err)
	}
	if len(report.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(report.Lines))
	}
	if !report.TotalValue.Equal(dec("15475")) {
		t.Errorf("total value = %s, want 15475", report.TotalValue)
	}
	// Most valuable stock first.
	if report.Lines[0].Name != "Arabica Beans" {
		t.Errorf("top line = %s, want Arabica Beans", report.Lines[0].Name)
	}
	if !report.Lines[0].Value.Equal(dec("12400")) {
		t.Errorf("top value = %s, want 12400", report.Lines[0].Value)
	}
}

func TestReporting_LowStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	inv := core.NewInventoryService(pool, ledger)
	reports := core.NewReportingService(pool, ledger)
	ctx := context.Background()

	supID := supplierID
	mk := func(name, qty, min string) {
		if _, err := inv.CreateIngredient(ctx, core.IngredientInput{
			Name:            name,
			Unit:            "kg",
			MinimumQuantity: dec(min),
			SupplierID:      &supID,
		}, dec(qty)); err != nil {
			t.Fatalf("CreateIngredient %s: %v", name, err)
		}
	}
	mk("Matcha Powder", "0.5", "1") // shortfall 0.5
	mk("Brown Sugar", "2", "6")     // shortfall 4
	mk("Oat Milk", "3", "3")        // at the line, shortfall 0
	mk("Whole Milk", "30", "10")    // plenty

	lines, err := reports.GetLowStockReport(ctx)
	if err != nil {
		t.Fatalf("GetLowStockReport: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 low stock lines, got %d", len(lines))
	}
	// Worst shortfall first, and the reorder hint rides along.
	if lines[0].Name != "Brown Sugar" {
		t.Errorf("top line = %s, want Brown Sugar", lines[0].Name)
	}
	if !lines[0].Shortfall.Equal(dec("4")) {
		t.Errorf("top shortfall = %s, want 4", lines[0].Shortfall)
	}
	if lines[0].SupplierCode == nil || *lines[0].SupplierCode != "SUP-T01" {
		t.Errorf("supplier code = %v, want SUP-T01", lines[0].SupplierCode)
	}
	if lines[0].LeadTimeDays == nil || *lines[0].LeadTimeDays != 3 {
		t.Errorf("lead time = %v, want 3", lines[0].LeadTimeDays)
	}
	for _, l := range lines {
		if l.Name == "Oat Milk" && !l.Shortfall.IsZero() {
			t.Errorf("at-minimum shortfall = %s, want 0", l.Shortfall)
		}
		if l.Name == "Whole Milk" {
			t.Error("well-stocked ingredient in low stock report")
		}
	}
}

func TestReporting_PulloutSummary(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	inv, pullouts, ledger := newStockServices(pool)
	reports := core.NewReportingService(pool, ledger)
	ctx := context.Background()

	beans, err := inv.CreateIngredient(ctx, core.IngredientInput{
		Name:     "Arabica Beans",
		Unit:     "kg",
		UnitCost: dec("600"),
	}, dec("20"))
	if err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}

	mk := func(qty, date string) *core.Pullout {
		p, err := pullouts.CreatePullout(ctx, core.PulloutInput{
			IngredientID:  beans.ID,
			Quantity:      dec(qty),
			Reason:        "stale batch",
			DateOfPullout: date,
			RequestedBy:   baristaID,
		})
		if err != nil {
			t.Fatalf("CreatePullout: %v", err)
		}
		return p
	}

	inWindow := mk("5", "2026-08-10")
	mk("2", "2026-08-12") // stays pending
	rejected := mk("1", "2026-08-14")
	outOfWindow := mk("4", "2026-07-01")

	if _, err := pullouts.ApprovePullout(ctx, inWindow.ID, managerID); err != nil {
		t.Fatalf("ApprovePullout: %v", err)
	}
	if _, err := pullouts.RejectPullout(ctx, rejected.ID, managerID, "counting error"); err != nil {
		t.Fatalf("RejectPullout: %v", err)
	}
	if _, err := pullouts.ApprovePullout(ctx, outOfWindow.ID, managerID); err != nil {
		t.Fatalf("ApprovePullout: %v", err)
	}

	// A restock approved inside the window offsets the removals.
	restock, err := pullouts.CreateRestock(ctx, core.PulloutInput{
		IngredientID:  beans.ID,
		Quantity:      dec("2"),
		Reason:        "recount found unopened bag",
		DateOfPullout: "2026-08-16",
		RequestedBy:   baristaID,
	})
	if err != nil {
		t.Fatalf("CreateRestock: %v", err)
	}
	if _, err := pullouts.ApprovePullout(ctx, restock.ID, managerID); err != nil {
		t.Fatalf("ApprovePullout restock: %v", err)
	}

	summary, err := reports.GetPulloutSummary(ctx, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("GetPulloutSummary: %v", err)
	}
	if len(summary.Lines) != 1 {
		t.Fatalf("expected 1 summary line, got %d", len(summary.Lines))
	}
	line := summary.Lines[0]
	if line.PendingCount != 1 || line.ApprovedCount != 2 || line.RejectedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1 pending, 2 approved, 1 rejected",
			line.PendingCount, line.ApprovedCount, line.RejectedCount)
	}
	// Net applied inside the window: +5 removed, -2 restocked.
	if !line.QtyRemoved.Equal(dec("3")) {
		t.Errorf("qty removed = %s, want 3", line.QtyRemoved)
	}
	if !line.ValueRemoved.Equal(dec("1800")) {
		t.Errorf("value removed = %s, want 1800", line.ValueRemoved)
	}
	if !summary.TotalValue.Equal(dec("1800")) {
		t.Errorf("total value = %s, want 1800", summary.TotalValue)
	}

	// The July record only shows up once the window widens.
	wide, err := reports.GetPulloutSummary(ctx, "", "")
	if err != nil {
		t.Fatalf("GetPulloutSummary unbounded: %v", err)
	}
	if !wide.Lines[0].QtyRemoved.Equal(dec("7")) {
		t.Errorf("unbounded qty removed = %s, want 7", wide.Lines[0].QtyRemoved)
	}
}

func TestReporting_MovementHistory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	inv, pullouts, ledger := newStockServices(pool)
	reports := core.NewReportingService(pool, ledger)
	ctx := context.Background()

	ing := seedIngredient(t, inv, "Vanilla Syrup", "9")
	approver := managerID
	if _, err := pullouts.CreatePullout(ctx, core.PulloutInput{
		IngredientID:  ing.ID,
		Quantity:      dec("4"),
		Reason:        "crystallized",
		DateOfPullout: "2026-08-20",
		RequestedBy:   baristaID,
		ApprovedBy:    &approver,
	}); err != nil {
		t.Fatalf("CreatePullout: %v", err)
	}

	history, err := reports.GetMovementHistory(ctx, ing.ID, "", "")
	if err != nil {
		t.Fatalf("GetMovementHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(history))
	}
	if !history[0].RunningOnHand.Equal(dec("9")) {
		t.Errorf("running balance after opening = %s, want 9", history[0].RunningOnHand)
	}
	if history[1].MovementType != core.MovementPulloutApply {
		t.Errorf("movement type = %s, want %s", history[1].MovementType, core.MovementPulloutApply)
	}
	if !history[1].QtyDelta.Equal(dec("-4")) {
		t.Errorf("delta = %s, want -4", history[1].QtyDelta)
	}
	if !history[1].RunningOnHand.Equal(dec("5")) {
		t.Errorf("running balance = %s, want 5", history[1].RunningOnHand)
	}
}
