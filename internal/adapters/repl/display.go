package repl

import (
	"fmt"
	"strings"

	"cafe-ledger/internal/app"
	"cafe-ledger/internal/core"
)

func printStockLevels(result *app.StockResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %-76s\n", "STOCK ON HAND")
	fmt.Println(strings.Repeat("=", 80))
	if len(result.Levels) == 0 {
		fmt.Println("  No ingredients found.")
		fmt.Println(strings.Repeat("=", 80))
		return
	}
	fmt.Printf("  %-4s %-26s %12s %-5s %10s %10s  %s\n",
		"ID", "INGREDIENT", "ON HAND", "UNIT", "MINIMUM", "UNIT COST", "")
	fmt.Println(strings.Repeat("-", 80))
	for _, lvl := range result.Levels {
		flag := ""
		if lvl.LowStock {
			flag = "LOW"
		}
		fmt.Printf("  %-4d %-26s %12s %-5s %10s %10s  %s\n",
			lvl.IngredientID, lvl.Name, lvl.OnHand.String(), lvl.Unit,
			lvl.Minimum.String(), lvl.UnitCost.StringFixed(2), flag)
	}
	fmt.Println(strings.Repeat("=", 80))
}

func printLowStock(result *app.LowStockResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %-76s\n", "LOW STOCK")
	fmt.Println(strings.Repeat("=", 80))
	if len(result.Lines) == 0 {
		fmt.Println("  Nothing at or below minimum.")
		fmt.Println(strings.Repeat("=", 80))
		return
	}
	fmt.Printf("  %-26s %12s %10s %10s  %-8s %s\n",
		"INGREDIENT", "ON HAND", "MINIMUM", "SHORT BY", "SUPPLIER", "LEAD")
	fmt.Println(strings.Repeat("-", 80))
	for _, l := range result.Lines {
		supplier, lead := "-", "-"
		if l.SupplierCode != nil {
			supplier = *l.SupplierCode
		}
		if l.LeadTimeDays != nil {
			lead = fmt.Sprintf("%d days", *l.LeadTimeDays)
		}
		fmt.Printf("  %-26s %9s %-2s %10s %10s  %-8s %s\n",
			l.Name, l.OnHand.String(), l.Unit,
			l.Minimum.String(), l.Shortfall.String(), supplier, lead)
	}
	fmt.Println(strings.Repeat("=", 80))
}

func printIngredientDetail(ing *core.Ingredient) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  Ingredient: %s (ID %d)\n", ing.Name, ing.ID)
	fmt.Printf("  On hand:    %s %s\n", ing.Quantity.String(), ing.Unit)
	fmt.Printf("  Minimum:    %s %s\n", ing.MinimumQuantity.String(), ing.Unit)
	fmt.Printf("  Unit cost:  %s\n", ing.UnitCost.StringFixed(2))
	if ing.IsLowStock() {
		fmt.Println("  Flag:       LOW STOCK")
	}
	if !ing.IsActive {
		fmt.Println("  Flag:       INACTIVE")
	}
	fmt.Println(strings.Repeat("-", 60))
}

func printPullouts(result *app.PulloutListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 90))
	fmt.Printf("  %-86s\n", "PULLOUTS")
	fmt.Println(strings.Repeat("=", 90))
	if len(result.Pullouts) == 0 {
		fmt.Println("  No pullouts found.")
		fmt.Println(strings.Repeat("=", 90))
		return
	}
	fmt.Printf("  %-5s %-20s %12s %-10s %-12s %-14s %s\n",
		"ID", "INGREDIENT", "QTY", "STATUS", "DATE", "REQUESTED BY", "REASON")
	fmt.Println(strings.Repeat("-", 90))
	for _, p := range result.Pullouts {
		qty := p.Quantity.String()
		if p.Quantity.IsNegative() {
			// Restock rows carry a negated quantity; show them as additions.
			qty = "+" + p.Quantity.Neg().String()
		}
		reason := p.Reason
		if len(reason) > 24 {
			reason = reason[:21] + "..."
		}
		fmt.Printf("  %-5d %-20s %9s %-2s %-10s %-12s %-14s %s\n",
			p.ID, p.IngredientName, qty, p.Unit,
			strings.ToUpper(string(p.Status)), p.DateOfPullout, p.RequestedByName, reason)
	}
	fmt.Println(strings.Repeat("=", 90))
}

func printPulloutDetail(p *core.Pullout) {
	kind, qty := "Removal", p.Quantity
	if p.Quantity.IsNegative() {
		kind, qty = "Restock", p.Quantity.Neg()
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  Pullout:      #%d  [%s]\n", p.ID, strings.ToUpper(string(p.Status)))
	fmt.Printf("  %-13s %s %s of %s\n", kind+":", qty.String(), p.Unit, p.IngredientName)
	fmt.Printf("  Reason:       %s\n", p.Reason)
	fmt.Printf("  Date:         %s\n", p.DateOfPullout)
	fmt.Printf("  Requested by: %s\n", p.RequestedByName)
	if p.ApprovedByName != nil {
		fmt.Printf("  Approved by:  %s\n", *p.ApprovedByName)
	}
	if p.RejectedReason != nil {
		fmt.Printf("  Rejected:     %s\n", *p.RejectedReason)
	}
	fmt.Printf("  In stock now: %s %s applied\n", p.AppliedDelta.String(), p.Unit)
	fmt.Println(strings.Repeat("-", 60))
}

func printStaff(result *app.StaffListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "STAFF")
	fmt.Println(strings.Repeat("=", 62))
	if len(result.Members) == 0 {
		fmt.Println("  No staff found.")
		fmt.Println(strings.Repeat("=", 62))
		return
	}
	fmt.Printf("  %-4s %-26s %-10s %s\n", "ID", "NAME", "ROLE", "PHONE")
	fmt.Println(strings.Repeat("-", 62))
	for _, m := range result.Members {
		phone := "-"
		if m.Phone != nil {
			phone = *m.Phone
		}
		fmt.Printf("  %-4d %-26s %-10s %s\n", m.ID, m.FullName, m.Role, phone)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printSuppliers(result *app.SupplierListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-74s\n", "SUPPLIERS")
	fmt.Println(strings.Repeat("=", 78))
	if len(result.Suppliers) == 0 {
		fmt.Println("  No suppliers found.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-4s %-10s %-26s %-18s %s\n", "ID", "CODE", "NAME", "CONTACT", "LEAD TIME")
	fmt.Println(strings.Repeat("-", 78))
	for _, s := range result.Suppliers {
		contact := "-"
		if s.ContactPerson != nil {
			contact = *s.ContactPerson
		}
		fmt.Printf("  %-4d %-10s %-26s %-18s %d days\n", s.ID, s.Code, s.Name, contact, s.LeadTimeDays)
	}
	fmt.Println(strings.Repeat("=", 78))
}

func printPurchaseOrders(result *app.PurchaseOrderListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 86))
	fmt.Printf("  %-82s\n", "PURCHASE ORDERS")
	fmt.Println(strings.Repeat("=", 86))
	if len(result.Orders) == 0 {
		fmt.Println("  No purchase orders found.")
		fmt.Println(strings.Repeat("=", 86))
		return
	}
	fmt.Printf("  %-5s %-16s %-24s %-20s %-12s %12s\n",
		"ID", "NUMBER", "SUPPLIER", "STATUS", "ORDERED", "TOTAL")
	fmt.Println(strings.Repeat("-", 86))
	for _, po := range result.Orders {
		number := "(draft)"
		if po.PONumber != nil {
			number = *po.PONumber
		}
		fmt.Printf("  %-5d %-16s %-24s %-20s %-12s %12s\n",
			po.ID, number, po.SupplierName, po.Status, po.OrderDate, po.TotalCost.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 86))
}

func printPODetail(po *core.PurchaseOrder) {
	number := "(draft, no number yet)"
	if po.PONumber != nil {
		number = *po.PONumber
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 78))
	fmt.Printf("  Order:     %s  [%s]\n", number, po.Status)
	fmt.Printf("  Supplier:  %s (%s)\n", po.SupplierName, po.SupplierCode)
	fmt.Printf("  Ordered:   %s by %s\n", po.OrderDate, po.CreatedByName)
	if po.ExpectedDate != nil {
		fmt.Printf("  Expected:  %s\n", *po.ExpectedDate)
	}
	if po.ApprovedByName != nil {
		fmt.Printf("  Approved:  by %s\n", *po.ApprovedByName)
	}
	if po.Notes != nil {
		fmt.Printf("  Notes:     %s\n", *po.Notes)
	}
	fmt.Println(strings.Repeat("-", 78))
	fmt.Printf("  %-5s %-24s %12s %12s %10s %10s\n",
		"LINE", "INGREDIENT", "ORDERED", "RECEIVED", "UNIT COST", "TOTAL")
	fmt.Println(strings.Repeat("-", 78))
	for _, l := range po.Lines {
		fmt.Printf("  %-5d %-24s %9s %-2s %12s %10s %10s\n",
			l.LineNumber, l.IngredientName, l.Quantity.String(), l.Unit,
			l.QtyReceived.String(), l.UnitCost.StringFixed(2), l.LineTotal.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 78))
	fmt.Printf("  %-65s %10s\n", "TOTAL", po.TotalCost.StringFixed(2))
	fmt.Println(strings.Repeat("-", 78))
}

func printConsignments(result *app.ConsignmentListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  %-76s\n", "CONSIGNMENTS")
	fmt.Println(strings.Repeat("=", 80))
	if len(result.Consignments) == 0 {
		fmt.Println("  No consignments found.")
		fmt.Println(strings.Repeat("=", 80))
		return
	}
	fmt.Printf("  %-5s %-16s %-22s %-10s %-12s %s\n",
		"ID", "REFERENCE", "SUPPLIER", "STATUS", "DELIVERED", "RECEIVED BY")
	fmt.Println(strings.Repeat("-", 80))
	for _, cn := range result.Consignments {
		fmt.Printf("  %-5d %-16s %-22s %-10s %-12s %s\n",
			cn.ID, cn.Reference, cn.SupplierName, cn.Status, cn.DeliveryDate, cn.ReceivedByName)
	}
	fmt.Println(strings.Repeat("=", 80))
}

func printConsignmentDetail(cn *core.Consignment) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  Consignment: %s  [%s]\n", cn.Reference, cn.Status)
	fmt.Printf("  Supplier:    %s (%s)\n", cn.SupplierName, cn.SupplierCode)
	fmt.Printf("  Delivered:   %s, received by %s\n", cn.DeliveryDate, cn.ReceivedByName)
	if cn.Notes != nil {
		fmt.Printf("  Notes:       %s\n", *cn.Notes)
	}
	if cn.VoidedReason != nil {
		fmt.Printf("  Voided:      %s\n", *cn.VoidedReason)
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("  %-5s %-28s %12s %10s\n", "LINE", "INGREDIENT", "QTY", "UNIT COST")
	fmt.Println(strings.Repeat("-", 70))
	for _, l := range cn.Lines {
		fmt.Printf("  %-5d %-28s %9s %-2s %10s\n",
			l.LineNumber, l.IngredientName, l.Quantity.String(), l.Unit,
			l.UnitCost.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 70))
}

func printValuation(report *core.ValuationReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  STOCK VALUATION — as of %s\n", report.AsOf.Format("2006-01-02 15:04"))
	fmt.Println(strings.Repeat("=", 78))
	if len(report.Lines) == 0 {
		fmt.Println("  No active ingredients.")
		fmt.Println(strings.Repeat("=", 78))
		return
	}
	fmt.Printf("  %-28s %12s %10s %14s\n", "INGREDIENT", "ON HAND", "UNIT COST", "VALUE")
	fmt.Println(strings.Repeat("-", 78))
	for _, l := range report.Lines {
		fmt.Printf("  %-28s %9s %-2s %10s %14s\n",
			l.Name, l.OnHand.String(), l.Unit, l.UnitCost.StringFixed(2), l.Value.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 78))
	fmt.Printf("  %-53s %14s\n", "TOTAL", report.TotalValue.StringFixed(2))
	fmt.Println(strings.Repeat("=", 78))
}

func printPulloutSummary(report *core.PulloutSummary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 88))
	fmt.Printf("  PULLOUT SUMMARY — %s to %s\n", orAny(report.FromDate), orAny(report.ToDate))
	fmt.Println(strings.Repeat("=", 88))
	if len(report.Lines) == 0 {
		fmt.Println("  No pullout activity in this range.")
		fmt.Println(strings.Repeat("=", 88))
		return
	}
	fmt.Printf("  %-24s %8s %9s %9s %14s %14s\n",
		"INGREDIENT", "PENDING", "APPROVED", "REJECTED", "QTY REMOVED", "VALUE")
	fmt.Println(strings.Repeat("-", 88))
	for _, l := range report.Lines {
		fmt.Printf("  %-24s %8d %9d %9d %11s %-2s %14s\n",
			l.Name, l.PendingCount, l.ApprovedCount, l.RejectedCount,
			l.QtyRemoved.String(), l.Unit, l.ValueRemoved.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 88))
	fmt.Printf("  %-73s %14s\n", "TOTAL VALUE REMOVED", report.TotalValue.StringFixed(2))
	fmt.Println(strings.Repeat("=", 88))
}

func printMovementHistory(result *app.MovementHistoryResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 92))
	fmt.Printf("  MOVEMENTS — %s\n", result.IngredientName)
	fmt.Println(strings.Repeat("=", 92))
	if len(result.Lines) == 0 {
		fmt.Println("  No movements found for the given period.")
		fmt.Println(strings.Repeat("=", 92))
		return
	}
	fmt.Printf("  %-12s %-16s %12s %12s  %s\n", "DATE", "TYPE", "DELTA", "ON HAND", "NOTES")
	fmt.Println(strings.Repeat("-", 92))
	for _, l := range result.Lines {
		notes := l.Notes
		if len(notes) > 42 {
			notes = notes[:39] + "..."
		}
		fmt.Printf("  %-12s %-16s %12s %12s  %s\n",
			l.MovementDate.Format("2006-01-02"), l.MovementType,
			l.QtyDelta.String(), l.RunningOnHand.String(), notes)
	}
	fmt.Println(strings.Repeat("=", 92))
}

// printWarnings surfaces the low-stock notices the application layer attaches
// to mutation results.
func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Printf("  ! %s\n", w)
	}
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func printHelp() {
	fmt.Println()
	fmt.Println("CAFÉ STOCK CONSOLE — COMMANDS")
	fmt.Println(strings.Repeat("=", 66))
	fmt.Println()
	fmt.Println("  STOCK")
	fmt.Println("  /stock                            All ingredients with on-hand levels")
	fmt.Println("  /low                              Ingredients at or below minimum")
	fmt.Println("  /ingredient <id-or-name>          One ingredient in detail")
	fmt.Println("  /new-ingredient                   Add an ingredient (interactive)")
	fmt.Println("  /restock                          Record a stock addition (interactive)")
	fmt.Println()
	fmt.Println("  PULLOUTS")
	fmt.Println("  /pullouts [status]                List pullout records")
	fmt.Println("  /pullout <id>                     One pullout in detail")
	fmt.Println("  /new-pullout                      Request a stock removal (interactive)")
	fmt.Println("  /approve <id> <approver>          Approve a pending pullout → deduct stock")
	fmt.Println("  /reject <id> <staff> <reason>     Reject a pullout → restore applied stock")
	fmt.Println("  /edit-pullout <id>                Change quantity, reason or date (interactive)")
	fmt.Println("  /delete-pullout <id>              Remove a record, reversing its effect")
	fmt.Println()
	fmt.Println("  PURCHASING")
	fmt.Println("  /suppliers                        List suppliers")
	fmt.Println("  /orders [status]                  List purchase orders")
	fmt.Println("  /order <id>                       One purchase order in detail")
	fmt.Println("  /new-order <supplier>             Draft a purchase order (interactive)")
	fmt.Println("  /approve-order <id> <approver>    Approve DRAFT → assign PO number")
	fmt.Println("  /cancel-order <id>                Cancel a DRAFT order")
	fmt.Println("  /receive <id>                     Receive a delivery against an order (interactive)")
	fmt.Println("  /consignments [status]            List off-order deliveries")
	fmt.Println("  /new-consignment <supplier>       Record an off-order delivery (interactive)")
	fmt.Println("  /stock-consignment <id>           Move a delivered consignment into stock")
	fmt.Println("  /void-consignment <id> <reason>   Void a delivered consignment")
	fmt.Println()
	fmt.Println("  REPORTS")
	fmt.Println("  /valuation                        Stock value at current unit costs")
	fmt.Println("  /summary [from] [to]              Pullout activity per ingredient")
	fmt.Println("  /history <ingredient> [from] [to] Movement ledger with running balance")
	fmt.Println()
	fmt.Println("  SESSION")
	fmt.Println("  /staff                            List staff members")
	fmt.Println("  /help                             Show this help")
	fmt.Println("  /exit                             Exit")
	fmt.Println(strings.Repeat("=", 66))
}
