package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"cafe-ledger/internal/app"

	"github.com/shopspring/decimal"
)

// ask prints a prompt and returns the trimmed line the operator typed.
func ask(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	raw, _ := reader.ReadString('\n')
	return strings.TrimSpace(raw)
}

// handleNewIngredient runs an interactive ingredient creation session.
func handleNewIngredient(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService) {
	name := ask(reader, "Ingredient name: ")
	if name == "" {
		fmt.Println("Cancelled.")
		return
	}
	unit := ask(reader, "Unit (kg, g, L, pcs, ...): ")

	minimum, ok := askDecimal(reader, "Minimum quantity: ", true)
	if !ok {
		return
	}
	unitCost, ok := askDecimal(reader, "Unit cost: ", true)
	if !ok {
		return
	}
	supplierRef := ask(reader, "Preferred supplier (ID or code, blank for none): ")

	opening := decimal.Zero
	if raw := ask(reader, "Opening stock (blank for 0): "); raw != "" {
		var err error
		opening, err = decimal.NewFromString(raw)
		if err != nil || opening.IsNegative() {
			fmt.Println("  Invalid opening stock.")
			return
		}
	}

	result, err := svc.CreateIngredient(ctx, app.CreateIngredientRequest{
		Name:            name,
		Unit:            unit,
		MinimumQuantity: minimum,
		UnitCost:        unitCost,
		SupplierRef:     supplierRef,
		OpeningQty:      opening,
	})
	if err != nil {
		fmt.Printf("[REPL] Error creating ingredient: %v\n", err)
		return
	}
	fmt.Printf("\nIngredient created (ID: %d)\n", result.Ingredient.ID)
	printIngredientDetail(result.Ingredient)
	printWarnings(result.Warnings)
}

// handleNewPullout runs an interactive pullout request session.
func handleNewPullout(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService) {
	ingredientRef := ask(reader, "Ingredient (ID or name): ")
	if ingredientRef == "" {
		fmt.Println("Cancelled.")
		return
	}
	qty, ok := askDecimal(reader, "Quantity to pull out: ", false)
	if !ok {
		return
	}
	reason := ask(reader, "Reason: ")
	date := ask(reader, "Date (YYYY-MM-DD, leave blank for today): ")
	requestedBy := ask(reader, "Requested by (staff ID or name): ")

	approvedBy := ""
	if answer := ask(reader, "Approve immediately? (y/n): "); strings.ToLower(answer) == "y" || strings.ToLower(answer) == "yes" {
		approvedBy = ask(reader, "Approver (staff ID or name): ")
	}

	result, err := svc.CreatePullout(ctx, app.CreatePulloutRequest{
		IngredientRef: ingredientRef,
		Quantity:      qty,
		Reason:        reason,
		DateOfPullout: date,
		RequestedBy:   requestedBy,
		ApprovedBy:    approvedBy,
	})
	if err != nil {
		fmt.Printf("[REPL] Error creating pullout: %v\n", err)
		return
	}

	fmt.Printf("\nPullout recorded (ID: %d, Status: %s)\n",
		result.Pullout.ID, strings.ToUpper(string(result.Pullout.Status)))
	printPulloutDetail(result.Pullout)
	printWarnings(result.Warnings)
	if result.Pullout.Status == "pending" {
		fmt.Println("Use '/approve <id> <approver>' to apply it to stock.")
	}
}

// handleRestock runs an interactive stock addition session.
func handleRestock(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService) {
	ingredientRef := ask(reader, "Ingredient (ID or name): ")
	if ingredientRef == "" {
		fmt.Println("Cancelled.")
		return
	}
	qty, ok := askDecimal(reader, "Quantity to add: ", false)
	if !ok {
		return
	}
	reason := ask(reader, "Reason (e.g. recount, returned stock): ")
	date := ask(reader, "Date (YYYY-MM-DD, leave blank for today): ")
	requestedBy := ask(reader, "Requested by (staff ID or name): ")

	approvedBy := ""
	if answer := ask(reader, "Approve immediately? (y/n): "); strings.ToLower(answer) == "y" || strings.ToLower(answer) == "yes" {
		approvedBy = ask(reader, "Approver (staff ID or name): ")
	}

	result, err := svc.RestockIngredient(ctx, app.RestockRequest{
		IngredientRef: ingredientRef,
		Quantity:      qty,
		Reason:        reason,
		Date:          date,
		RequestedBy:   requestedBy,
		ApprovedBy:    approvedBy,
	})
	if err != nil {
		fmt.Printf("[REPL] Error recording restock: %v\n", err)
		return
	}

	fmt.Printf("\nRestock recorded (ID: %d, Status: %s)\n",
		result.Pullout.ID, strings.ToUpper(string(result.Pullout.Status)))
	printPulloutDetail(result.Pullout)
	if result.Pullout.Status == "pending" {
		fmt.Println("Use '/approve <id> <approver>' to apply it to stock.")
	}
}

// handleEditPullout runs an interactive edit session against a fetched record.
// Blank answers keep the current value.
func handleEditPullout(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, id int) {
	current, err := svc.GetPullout(ctx, id)
	if err != nil {
		fmt.Printf("[REPL] Error: %v\n", err)
		return
	}
	printPulloutDetail(current.Pullout)
	fmt.Println("Leave any field blank to keep its current value.")

	var edit app.EditPulloutRequest

	shown := current.Pullout.Quantity
	if shown.IsNegative() {
		shown = shown.Neg()
	}
	if raw := ask(reader, fmt.Sprintf("New quantity [%s]: ", shown.String())); raw != "" {
		qty, err := decimal.NewFromString(raw)
		if err != nil || !qty.IsPositive() {
			fmt.Println("  Invalid quantity.")
			return
		}
		// The operator types a magnitude; restock rows keep their negated sign.
		if current.Pullout.Quantity.IsNegative() {
			qty = qty.Neg()
		}
		edit.Quantity = &qty
	}
	if raw := ask(reader, fmt.Sprintf("New reason [%s]: ", current.Pullout.Reason)); raw != "" {
		edit.Reason = &raw
	}
	if raw := ask(reader, fmt.Sprintf("New date [%s]: ", current.Pullout.DateOfPullout)); raw != "" {
		edit.DateOfPullout = &raw
	}

	if edit.Quantity == nil && edit.Reason == nil && edit.DateOfPullout == nil {
		fmt.Println("Nothing changed.")
		return
	}

	result, err := svc.EditPullout(ctx, id, edit)
	if err != nil {
		fmt.Printf("[REPL] Error editing pullout: %v\n", err)
		return
	}
	fmt.Println("\nPullout updated. Stock has been re-reconciled.")
	printPulloutDetail(result.Pullout)
	printWarnings(result.Warnings)
}

// handleNewPurchaseOrder runs an interactive PO drafting session.
func handleNewPurchaseOrder(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, supplierRef string) {
	fmt.Printf("Drafting purchase order for supplier: %s\n", supplierRef)
	fmt.Println("Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <ingredient-id> <quantity> <unit-cost>")
	fmt.Println("  Example: 3 25 180.00")

	var lines []app.POLineRequest
	lineNum := 1
	for {
		fmt.Printf("  Line %d: ", lineNum)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Order creation cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 3 {
			fmt.Println("  Invalid format. Use: <ingredient-id> <quantity> <unit-cost>")
			continue
		}
		qty, err := decimal.NewFromString(parts[1])
		if err != nil || !qty.IsPositive() {
			fmt.Println("  Invalid quantity.")
			continue
		}
		cost, err := decimal.NewFromString(parts[2])
		if err != nil || cost.IsNegative() {
			fmt.Println("  Invalid unit cost.")
			continue
		}

		lines = append(lines, app.POLineRequest{
			IngredientRef: parts[0],
			Quantity:      qty,
			UnitCost:      cost,
		})
		lineNum++
	}

	if len(lines) == 0 {
		fmt.Println("No lines entered. Order not created.")
		return
	}

	orderDate := ask(reader, "Order date (YYYY-MM-DD, leave blank for today): ")
	expected := ask(reader, "Expected delivery (YYYY-MM-DD, optional): ")
	notes := ask(reader, "Notes (optional): ")
	createdBy := ask(reader, "Ordered by (staff ID or name): ")

	result, err := svc.CreatePurchaseOrder(ctx, app.CreatePORequest{
		SupplierRef:  supplierRef,
		OrderDate:    orderDate,
		ExpectedDate: expected,
		Notes:        notes,
		CreatedBy:    createdBy,
		Lines:        lines,
	})
	if err != nil {
		fmt.Printf("[REPL] Error creating order: %v\n", err)
		return
	}

	fmt.Printf("\nPurchase order created (ID: %d, Status: DRAFT)\n", result.Order.ID)
	printPODetail(result.Order)
	fmt.Println("Use '/approve-order <id> <approver>' to assign a PO number.")
}

// handleReceiveOrder runs an interactive goods-receipt session against an
// approved purchase order.
func handleReceiveOrder(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, poID int) {
	current, err := svc.GetPurchaseOrder(ctx, poID)
	if err != nil {
		fmt.Printf("[REPL] Error: %v\n", err)
		return
	}
	printPODetail(current.Order)
	fmt.Println("Enter received quantities. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <line-number> <quantity-received>")

	// Line numbers are what the operator sees; map them back to line IDs.
	lineIDs := make(map[int]int, len(current.Order.Lines))
	for _, l := range current.Order.Lines {
		lineIDs[l.LineNumber] = l.ID
	}

	var receipts []app.ReceiptLineRequest
	for {
		raw := ask(reader, "  Receipt: ")
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Receipt cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 2 {
			fmt.Println("  Invalid format. Use: <line-number> <quantity-received>")
			continue
		}
		lineNum, err := strconv.Atoi(parts[0])
		if err != nil || lineIDs[lineNum] == 0 {
			fmt.Println("  Unknown line number.")
			continue
		}
		qty, err := decimal.NewFromString(parts[1])
		if err != nil || !qty.IsPositive() {
			fmt.Println("  Invalid quantity.")
			continue
		}
		receipts = append(receipts, app.ReceiptLineRequest{
			POLineID:    lineIDs[lineNum],
			QtyReceived: qty,
		})
	}

	if len(receipts) == 0 {
		fmt.Println("Nothing received. Order unchanged.")
		return
	}

	receivedBy := ask(reader, "Received by (staff ID or name): ")

	result, err := svc.ReceivePurchaseOrder(ctx, app.ReceivePORequest{
		POID:       poID,
		ReceivedBy: receivedBy,
		Lines:      receipts,
	})
	if err != nil {
		fmt.Printf("[REPL] Error receiving delivery: %v\n", err)
		return
	}

	fmt.Printf("\nDelivery recorded. Order status: %s\n", result.Order.Status)
	printPODetail(result.Order)
	printWarnings(result.Warnings)
}

// handleNewConsignment runs an interactive session recording an off-order
// supplier delivery.
func handleNewConsignment(ctx context.Context, reader *bufio.Reader, svc app.ApplicationService, supplierRef string) {
	fmt.Printf("Recording consignment from supplier: %s\n", supplierRef)
	fmt.Println("Enter delivered lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Println("Format per line: <ingredient-id> <quantity> <unit-cost>")

	var lines []app.ConsignmentLineRequest
	lineNum := 1
	for {
		fmt.Printf("  Line %d: ", lineNum)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Consignment cancelled.")
			return
		}
		if strings.ToLower(raw) == "done" {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 3 {
			fmt.Println("  Invalid format. Use: <ingredient-id> <quantity> <unit-cost>")
			continue
		}
		qty, err := decimal.NewFromString(parts[1])
		if err != nil || !qty.IsPositive() {
			fmt.Println("  Invalid quantity.")
			continue
		}
		cost, err := decimal.NewFromString(parts[2])
		if err != nil || cost.IsNegative() {
			fmt.Println("  Invalid unit cost.")
			continue
		}
		lines = append(lines, app.ConsignmentLineRequest{
			IngredientRef: parts[0],
			Quantity:      qty,
			UnitCost:      cost,
		})
		lineNum++
	}

	if len(lines) == 0 {
		fmt.Println("No lines entered. Consignment not recorded.")
		return
	}

	deliveryDate := ask(reader, "Delivery date (YYYY-MM-DD, leave blank for today): ")
	notes := ask(reader, "Notes (optional): ")
	receivedBy := ask(reader, "Received by (staff ID or name): ")

	result, err := svc.RecordConsignment(ctx, app.RecordConsignmentRequest{
		SupplierRef:  supplierRef,
		DeliveryDate: deliveryDate,
		Notes:        notes,
		ReceivedBy:   receivedBy,
		Lines:        lines,
	})
	if err != nil {
		fmt.Printf("[REPL] Error recording consignment: %v\n", err)
		return
	}

	fmt.Printf("\nConsignment recorded (Reference: %s, Status: DELIVERED)\n", result.Consignment.Reference)
	printConsignmentDetail(result.Consignment)
	fmt.Println("Use '/stock-consignment <id>' to move it into stock.")
}

// askDecimal prompts for a decimal value. allowZero permits 0 for fields like
// minimum quantity; quantities being moved must be positive.
func askDecimal(reader *bufio.Reader, label string, allowZero bool) (decimal.Decimal, bool) {
	raw := ask(reader, label)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() || (!allowZero && d.IsZero()) {
		fmt.Println("  Invalid value.")
		return decimal.Decimal{}, false
	}
	return d, true
}
