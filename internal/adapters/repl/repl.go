package repl

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"cafe-ledger/internal/app"
)

// Run starts the interactive console loop. Every command is a slash command
// dispatched deterministically; stock never changes without an explicit
// operation.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	fmt.Println("Café Stock Console")
	if low, err := svc.GetLowStockReport(ctx); err == nil && len(low.Lines) > 0 {
		fmt.Printf("%d ingredient(s) at or below minimum — type /low to review.\n", len(low.Lines))
	}
	fmt.Println("Type /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "stock":
			result, err := svc.GetStockLevels(ctx)
			if err != nil {
				return err
			}
			printStockLevels(result)

		case "low":
			result, err := svc.GetLowStockReport(ctx)
			if err != nil {
				return err
			}
			printLowStock(result)

		case "ingredient":
			if len(args) < 1 {
				fmt.Println("Usage: /ingredient <id-or-name>")
				return nil
			}
			result, err := svc.GetIngredient(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printIngredientDetail(result.Ingredient)

		case "new-ingredient":
			handleNewIngredient(ctx, reader, svc)

		case "restock":
			handleRestock(ctx, reader, svc)

		case "pullouts":
			req := app.PulloutListRequest{}
			if len(args) > 0 {
				req.Status = strings.ToLower(args[0])
			}
			result, err := svc.ListPullouts(ctx, req)
			if err != nil {
				return err
			}
			printPullouts(result)

		case "pullout":
			id, ok := parseID(args, "Usage: /pullout <id>")
			if !ok {
				return nil
			}
			result, err := svc.GetPullout(ctx, id)
			if err != nil {
				return err
			}
			printPulloutDetail(result.Pullout)

		case "new-pullout":
			handleNewPullout(ctx, reader, svc)

		case "approve":
			if len(args) < 2 {
				fmt.Println("Usage: /approve <pullout-id> <approver-id-or-name>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid pullout id: %s\n", args[0])
				return nil
			}
			result, err := svc.ApprovePullout(ctx, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			verb, qty := "removed from", result.Pullout.AppliedDelta
			if qty.IsNegative() {
				verb, qty = "added to", qty.Neg()
			}
			fmt.Printf("Pullout #%d APPROVED. %s %s %s stock.\n",
				result.Pullout.ID, qty.String(), result.Pullout.Unit, verb)
			printWarnings(result.Warnings)

		case "reject":
			if len(args) < 3 {
				fmt.Println("Usage: /reject <pullout-id> <staff-id-or-name> <reason...>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid pullout id: %s\n", args[0])
				return nil
			}
			result, err := svc.RejectPullout(ctx, id, args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("Pullout #%d REJECTED. Any applied stock has been restored.\n", result.Pullout.ID)
			printWarnings(result.Warnings)

		case "edit-pullout":
			id, ok := parseID(args, "Usage: /edit-pullout <id>")
			if !ok {
				return nil
			}
			handleEditPullout(ctx, reader, svc, id)

		case "delete-pullout":
			id, ok := parseID(args, "Usage: /delete-pullout <id>")
			if !ok {
				return nil
			}
			fmt.Print("Delete this pullout and reverse its stock effect? (y/n): ")
			choice, _ := reader.ReadString('\n')
			choice = strings.TrimSpace(strings.ToLower(choice))
			if choice != "y" && choice != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := svc.DeletePullout(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Pullout #%d deleted.\n", id)

		case "staff":
			result, err := svc.ListStaff(ctx, false)
			if err != nil {
				return err
			}
			printStaff(result)

		case "suppliers":
			result, err := svc.ListSuppliers(ctx, false)
			if err != nil {
				return err
			}
			printSuppliers(result)

		case "orders":
			status := ""
			if len(args) > 0 {
				status = args[0]
			}
			result, err := svc.ListPurchaseOrders(ctx, status)
			if err != nil {
				return err
			}
			printPurchaseOrders(result)

		case "order":
			id, ok := parseID(args, "Usage: /order <id>")
			if !ok {
				return nil
			}
			result, err := svc.GetPurchaseOrder(ctx, id)
			if err != nil {
				return err
			}
			printPODetail(result.Order)

		case "new-order":
			if len(args) < 1 {
				fmt.Println("Usage: /new-order <supplier-id-or-code>")
				return nil
			}
			handleNewPurchaseOrder(ctx, reader, svc, strings.Join(args, " "))

		case "approve-order":
			if len(args) < 2 {
				fmt.Println("Usage: /approve-order <po-id> <approver-id-or-name>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid order id: %s\n", args[0])
				return nil
			}
			result, err := svc.ApprovePurchaseOrder(ctx, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("Purchase order APPROVED. Number: %s\n", *result.Order.PONumber)

		case "cancel-order":
			id, ok := parseID(args, "Usage: /cancel-order <po-id>")
			if !ok {
				return nil
			}
			result, err := svc.CancelPurchaseOrder(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Purchase order #%d CANCELLED.\n", result.Order.ID)

		case "receive":
			id, ok := parseID(args, "Usage: /receive <po-id>")
			if !ok {
				return nil
			}
			handleReceiveOrder(ctx, reader, svc, id)

		case "consignments":
			status := ""
			if len(args) > 0 {
				status = args[0]
			}
			result, err := svc.ListConsignments(ctx, status)
			if err != nil {
				return err
			}
			printConsignments(result)

		case "new-consignment":
			if len(args) < 1 {
				fmt.Println("Usage: /new-consignment <supplier-id-or-code>")
				return nil
			}
			handleNewConsignment(ctx, reader, svc, strings.Join(args, " "))

		case "stock-consignment":
			id, ok := parseID(args, "Usage: /stock-consignment <id>")
			if !ok {
				return nil
			}
			result, err := svc.StockConsignment(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Consignment %s STOCKED. Inventory updated.\n", result.Consignment.Reference)

		case "void-consignment":
			if len(args) < 2 {
				fmt.Println("Usage: /void-consignment <id> <reason...>")
				return nil
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid consignment id: %s\n", args[0])
				return nil
			}
			result, err := svc.VoidConsignment(ctx, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("Consignment %s VOIDED.\n", result.Consignment.Reference)

		case "valuation":
			report, err := svc.GetStockValuation(ctx)
			if err != nil {
				return err
			}
			printValuation(report)

		case "summary":
			fromDate, toDate := "", ""
			if len(args) > 0 {
				fromDate = args[0]
			}
			if len(args) > 1 {
				toDate = args[1]
			}
			report, err := svc.GetPulloutSummary(ctx, fromDate, toDate)
			if err != nil {
				return err
			}
			printPulloutSummary(report)

		case "history":
			if len(args) < 1 {
				fmt.Println("Usage: /history <ingredient-id-or-name> [from-date] [to-date]")
				return nil
			}
			// Date args are the trailing YYYY-MM-DD tokens; everything before
			// them is the ingredient reference, which may contain spaces.
			ref, fromDate, toDate := splitHistoryArgs(args)
			result, err := svc.GetMovementHistory(ctx, ref, fromDate, toDate)
			if err != nil {
				return err
			}
			printMovementHistory(result)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with / — type /help to see them all.")
			continue
		}

		if err := dispatchSlash(input); err != nil {
			if err == errExit {
				fmt.Println("Goodbye!")
				break
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// parseID extracts a single integer argument, printing usage on failure.
func parseID(args []string, usage string) (int, bool) {
	if len(args) < 1 {
		fmt.Println(usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Invalid id: %s\n", args[0])
		return 0, false
	}
	return id, true
}

// splitHistoryArgs separates the ingredient reference from optional trailing
// date bounds.
func splitHistoryArgs(args []string) (ref, fromDate, toDate string) {
	end := len(args)
	if end > 1 && looksLikeDate(args[end-1]) {
		if end > 2 && looksLikeDate(args[end-2]) {
			fromDate, toDate = args[end-2], args[end-1]
			end -= 2
		} else {
			fromDate = args[end-1]
			end--
		}
	}
	return strings.Join(args[:end], " "), fromDate, toDate
}

func looksLikeDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
