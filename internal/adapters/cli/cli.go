package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"cafe-ledger/internal/app"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:], so the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "stock", "levels", "s":
		result, err := svc.GetStockLevels(ctx)
		if err != nil {
			log.Fatalf("Failed to get stock levels: %v", err)
		}
		printStock(result)

	case "low", "l":
		result, err := svc.GetLowStockReport(ctx)
		if err != nil {
			log.Fatalf("Failed to get low stock report: %v", err)
		}
		printLow(result)
		// Nonzero exit lets cron jobs and monitoring scripts alert on it.
		if len(result.Lines) > 0 {
			os.Exit(1)
		}

	case "pullout", "p":
		var req app.CreatePulloutRequest
		if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		result, err := svc.CreatePullout(ctx, req)
		if err != nil {
			log.Fatalf("Pullout failed: %v", err)
		}
		fmt.Printf("Pullout recorded (ID: %d, Status: %s)\n",
			result.Pullout.ID, strings.ToUpper(string(result.Pullout.Status)))
		for _, w := range result.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}

	case "approve", "a":
		if len(args) < 3 {
			log.Fatal("Usage: app approve <pullout-id> <approver>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid pullout id: %s", args[1])
		}
		result, err := svc.ApprovePullout(ctx, id, args[2])
		if err != nil {
			log.Fatalf("Approve failed: %v", err)
		}
		fmt.Printf("Pullout #%d approved. Applied: %s %s\n",
			result.Pullout.ID, result.Pullout.AppliedDelta.String(), result.Pullout.Unit)
		for _, w := range result.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}

	case "reject", "r":
		if len(args) < 4 {
			log.Fatal("Usage: app reject <pullout-id> <staff> \"<reason>\"")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid pullout id: %s", args[1])
		}
		result, err := svc.RejectPullout(ctx, id, args[2], strings.Join(args[3:], " "))
		if err != nil {
			log.Fatalf("Reject failed: %v", err)
		}
		fmt.Printf("Pullout #%d rejected.\n", result.Pullout.ID)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: stock, low, pullout, approve, reject", args[0])
	}
}

func printStock(result *app.StockResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-68s\n", "STOCK ON HAND")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-4s %-26s %12s %-5s %10s  %s\n", "ID", "INGREDIENT", "ON HAND", "UNIT", "MINIMUM", "")
	fmt.Println(strings.Repeat("-", 72))
	for _, lvl := range result.Levels {
		flag := ""
		if lvl.LowStock {
			flag = "LOW"
		}
		fmt.Printf("  %-4d %-26s %12s %-5s %10s  %s\n",
			lvl.IngredientID, lvl.Name, lvl.OnHand.String(), lvl.Unit, lvl.Minimum.String(), flag)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printLow(result *app.LowStockResult) {
	if len(result.Lines) == 0 {
		fmt.Println("Nothing at or below minimum.")
		return
	}
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-68s\n", "LOW STOCK")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-26s %12s %10s %10s  %s\n", "INGREDIENT", "ON HAND", "MINIMUM", "SHORT BY", "SUPPLIER")
	fmt.Println(strings.Repeat("-", 72))
	for _, l := range result.Lines {
		supplier := "-"
		if l.SupplierCode != nil {
			supplier = *l.SupplierCode
		}
		fmt.Printf("  %-26s %9s %-2s %10s %10s  %s\n",
			l.Name, l.OnHand.String(), l.Unit, l.Minimum.String(), l.Shortfall.String(), supplier)
	}
	fmt.Println(strings.Repeat("=", 72))
}
