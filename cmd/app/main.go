package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"cafe-ledger/internal/adapters/cli"
	"cafe-ledger/internal/adapters/repl"
	"cafe-ledger/internal/app"
	"cafe-ledger/internal/core"
	"cafe-ledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	inventory := core.NewInventoryService(pool, ledger)
	staff := core.NewStaffService(pool)
	suppliers := core.NewSupplierService(pool)
	documents := core.NewDocumentService(pool)
	pullouts := core.NewPulloutService(pool, inventory, staff, ledger)
	orders := core.NewPurchaseOrderService(pool, inventory, staff, ledger, documents)
	consignments := core.NewConsignmentService(pool, inventory, staff, ledger, documents)
	reporting := core.NewReportingService(pool, ledger)

	svc := app.NewAppService(inventory, pullouts, staff, suppliers, orders, consignments, reporting)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
}
