package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "cafe-ledger/internal/adapters/web"
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
		log.Fatalf("database: %v", err)
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

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
