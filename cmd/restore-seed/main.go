// restore-seed is a one-shot tool to restore the live database seed data.
// Run it when the staff roster or the ingredient catalog has been
// accidentally wiped.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"os"

	"cafe-ledger/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	// Opening balances are re-recorded below, so stale activity has to go
	// first or the movement log would no longer sum to the on-hand figures.
	log.Println("Clearing stock activity...")
	_, err = tx.Exec(ctx, `
		DELETE FROM stock_movements;
		DELETE FROM pullouts;
		DELETE FROM consignments;
		DELETE FROM purchase_orders;
		DELETE FROM document_sequences;
	`)
	if err != nil {
		log.Fatalf("Failed to clear stock activity: %v", err)
	}

	log.Println("Restoring staff roster...")
	_, err = tx.Exec(ctx, `
		INSERT INTO staff (full_name, role, phone)
		SELECT v.full_name, v.role, v.phone
		FROM (VALUES
		    ('Teresa Navarro', 'owner',   NULL),
		    ('Joanna Reyes',   'manager', '0917-555-0142'),
		    ('Paolo Santos',   'barista', NULL),
		    ('Ramil Bautista', 'cook',    NULL),
		    ('Grace Lim',      'cashier', NULL)
		) AS v(full_name, role, phone)
		WHERE NOT EXISTS (
		    SELECT 1 FROM staff s WHERE s.full_name = v.full_name
		);
	`)
	if err != nil {
		log.Fatalf("Failed to restore staff: %v", err)
	}

	log.Println("Restoring suppliers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO suppliers (code, name, contact_person, email, lead_time_days)
		VALUES
		  ('SUP-001', 'Monte Verde Coffee Traders', 'Elena Cruz', 'orders@monteverde.ph', 5),
		  ('SUP-002', 'Golden Harvest Dairy',       NULL,         NULL,                   2),
		  ('SUP-003', 'Mabuhay Produce Market',     NULL,         NULL,                   1),
		  ('SUP-004', 'Paper & Pack Supply Co.',    'Dennis Yu',  'sales@paperpack.ph',   7)
		ON CONFLICT (code) DO UPDATE
		  SET name = EXCLUDED.name,
		      contact_person = EXCLUDED.contact_person,
		      email = EXCLUDED.email,
		      lead_time_days = EXCLUDED.lead_time_days,
		      is_active = true;
	`)
	if err != nil {
		log.Fatalf("Failed to restore suppliers: %v", err)
	}

	log.Println("Restoring ingredient catalog...")
	_, err = tx.Exec(ctx, `
		INSERT INTO ingredients (name, unit, quantity, minimum_quantity, unit_cost, supplier_id)
		SELECT v.name, v.unit, v.qty, v.min_qty, v.cost, s.id
		FROM (VALUES
		    ('Arabica Beans',   'kg',  20::numeric,  5::numeric,   620::numeric,  'SUP-001'),
		    ('Robusta Beans',   'kg',  12::numeric,  4::numeric,   380::numeric,  'SUP-001'),
		    ('Whole Milk',      'L',   30::numeric,  10::numeric,  98::numeric,   'SUP-002'),
		    ('Oat Milk',        'L',   8::numeric,   6::numeric,   180::numeric,  'SUP-002'),
		    ('White Sugar',     'kg',  15::numeric,  3::numeric,   85::numeric,   'SUP-003'),
		    ('Brown Sugar',     'kg',  6::numeric,   2::numeric,   95::numeric,   'SUP-003'),
		    ('Cocoa Powder',    'kg',  4::numeric,   1::numeric,   450::numeric,  'SUP-003'),
		    ('Vanilla Syrup',   'L',   5::numeric,   2::numeric,   310::numeric,  'SUP-001'),
		    ('Matcha Powder',   'kg',  1.5::numeric, 1::numeric,   2200::numeric, 'SUP-003'),
		    ('12oz Paper Cups', 'pcs', 800::numeric, 200::numeric, 3.5::numeric,  'SUP-004'),
		    ('Cup Lids',        'pcs', 750::numeric, 200::numeric, 1.8::numeric,  'SUP-004')
		) AS v(name, unit, qty, min_qty, cost, supplier_code)
		JOIN suppliers s ON s.code = v.supplier_code
		ON CONFLICT (name) DO UPDATE
		  SET unit = EXCLUDED.unit,
		      quantity = EXCLUDED.quantity,
		      minimum_quantity = EXCLUDED.minimum_quantity,
		      unit_cost = EXCLUDED.unit_cost,
		      supplier_id = EXCLUDED.supplier_id,
		      is_active = true,
		      updated_at = now();
	`)
	if err != nil {
		log.Fatalf("Failed to restore ingredients: %v", err)
	}

	log.Println("Recording opening balances...")
	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (ingredient_id, movement_type, qty_delta, correlation_id, notes)
		SELECT i.id, 'INITIAL', i.quantity, gen_random_uuid()::text, 'opening balance'
		FROM ingredients i
		WHERE i.quantity > 0;
	`)
	if err != nil {
		log.Fatalf("Failed to record opening balances: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("✅ Seed data restored successfully.")
	os.Exit(0)
}
