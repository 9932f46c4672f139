// seed loads a small demo dataset: one account with a handful of source
// documents across every feed. Run it after migrations on a fresh database.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ledger-engine/internal/core"
	"ledger-engine/internal/db"

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

	var accountID string
	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (name, opening_balance) VALUES ($1, $2) RETURNING id::text`,
		"Main Cash", "100000").Scan(&accountID)
	if err != nil {
		log.Fatalf("Failed to insert account: %v", err)
	}

	day := func(d, h int) *time.Time {
		t := time.Date(2024, 3, d, h, 0, 0, 0, time.UTC)
		return &t
	}

	insertDoc := func(table string, doc any) {
		payload, err := json.Marshal(doc)
		if err != nil {
			log.Fatalf("Failed to marshal %s doc: %v", table, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO `+table+` (account_id, doc) VALUES ($1, $2)`, accountID, payload)
		if err != nil {
			log.Fatalf("Failed to insert into %s: %v", table, err)
		}
	}

	insertDoc("ledger_entries", core.RawLedgerRecord{
		Type: "Income", Description: "Opening sales float", Amount: "25000",
		AddedBy: "thiri", Date: day(1, 9),
	})
	insertDoc("ledger_entries", core.RawLedgerRecord{
		Type: "Fund Transfer", Description: "To savings", Debit: "10000",
		Source: "transfer", Date: day(2, 14),
	})
	insertDoc("ledger_entries", core.RawLedgerRecord{
		Type: "Sale Payment", Description: "Recorded sale INV-0042",
		Amount: "18000", ReferenceNo: "INV-0042-A", Date: day(3, 11),
	})

	insertDoc("sales", core.RawSaleRecord{
		InvoiceNo: "INV-0042", CustomerName: "Aye Chan", Status: "completed",
		PaymentAmount: "18000", PaymentMethod: "cash", Date: day(3, 11),
	})
	insertDoc("sales", core.RawSaleRecord{
		InvoiceNo: "INV-0043", CustomerName: "Ko Zaw", Status: "completed",
		PaymentAmount: "32000", PaymentMethod: "kpay", Date: day(4, 16),
	})

	insertDoc("expenses", core.RawExpenseRecord{
		Category: "Fuel", Note: "van refill", PaymentAmount: "8000",
		PaymentMethod: "cash", Date: day(5, 10),
	})

	insertDoc("sales_returns", core.RawReturnRecord{
		Source: "sales_return", Description: "Damaged goods INV-0043",
		ReferenceNo: "INV-0043", Debit: "5000", Date: day(6, 12),
	})

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit seed: %v", err)
	}
	log.Printf("Seeded account %s", accountID)
}
