package main

import (
	"context"
	"log"
	"os"

	"ledger-engine/internal/adapters/cli"
	"ledger-engine/internal/app"
	"ledger-engine/internal/db"
	"ledger-engine/internal/logging"
	"ledger-engine/internal/sources"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <ledger|export> ...")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	logger := logging.New()
	store := sources.NewStore(pool, logger)
	svc := app.NewAppService(store, logger, 0)
	defer svc.Close()

	cli.Run(ctx, svc, os.Args[1:])
}
