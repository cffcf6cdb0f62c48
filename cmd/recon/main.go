package main

import (
	"context"
	"log"
	"os"

	"supplier-recon/internal/adapters/cli"
	"supplier-recon/internal/app"
	"supplier-recon/internal/core"
	"supplier-recon/internal/db"
	"supplier-recon/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Setup(); err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		mainLog := logger.WithComponent("main")
		mainLog.Fatal().Err(err).Msg("Unable to connect to database")
	}
	defer pool.Close()

	ledger := core.NewLedger(pool)
	suppliers := core.NewSupplierService(pool)
	statements := core.NewStatementService(pool, suppliers)
	recon := core.NewReconService(ledger, suppliers, logger.WithComponent("recon"))
	svc := app.NewAppService(recon, suppliers, statements)

	root := cli.New(svc)
	if err := root.ExecuteContext(ctx); err != nil {
		// cobra already printed the error; exit nonzero for scripts.
		os.Exit(1)
	}
}
