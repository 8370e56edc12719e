package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/dessert-delivery-api/internal/app/api"
	paymentspostgres "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/dessert-delivery-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	db, cleanup := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge receipts")
	}

	store := paymentspostgres.NewReceiptStore(db, cfg.ReceiptTTL)
	purged, err := store.Purge(ctx)
	if err != nil {
		log.Fatalf("failed to purge receipts: %v", err)
	}
	logger.Info("receipt purge completed", slog.Int64("purged", purged))
}
