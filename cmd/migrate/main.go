// Command migrate applies the orders schema and optionally seeds customers
// from the YAML file named by CUSTOMER_SEED_FILE.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/app/api"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := platformobservability.NewLogger(os.Stdout, cfg.LogLevel).With(slog.String("service", "orders-migrate"))

	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresDriver)
	if err != nil {
		log.Fatalf("POSTGRES_DSN not set or connection failed; cannot migrate: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := migrations.Run(db); err != nil {
		log.Fatalf("failed to migrate orders schema: %v", err)
	}
	logger.Info("orders schema migrated", slog.String("driver", string(cfg.PostgresDriver)))

	if cfg.CustomerSeedFile == "" {
		return
	}
	customers, err := migrations.LoadCustomerSeed(cfg.CustomerSeedFile)
	if err != nil {
		log.Fatalf("failed to load customer seed: %v", err)
	}
	if err := migrations.SeedCustomers(ctx, db, customers); err != nil {
		log.Fatalf("failed to seed customers: %v", err)
	}
	logger.Info("customers seeded", slog.Int("count", len(customers)), slog.String("file", cfg.CustomerSeedFile))
}
