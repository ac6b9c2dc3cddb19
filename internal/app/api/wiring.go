package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

// OrderBackend is the order service plus the database it runs on, if any.
type OrderBackend struct {
	Service orderports.Service
	// Idempotency records Idempotency-Key replays for inline order creation.
	Idempotency orderports.IdempotencyStore
	// DB is nil when the in-memory repository is in use.
	DB *gorm.DB
	// Close releases the database connection.
	Close func()
}

// BuildOrderBackend connects PostgreSQL, falling back to memory, and wraps the
// order service with tracing, logging and metrics.
func BuildOrderBackend(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*OrderBackend, error) {
	logger := effectiveLogger(instruments)
	repo, db, cleanup, err := buildOrderRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	service := ordersobs.New(
		ordersapp.NewService(repo),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	backend := &OrderBackend{Service: service, DB: db, Close: cleanup}
	if db != nil {
		backend.Idempotency = orderspostgres.NewIdempotencyStore(db)
	} else {
		backend.Idempotency = ordersmemory.NewIdempotencyStore()
	}
	return backend, nil
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.Repository, *gorm.DB, func(), error) {
	db, cleanup := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, cfg.PostgresDriver, logger)
	if db == nil {
		repo := ordersmemory.NewRepository()
		if cfg.CustomerSeedFile != "" {
			customers, err := migrations.LoadCustomerSeed(cfg.CustomerSeedFile)
			if err != nil {
				return nil, nil, nil, err
			}
			for _, customer := range customers {
				repo.PutCustomer(customer)
			}
			logger.Info("in-memory customers seeded", slog.Int("count", len(customers)))
		}
		logger.Info("order repository configured in memory")
		return repo, nil, cleanup, nil
	}
	if cfg.AutoMigrate {
		if err := migrations.Run(db); err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("migrate orders schema: %w", err)
		}
		logger.Info("orders schema migrated")
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db), db, cleanup, nil
}

// DialTemporal connects a Temporal client with tracing and structured logging.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, component string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(component),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
