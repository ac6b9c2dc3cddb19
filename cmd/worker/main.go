package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/app/api"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	cfg, err := api.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	const serviceName = "orders-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := api.BuildOrderBackend(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build order service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()
	if backend.DB == nil {
		logger.Warn("worker is persisting orders in memory; the API will not see them")
	}
	orderActivities := orderactivities.NewActivities(backend.Service)

	temporalClient, err := api.DialTemporal(cfg, instruments, "temporal-worker")
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
