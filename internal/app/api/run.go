package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	orderserver "github.com/Apurer/go-gin-orders-api/go"
	ordersworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/httpmetrics"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-orders-api/internal/platform/requestid"
)

const shutdownTimeout = 10 * time.Second

// Run boots the orders HTTP API with observability, repositories, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Observability(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := BuildOrderBackend(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer backend.Close()

	orderWorkflows, closeWorkflows := selectOrderWorkflows(backend, func() (client.Client, error) {
		return DialTemporal(cfg, instruments, "temporal-client")
	}, logger)
	defer closeWorkflows()
	if _, ok := orderWorkflows.(*ordersworkflows.TemporalOrderWorkflows); ok {
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := NewRouter(cfg.ServiceName, logger, httpmetrics.New("orders"), orderserver.ApiHandleFunctions{
		OrderAPI: orderserver.NewOrderAPI(backend.Service, orderWorkflows),
		HealthAPI: orderserver.NewHealthAPI(healthChecks(backend)),
	})
	return serve(ctx, logger, cfg.Addr(), router)
}

// NewRouter builds the gin engine with the middleware stack shared by every route.
func NewRouter(serviceName string, logger *slog.Logger, metrics *httpmetrics.Metrics, handlers orderserver.ApiHandleFunctions) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestid.Middleware(),
		otelgin.Middleware(serviceName),
		metrics.Middleware(),
		accessLog(logger),
	)
	handlers.Metrics = metrics.Handler()
	return orderserver.NewRouterWithGinEngine(router, handlers)
}

// selectOrderWorkflows runs creation on Temporal only when the worker can share
// the API's database; otherwise orders are created inline.
func selectOrderWorkflows(backend *OrderBackend, dial func() (client.Client, error), logger *slog.Logger) (orderports.WorkflowOrchestrator, func()) {
	inline := ordersworkflows.NewInlineOrderWorkflows(
		backend.Service,
		ordersworkflows.WithIdempotencyStore(backend.Idempotency),
	)
	if backend.DB == nil {
		logger.Warn("order repository is in memory, running inline order creation so the worker cannot write to a separate store")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, running inline order creation", slog.String("error", err.Error()))
		return inline, func() {}
	}
	return ordersworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}

func healthChecks(backend *OrderBackend) map[string]orderserver.HealthCheck {
	if backend.DB == nil {
		return map[string]orderserver.HealthCheck{}
	}
	return map[string]orderserver.HealthCheck{
		"database": func(ctx context.Context) error { return platformpostgres.Ping(ctx, backend.DB) },
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("requestId", requestid.FromContext(c.Request.Context())),
		)
	}
}

func serve(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("orders API shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
