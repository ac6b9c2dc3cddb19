package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orderdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) ListAll(ctx context.Context) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAll")
	defer span.End()

	result, err := s.inner.ListAll(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) Create(ctx context.Context, fields orderdomain.OrderFields) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Create",
		trace.WithAttributes(attribute.Int64("customer.id", fields.CustomerID), attribute.String("order.status", string(fields.Status))))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.Int64("customer.id", fields.CustomerID), slog.String("order.status", string(fields.Status)))
	result, err := s.inner.Create(ctx, fields)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int64("customer.id", fields.CustomerID))
	}
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.metrics.recordCreated(ctx, result.Status)
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID), slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) Replace(ctx context.Context, id int64, fields orderdomain.OrderFields) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Replace",
		trace.WithAttributes(attribute.Int64("order.id", id), attribute.Int64("customer.id", fields.CustomerID)))
	defer span.End()

	s.logInfo(ctx, "replacing order", slog.Int64("order.id", id))
	result, err := s.inner.Replace(ctx, id, fields)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to replace order", slog.Int64("order.id", id))
	}
	s.metrics.recordReplaced(ctx)
	s.logInfo(ctx, "order replaced", slog.Int64("order.id", result.ID), slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) SetStatus(ctx context.Context, id int64, status orderdomain.Status) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.SetStatus",
		trace.WithAttributes(attribute.Int64("order.id", id), attribute.String("order.status", string(status))))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.Int64("order.id", id), slog.String("order.status", string(status)))
	result, err := s.inner.SetStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.Int64("order.id", id))
	}
	s.metrics.recordStatusUpdated(ctx, result.Status)
	s.logInfo(ctx, "order status updated", slog.Int64("order.id", result.ID), slog.String("order.status", string(result.Status)))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", id))
	if err := s.inner.Delete(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", id))
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Count")
	defer span.End()

	result, err := s.inner.Count(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to count orders")
	}
	span.SetAttributes(attribute.Int64("orders.count", result))
	return result, nil
}

func (s *Service) FindByStatus(ctx context.Context, status orderdomain.Status) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindByStatus", trace.WithAttributes(attribute.String("order.status", string(status))))
	defer span.End()

	result, err := s.inner.FindByStatus(ctx, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to find orders by status", slog.String("order.status", string(status)))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) FindByCreationDate(ctx context.Context, date time.Time) ([]*orderdomain.Order, error) {
	day := date.Format(time.DateOnly)
	ctx, span := s.tracer.Start(ctx, "OrderService.FindByCreationDate", trace.WithAttributes(attribute.String("order.creation_date", day)))
	defer span.End()

	result, err := s.inner.FindByCreationDate(ctx, date)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to find orders by creation date", slog.String("order.creation_date", day))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) FindByCustomerID(ctx context.Context, customerID int64) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.FindByCustomerID", trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	result, err := s.inner.FindByCustomerID(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to find orders by customer", slog.Int64("customer.id", customerID))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated  metric.Int64Counter
	ordersReplaced metric.Int64Counter
	statusUpdates  metric.Int64Counter
	ordersDeleted  metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	ordersReplaced, _ := m.Int64Counter("orders.service.replaced", metric.WithDescription("Number of orders replaced"))
	statusUpdates, _ := m.Int64Counter("orders.service.status_updated", metric.WithDescription("Number of order status updates"))
	ordersDeleted, _ := m.Int64Counter("orders.service.deleted", metric.WithDescription("Number of orders deleted"))
	return serviceMetrics{
		ordersCreated:  ordersCreated,
		ordersReplaced: ordersReplaced,
		statusUpdates:  statusUpdates,
		ordersDeleted:  ordersDeleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status orderdomain.Status) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordReplaced(ctx context.Context) {
	if m.ordersReplaced != nil {
		m.ordersReplaced.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStatusUpdated(ctx context.Context, status orderdomain.Status) {
	if m.statusUpdates != nil {
		m.statusUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
