package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
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

// New wraps the core orders service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.Default(),
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

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("order.owner_id", input.OwnerID), attribute.Int("order.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("order.owner_id", input.OwnerID), slog.String("order.final_amount", input.FinalAmount.String()))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("order.owner_id", input.OwnerID))
	}
	span.SetAttributes(attribute.String("order.id", result.Order.ID), attribute.Bool("order.existing", result.Existing))
	if !result.Existing {
		s.metrics.recordPlaced(ctx, result.Order.Status)
	}
	s.logInfo(ctx, "order placed", slog.String("order.id", result.Order.ID), slog.Bool("existing", result.Existing))
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) (*ports.ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders",
		trace.WithAttributes(attribute.String("order.owner_id", filter.OwnerID), attribute.Int("page", filter.Page)))
	defer span.End()

	result, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("order.owner_id", filter.OwnerID))
	}
	span.SetAttributes(attribute.Int64("orders.total", result.Total))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(attribute.String("order.id", id), attribute.String("order.status", string(status))))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", id), slog.String("status", string(status)))
	result, err := s.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", id))
	}
	return result, nil
}

func (s *Service) UpdateDelivery(ctx context.Context, id string, address *domain.DeliveryAddress, estimated string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateDelivery", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating order delivery", slog.String("order.id", id))
	result, err := s.inner.UpdateDelivery(ctx, id, address, estimated)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order delivery", slog.String("order.id", id))
	}
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", id))
	result, err := s.inner.CancelOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", id))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.String("order.id", id))
	return result, nil
}

func (s *Service) Summary(ctx context.Context, ownerID string) (*ports.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Summary", trace.WithAttributes(attribute.String("order.owner_id", ownerID)))
	defer span.End()

	result, err := s.inner.Summary(ctx, ownerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarize orders", slog.String("order.owner_id", ownerID))
	}
	span.SetAttributes(attribute.Int("orders.total", result.TotalOrders))
	return result, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Count")
	defer span.End()

	result, err := s.inner.Count(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to count orders")
	}
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
	ordersPlaced    metric.Int64Counter
	ordersCancelled metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	ordersCancelled, _ := m.Int64Counter("orders.service.orders_cancelled", metric.WithDescription("Number of orders cancelled"))
	return serviceMetrics{ordersPlaced: ordersPlaced, ordersCancelled: ordersCancelled}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, status domain.Status) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.ordersCancelled != nil {
		m.ordersCancelled.Add(ctx, 1)
	}
}

var _ ports.Service = (*Service)(nil)
