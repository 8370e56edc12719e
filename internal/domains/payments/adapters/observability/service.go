package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

const tracerName = "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/observability/service"

// Service decorates the payments service with tracing, logging, and metrics.
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

// New wraps the core payments service.
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

func (s *Service) Reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentMatcher.Reconcile", trace.WithAttributes(
		attribute.String("payment.transaction_id", n.TransactionID),
		attribute.String("payment.gateway", n.Gateway),
		attribute.String("payment.transfer_type", n.TransferType),
	))
	defer span.End()

	s.logInfo(ctx, "payment notification received",
		slog.String("transaction.id", n.TransactionID),
		slog.String("gateway", n.Gateway),
		slog.String("content", n.Content),
		slog.String("amount", n.TransferAmount.String()))
	result, err := s.inner.Reconcile(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			s.metrics.recordOutcome(ctx, "invalid_payload")
			s.log(ctx, slog.LevelWarn, "payment notification rejected", slog.String("transaction.id", n.TransactionID), slog.String("error", err.Error()))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "payment reconciliation failed", slog.String("transaction.id", n.TransactionID))
	}
	span.SetAttributes(attribute.String("payment.outcome", string(result.Outcome)), attribute.String("order.id", result.OrderID))
	s.metrics.recordOutcome(ctx, string(result.Outcome))
	if result.Applied() {
		s.metrics.recordAmount(ctx, result.Amount.InexactFloat64())
	}
	s.logOutcome(ctx, n, result)
	return result, nil
}

func (s *Service) PaymentStatus(ctx context.Context, orderID string) (*ports.StatusView, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.PaymentStatus", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	result, err := s.inner.PaymentStatus(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load payment status", slog.String("order.id", orderID))
	}
	return result, nil
}

func (s *Service) PaymentInfo(ctx context.Context, orderID string) (*ports.PaymentInfo, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.PaymentInfo", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	s.logInfo(ctx, "creating payment info", slog.String("order.id", orderID))
	result, err := s.inner.PaymentInfo(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create payment info", slog.String("order.id", orderID))
	}
	return result, nil
}

// logOutcome logs irrelevant and settled notifications at info and anything
// that needs a human at warn.
func (s *Service) logOutcome(ctx context.Context, n domain.Notification, result *domain.Result) {
	attrs := []slog.Attr{
		slog.String("outcome", string(result.Outcome)),
		slog.String("transaction.id", n.TransactionID),
	}
	if result.OrderID != "" {
		attrs = append(attrs, slog.String("order.id", result.OrderID))
	}
	level := slog.LevelInfo
	switch result.Outcome {
	case domain.OutcomeNoIdentifier:
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("code", n.Code), slog.String("content", n.Content))
	case domain.OutcomeOrderNotFound:
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("searched.id", result.SearchedID))
	case domain.OutcomeInsufficient:
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("expected", result.Expected.String()), slog.String("received", result.Received.String()))
	case domain.OutcomeAppliedCancelled:
		level = slog.LevelWarn
	case domain.OutcomeApplied:
		attrs = append(attrs, slog.String("amount", result.Amount.String()), slog.String("gateway", n.Gateway), slog.String("reference", n.ReferenceCode))
	}
	s.log(ctx, level, result.Message, attrs...)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.metrics.recordOutcome(ctx, "error")
	attrs = append(attrs, slog.String("error", err.Error()))
	s.log(ctx, slog.LevelError, msg, attrs...)
	return err
}

type serviceMetrics struct {
	outcomes       metric.Int64Counter
	amountReceived metric.Float64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	outcomes, _ := m.Int64Counter("payments.reconcile.outcomes", metric.WithDescription("Payment notifications by outcome"))
	amountReceived, _ := m.Float64Counter("payments.reconcile.amount_received", metric.WithDescription("Amount settled by bank transfer"), metric.WithUnit("VND"))
	return serviceMetrics{outcomes: outcomes, amountReceived: amountReceived}
}

func (m serviceMetrics) recordOutcome(ctx context.Context, outcome string) {
	if m.outcomes != nil {
		m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m serviceMetrics) recordAmount(ctx context.Context, amount float64) {
	if m.amountReceived != nil {
		m.amountReceived.Add(ctx, amount)
	}
}

var _ ports.Service = (*Service)(nil)
