package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/nikolayk812/lpg-cart/internal/domain"
	"github.com/nikolayk812/lpg-cart/internal/port"
)

const tracerName = "github.com/nikolayk812/lpg-cart/internal/observability"

// CartService decorates a cart service with tracing, logging and metrics.
type CartService struct {
	inner   port.CartService
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics cartMetrics
}

type Option func(*CartService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *CartService) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *CartService) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *CartService) {
		s.metrics = newCartMetrics(m)
	}
}

func NewCartService(inner port.CartService, opts ...Option) *CartService {
	s := &CartService{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
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

func (s *CartService) Open(ctx context.Context, ownerID string) error {
	ctx, span := s.tracer.Start(ctx, "CartService.Open")
	defer span.End()

	if err := s.inner.Open(ctx, ownerID); err != nil {
		return s.handleError(ctx, span, err, "failed to open cart")
	}
	snapshot := s.inner.Snapshot()
	span.SetAttributes(attribute.Int("cart.lines", len(snapshot.Lines)))
	s.logInfo(ctx, "cart opened", slog.Int("cart.lines", len(snapshot.Lines)), slog.Bool("cart.outbox", snapshot.HasOutbox()))
	return nil
}

func (s *CartService) Add(ctx context.Context, productID string, variant domain.Variant, quantity int) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Add", trace.WithAttributes(
		attribute.String("product.id", productID),
		attribute.String("line.variant", string(variant)),
		attribute.Int("line.quantity", quantity),
	))
	defer span.End()

	result, err := s.inner.Add(ctx, productID, variant, quantity)
	s.metrics.recordMutation(ctx, "add", result.Status)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to add cart line", slog.String("product.id", productID))
	}
	s.logResult(ctx, span, "cart line added", result)
	return result, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, lineID string, quantity int) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity", trace.WithAttributes(
		attribute.String("line.id", lineID),
		attribute.Int("line.quantity", quantity),
	))
	defer span.End()

	result, err := s.inner.UpdateQuantity(ctx, lineID, quantity)
	s.metrics.recordMutation(ctx, "update", result.Status)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to update cart line", slog.String("line.id", lineID))
	}
	s.logResult(ctx, span, "cart line updated", result)
	return result, nil
}

func (s *CartService) Remove(ctx context.Context, lineID string) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Remove", trace.WithAttributes(attribute.String("line.id", lineID)))
	defer span.End()

	result, err := s.inner.Remove(ctx, lineID)
	s.metrics.recordMutation(ctx, "remove", result.Status)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to remove cart line", slog.String("line.id", lineID))
	}
	s.logResult(ctx, span, "cart line removed", result)
	return result, nil
}

func (s *CartService) Clear(ctx context.Context) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear")
	defer span.End()

	result, err := s.inner.Clear(ctx)
	s.metrics.recordMutation(ctx, "clear", result.Status)
	if err != nil {
		return result, s.handleError(ctx, span, err, "failed to clear cart")
	}
	span.SetAttributes(attribute.String("result.status", string(result.Status)))
	s.logInfo(ctx, "cart cleared", slog.String("result.status", string(result.Status)))
	return result, nil
}

func (s *CartService) Sync(ctx context.Context) (domain.SyncReport, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Sync")
	defer span.End()

	report, err := s.inner.Sync(ctx)
	span.SetAttributes(
		attribute.Int("sync.pushed", report.Pushed),
		attribute.Int("sync.removed", report.Removed),
		attribute.Int("sync.failed", report.Failed),
	)
	s.metrics.recordSync(ctx, report, err)
	if err != nil {
		return report, s.handleError(ctx, span, err, "failed to sync cart")
	}
	s.logInfo(ctx, "cart synced",
		slog.Int("sync.pushed", report.Pushed),
		slog.Int("sync.removed", report.Removed),
		slog.Int("sync.failed", report.Failed),
		slog.Int("cart.lines", report.Lines),
	)
	return report, nil
}

func (s *CartService) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Checkout", trace.WithAttributes(
		attribute.String("schedule.frequency", string(req.Schedule.Frequency)),
	))
	defer span.End()

	order, err := s.inner.Checkout(ctx, req)
	if err != nil {
		return order, s.handleError(ctx, span, err, "failed to place order")
	}
	s.metrics.recordOrder(ctx, order.Status)
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.logInfo(ctx, "order placed", slog.String("order.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *CartService) Snapshot() domain.CartSnapshot {
	return s.inner.Snapshot()
}

func (s *CartService) logResult(ctx context.Context, span trace.Span, msg string, result domain.Result) {
	span.SetAttributes(
		attribute.String("line.id", result.Line.ID),
		attribute.String("result.status", string(result.Status)),
	)
	s.logInfo(ctx, msg,
		slog.String("line.id", result.Line.ID),
		slog.String("product.id", result.Line.ProductID),
		slog.Int("line.quantity", result.Line.Quantity),
		slog.String("result.status", string(result.Status)),
	)
}

func (s *CartService) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *CartService) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *CartService) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type cartMetrics struct {
	mutations metric.Int64Counter
	syncs     metric.Int64Counter
	orders    metric.Int64Counter
}

func newCartMetrics(m metric.Meter) cartMetrics {
	if m == nil {
		return cartMetrics{}
	}
	mutations, _ := m.Int64Counter("cart.mutations", metric.WithDescription("Cart mutations by operation and outcome"))
	syncs, _ := m.Int64Counter("cart.syncs", metric.WithDescription("Cart sync attempts by outcome"))
	orders, _ := m.Int64Counter("cart.orders_placed", metric.WithDescription("Orders placed from the cart"))
	return cartMetrics{mutations: mutations, syncs: syncs, orders: orders}
}

func (m cartMetrics) recordMutation(ctx context.Context, op string, status domain.ResultStatus) {
	if m.mutations == nil {
		return
	}
	if status == "" {
		status = "rejected"
	}
	m.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cart.operation", op),
		attribute.String("result.status", string(status)),
	))
}

func (m cartMetrics) recordSync(ctx context.Context, report domain.SyncReport, err error) {
	if m.syncs == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case report.Failed > 0:
		outcome = "partial"
	}
	m.syncs.Add(ctx, 1, metric.WithAttributes(attribute.String("sync.outcome", outcome)))
}

func (m cartMetrics) recordOrder(ctx context.Context, status domain.OrderStatus) {
	if m.orders != nil {
		m.orders.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

var _ port.CartService = (*CartService)(nil)
