package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	orderdomain "github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

const (
	recentOrdersForDiagnostics = 5
	minOrderIDLength           = 3
)

// Config carries the merchant-side settings of the matcher.
type Config struct {
	// ExpectedSubAccount is the virtual account notifications must target. Empty disables the check.
	ExpectedSubAccount string
	IdentifierPrefix   string
	Bank               ports.BankAccount
}

// Service matches bank-transfer notifications to orders and answers payment queries.
type Service struct {
	orders    ports.OrderStore
	receipts  ports.ReceiptStore
	extractor *domain.Extractor
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithReceiptStore enables replay short-circuiting by gateway transaction.
func WithReceiptStore(store ports.ReceiptStore) Option {
	return func(s *Service) {
		s.receipts = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(orders ports.OrderStore, cfg Config, opts ...Option) *Service {
	if strings.TrimSpace(cfg.IdentifierPrefix) == "" {
		cfg.IdentifierPrefix = orderdomain.DefaultIdentifierPrefix
	}
	s := &Service{
		orders:    orders,
		extractor: domain.NewExtractor(cfg.IdentifierPrefix),
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Reconcile resolves the notification to one order and settles it at most once.
// Business rejections come back as results; only malformed input and store failures are errors.
func (s *Service) Reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if !n.IsIncoming() {
		return done(domain.NotIncoming())
	}
	if s.cfg.ExpectedSubAccount != "" && n.SubAccount != "" && n.SubAccount != s.cfg.ExpectedSubAccount {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "virtual account mismatch",
			slog.String("expected", s.cfg.ExpectedSubAccount), slog.String("received", n.SubAccount))
		return done(domain.AccountMismatch())
	}
	if receipt := s.lookupReceipt(ctx, n); receipt != nil {
		return done(domain.AlreadyPaid(receipt.OrderID))
	}

	candidate, ok := s.extractor.Extract(n.Code, n.Content)
	if !ok {
		return done(domain.NoIdentifier())
	}
	order, err := s.resolve(ctx, candidate)
	if errors.Is(err, orderports.ErrNotFound) {
		s.logRecentOrders(ctx, candidate)
		return done(domain.OrderNotFound(candidate))
	}
	if err != nil {
		return nil, fmt.Errorf("resolve order %q: %w", candidate, err)
	}

	switch order.PaymentStatus {
	case orderdomain.PaymentPaid:
		return done(domain.AlreadyPaid(order.ID))
	case orderdomain.PaymentRefunded:
		return done(domain.Refunded(order.ID))
	}
	if n.TransferAmount.LessThan(order.FinalAmount) {
		return done(domain.Insufficient(order.ID, order.FinalAmount, n.TransferAmount))
	}

	paid, err := s.orders.MarkPaid(ctx, order.ID, toTransaction(n), s.now().UTC())
	switch {
	case errors.Is(err, orderports.ErrAlreadyPaid):
		return done(domain.AlreadyPaid(order.ID))
	case errors.Is(err, orderports.ErrNotFound):
		return done(domain.OrderNotFound(candidate))
	case err != nil:
		return nil, fmt.Errorf("mark order %q paid: %w", order.ID, err)
	}
	s.recordReceipt(ctx, n, paid.ID)

	if surplus := n.TransferAmount.Sub(paid.FinalAmount); surplus.IsPositive() {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "order overpaid",
			slog.String("order.id", paid.ID), slog.String("surplus", surplus.String()))
	}
	cancelled := paid.Status == orderdomain.StatusCancelled
	if cancelled {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "payment recorded for cancelled order",
			slog.String("order.id", paid.ID), slog.String("transaction.id", n.TransactionID))
	}
	return done(domain.Applied(paid.ID, n.TransactionID, n.TransferAmount, cancelled))
}

// resolve tries exact, then prefix, then a hyphen-insensitive prefix match that
// tolerates narratives dropping hyphens and truncating the suffix. Looser
// strategies only run after stricter ones miss.
func (s *Service) resolve(ctx context.Context, candidate string) (*orderdomain.Order, error) {
	order, err := s.orders.GetByID(ctx, candidate)
	if !errors.Is(err, orderports.ErrNotFound) {
		return order, err
	}
	order, err = s.orders.FindByIDPrefix(ctx, candidate)
	if !errors.Is(err, orderports.ErrNotFound) {
		return order, err
	}
	rest, ok := s.extractor.Remainder(candidate)
	if !ok {
		return nil, orderports.ErrNotFound
	}
	return s.orders.FindByLooseIDPrefix(ctx, s.extractor.Prefix()+rest)
}

// PaymentStatus reports the payment state of an order.
func (s *Service) PaymentStatus(ctx context.Context, orderID string) (*ports.StatusView, error) {
	orderID = strings.TrimSpace(orderID)
	if len(orderID) < minOrderIDLength {
		return nil, fmt.Errorf("%w: invalid order ID format", ErrInvalidInput)
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderports.ErrNotFound) {
			s.logRecentOrders(ctx, orderID)
		}
		return nil, err
	}
	return &ports.StatusView{
		OrderID:            order.ID,
		PaymentStatus:      order.PaymentStatus,
		Status:             order.Status,
		FinalAmount:        order.FinalAmount,
		PaymentTransaction: order.PaymentTransaction,
	}, nil
}

// PaymentInfo returns the bank details and QR payload for an unpaid order.
func (s *Service) PaymentInfo(ctx context.Context, orderID string) (*ports.PaymentInfo, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order ID is required", ErrInvalidInput)
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == orderdomain.PaymentPaid {
		return nil, orderports.ErrAlreadyPaid
	}
	return &ports.PaymentInfo{
		Bank:      s.cfg.Bank,
		Amount:    order.FinalAmount,
		Content:   order.ID,
		OrderID:   order.ID,
		QRContent: fmt.Sprintf("%s|%s|%s", s.cfg.Bank.VirtualAccount, order.FinalAmount.String(), order.ID),
	}, nil
}

func (s *Service) lookupReceipt(ctx context.Context, n domain.Notification) *ports.Receipt {
	if s.receipts == nil {
		return nil
	}
	receipt, err := s.receipts.Lookup(ctx, n.ReceiptKey())
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "receipt lookup failed",
			slog.String("receipt.key", n.ReceiptKey()), slog.String("error", err.Error()))
		return nil
	}
	return receipt
}

func (s *Service) recordReceipt(ctx context.Context, n domain.Notification, orderID string) {
	if s.receipts == nil {
		return
	}
	receipt := ports.Receipt{Key: n.ReceiptKey(), OrderID: orderID, RecordedAt: s.now().UTC()}
	if _, err := s.receipts.Record(ctx, receipt); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "receipt record failed",
			slog.String("receipt.key", receipt.Key), slog.String("order.id", orderID), slog.String("error", err.Error()))
	}
}

func (s *Service) logRecentOrders(ctx context.Context, searched string) {
	recent, err := s.orders.ListRecent(ctx, recentOrdersForDiagnostics)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to list recent orders", slog.String("error", err.Error()))
		return
	}
	ids := make([]string, 0, len(recent))
	for _, order := range recent {
		ids = append(ids, fmt.Sprintf("%s (%s, %s)", order.ID, order.PaymentStatus, order.CreatedAt.Format(time.RFC3339)))
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "order not found",
		slog.String("searched.id", searched), slog.Any("recent.orders", ids))
}

func toTransaction(n domain.Notification) orderdomain.PaymentTransaction {
	return orderdomain.PaymentTransaction{
		TransactionID:   n.TransactionID,
		Gateway:         n.Gateway,
		TransactionDate: n.TransactionDate,
		Amount:          n.TransferAmount,
		ReferenceNumber: n.ReferenceCode,
		Content:         n.Content,
		Description:     n.Description,
		SubAccount:      n.SubAccount,
	}
}

func done(result domain.Result) (*domain.Result, error) {
	return &result, nil
}

var (
	_ ports.Service    = (*Service)(nil)
	_ ports.Reconciler = (*Service)(nil)
)
