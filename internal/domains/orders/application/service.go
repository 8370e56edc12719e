package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Service orchestrates order use cases.
type Service struct {
	repo     ports.Repository
	idPrefix string
	now      func() time.Time
}

type Option func(*Service)

// WithIdentifierPrefix overrides the prefix of generated order identifiers.
func WithIdentifierPrefix(prefix string) Option {
	return func(s *Service) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.idPrefix = p
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

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, idPrefix: domain.DefaultIdentifierPrefix, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder validates and stores a new order. Re-submitting an identifier that
// already exists returns the stored order untouched.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.PlaceOrderResult, error) {
	now := s.now().UTC()
	id := strings.TrimSpace(input.ID)
	if id != "" {
		existing, err := s.repo.GetByID(ctx, id)
		if err == nil {
			return &ports.PlaceOrderResult{Order: existing, Existing: true}, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
	} else {
		generated, err := domain.NewIdentifier(s.idPrefix, now)
		if err != nil {
			return nil, err
		}
		id = generated
	}
	paymentMethod := strings.TrimSpace(input.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = "bank_transfer"
	}
	order := &domain.Order{
		ID:                    id,
		OwnerID:               strings.TrimSpace(input.OwnerID),
		Items:                 append([]domain.Item(nil), input.Items...),
		TotalAmount:           input.TotalAmount,
		Discount:              input.Discount,
		DeliveryFee:           input.DeliveryFee,
		FinalAmount:           input.FinalAmount,
		Status:                domain.StatusPending,
		PaymentMethod:         paymentMethod,
		PaymentStatus:         domain.PaymentUnpaid,
		DeliveryAddress:       input.DeliveryAddress,
		EstimatedDeliveryTime: input.EstimatedDeliveryTime,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.PlaceOrderResult{Order: saved}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// ListOrders returns one page of orders, newest first.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) (*ports.ListResult, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	if filter.PaymentStatus != "" && !domain.IsValidPaymentStatus(filter.PaymentStatus) {
		return nil, mapError(domain.ErrInvalidPayment)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ListResult{Orders: orders, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	read := order.Status
	if err := order.UpdateStatus(status, s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	return s.update(ctx, order, read)
}

func (s *Service) UpdateDelivery(ctx context.Context, id string, address *domain.DeliveryAddress, estimated string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.UpdateDelivery(address, strings.TrimSpace(estimated), s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	return s.update(ctx, order, domain.StatusPending)
}

func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	return s.update(ctx, order, domain.StatusPending)
}

// update persists a change decided on a status read earlier; a payment landing
// in between surfaces as a conflict instead of being overwritten.
func (s *Service) update(ctx context.Context, order *domain.Order, read domain.Status) (*domain.Order, error) {
	updated, err := s.repo.Update(ctx, order, read)
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// Summary aggregates an owner's orders by status and sums what was actually paid.
func (s *Service) Summary(ctx context.Context, ownerID string) (*ports.Summary, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, mapError(domain.ErrEmptyOwner)
	}
	orders, _, err := s.repo.List(ctx, ports.ListFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	summary := &ports.Summary{TotalOrders: len(orders), TotalSpent: decimal.Zero}
	buckets := map[domain.Status]*ports.StatusBucket{}
	for _, order := range orders {
		bucket, ok := buckets[order.Status]
		if !ok {
			bucket = &ports.StatusBucket{Status: order.Status, TotalAmount: decimal.Zero}
			buckets[order.Status] = bucket
		}
		bucket.Count++
		bucket.TotalAmount = bucket.TotalAmount.Add(order.FinalAmount)
		if order.PaymentStatus == domain.PaymentPaid {
			summary.TotalSpent = summary.TotalSpent.Add(order.FinalAmount)
		}
	}
	for _, bucket := range buckets {
		summary.ByStatus = append(summary.ByStatus, *bucket)
	}
	sort.Slice(summary.ByStatus, func(i, j int) bool { return summary.ByStatus[i].Status < summary.ByStatus[j].Status })
	return summary, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

var _ ports.Service = (*Service)(nil)
