package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
)

// PlaceOrderInput carries the client-provided order fields.
type PlaceOrderInput struct {
	ID                    string
	OwnerID               string
	Items                 []domain.Item
	TotalAmount           decimal.Decimal
	Discount              decimal.Decimal
	DeliveryFee           decimal.Decimal
	FinalAmount           decimal.Decimal
	PaymentMethod         string
	DeliveryAddress       domain.DeliveryAddress
	EstimatedDeliveryTime string
}

// PlaceOrderResult reports the stored order and whether it already existed.
type PlaceOrderResult struct {
	Order    *domain.Order
	Existing bool
}

// ListResult is one page of orders.
type ListResult struct {
	Orders []*domain.Order
	Total  int64
	Page   int
	Limit  int
}

// StatusBucket aggregates orders sharing a status.
type StatusBucket struct {
	Status      domain.Status
	Count       int
	TotalAmount decimal.Decimal
}

// Summary aggregates an owner's order history.
type Summary struct {
	TotalOrders int
	TotalSpent  decimal.Decimal
	ByStatus    []StatusBucket
}

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (*ListResult, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	UpdateDelivery(ctx context.Context, id string, address *domain.DeliveryAddress, estimated string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
	Summary(ctx context.Context, ownerID string) (*Summary, error)
	Count(ctx context.Context) (int64, error)
}
