package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrAlreadyPaid is returned by MarkPaid when the order stopped being unpaid
	// before the write landed.
	ErrAlreadyPaid = errors.New("order already paid")
	// ErrStaleStatus is returned by Update when the stored status moved since it was read.
	ErrStaleStatus = errors.New("order status changed concurrently")
)

// ListFilter narrows List results. Zero values mean "any".
type ListFilter struct {
	OwnerID       string
	Status        domain.Status
	PaymentStatus domain.PaymentStatus
	Page          int
	Limit         int
}

// Repository persists orders. Lookups by identifier return ErrNotFound on a miss.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update writes the order only while the stored status still equals expected.
	Update(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByIDPrefix returns an order whose identifier starts with prefix, ignoring case.
	FindByIDPrefix(ctx context.Context, prefix string) (*domain.Order, error)
	// FindByLooseIDPrefix returns an order whose identifier starts with prefix
	// once both are lowercased and stripped of hyphens.
	FindByLooseIDPrefix(ctx context.Context, prefix string) (*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Order, int64, error)
	Count(ctx context.Context) (int64, error)
	// MarkPaid applies the paid transition only while the stored order is unpaid.
	MarkPaid(ctx context.Context, id string, txn domain.PaymentTransaction, at time.Time) (*domain.Order, error)
}
