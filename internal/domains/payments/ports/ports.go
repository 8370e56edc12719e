package ports

import (
	"context"
	"time"

	orderdomain "github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
)

// OrderStore is the slice of the order repository the matcher depends on.
// Lookups return orders ports.ErrNotFound on a miss; MarkPaid returns
// orders ports.ErrAlreadyPaid when the order is no longer unpaid.
type OrderStore interface {
	GetByID(ctx context.Context, id string) (*orderdomain.Order, error)
	FindByIDPrefix(ctx context.Context, prefix string) (*orderdomain.Order, error)
	FindByLooseIDPrefix(ctx context.Context, prefix string) (*orderdomain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*orderdomain.Order, error)
	MarkPaid(ctx context.Context, id string, txn orderdomain.PaymentTransaction, at time.Time) (*orderdomain.Order, error)
}

// Receipt remembers that a notification already settled an order.
type Receipt struct {
	Key        string
	OrderID    string
	RecordedAt time.Time
}

// ReceiptStore keeps receipts for a bounded time.
type ReceiptStore interface {
	// Lookup returns nil when no live receipt exists for key.
	Lookup(ctx context.Context, key string) (*Receipt, error)
	// Record stores the receipt unless one exists; created reports whether this call stored it.
	Record(ctx context.Context, receipt Receipt) (created bool, err error)
}

// Reconciler applies one notification.
type Reconciler interface {
	Reconcile(ctx context.Context, notification domain.Notification) (*domain.Result, error)
}

// WorkflowOrchestrator runs reconciliation durably or inline.
type WorkflowOrchestrator interface {
	Reconcile(ctx context.Context, notification domain.Notification) (*domain.Result, error)
}
