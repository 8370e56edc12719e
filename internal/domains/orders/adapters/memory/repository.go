package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrDuplicateID is returned by Create when the identifier is taken.
var ErrDuplicateID = errors.New("order identifier already exists")

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return nil, ErrDuplicateID
	}
	r.orders[order.ID] = order.Clone()
	return order.Clone(), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if existing.Status != expected {
		return nil, ports.ErrStaleStatus
	}
	return r.storeLocked(order, existing), nil
}

// storeLocked keeps payment fields from existing; they are only written by MarkPaid.
func (r *Repository) storeLocked(order, existing *domain.Order) *domain.Order {
	stored := order.Clone()
	if existing != nil {
		stored.PaymentStatus = existing.PaymentStatus
		stored.PaymentTransaction = existing.Clone().PaymentTransaction
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = existing.CreatedAt
		}
	}
	r.orders[order.ID] = stored
	return stored.Clone()
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) FindByIDPrefix(_ context.Context, prefix string) (*domain.Order, error) {
	prefix = strings.ToLower(prefix)
	if prefix == "" {
		return nil, ports.ErrNotFound
	}
	return r.findFirst(func(o *domain.Order) bool {
		return strings.HasPrefix(strings.ToLower(o.ID), prefix)
	})
}

func (r *Repository) FindByLooseIDPrefix(_ context.Context, prefix string) (*domain.Order, error) {
	prefix = looseID(prefix)
	if prefix == "" {
		return nil, ports.ErrNotFound
	}
	return r.findFirst(func(o *domain.Order) bool {
		return strings.HasPrefix(looseID(o.ID), prefix)
	})
}

// findFirst scans newest-first so fuzzy lookups prefer the most recent order.
func (r *Repository) findFirst(match func(*domain.Order) bool) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.sortedLocked() {
		if match(order) {
			return order.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) ListRecent(_ context.Context, limit int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sorted := r.sortedLocked()
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]*domain.Order, 0, len(sorted))
	for _, order := range sorted {
		out = append(out, order.Clone())
	}
	return out, nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*domain.Order, 0)
	for _, order := range r.sortedLocked() {
		if filter.OwnerID != "" && order.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		matched = append(matched, order)
	}
	total := int64(len(matched))
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	out := make([]*domain.Order, 0, len(matched))
	for _, order := range matched {
		out = append(out, order.Clone())
	}
	return out, total, nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

// MarkPaid checks and writes under the same lock, so concurrent callers see
// exactly one winner.
func (r *Repository) MarkPaid(_ context.Context, id string, txn domain.PaymentTransaction, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	updated := stored.Clone()
	if err := updated.MarkPaid(txn, at); err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) {
			return nil, ports.ErrAlreadyPaid
		}
		return nil, err
	}
	r.orders[id] = updated
	return updated.Clone(), nil
}

// Delete removes an order; used by tests and contract fixtures.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) sortedLocked() []*domain.Order {
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, order)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

func looseID(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "")
}
