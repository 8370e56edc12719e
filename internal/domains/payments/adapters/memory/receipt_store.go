package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

var _ ports.ReceiptStore = (*ReceiptStore)(nil)

// DefaultReceiptTTL bounds how long replays are short-circuited.
const DefaultReceiptTTL = 72 * time.Hour

// ReceiptStore keeps receipts in process memory with per-entry expiry.
type ReceiptStore struct {
	mu       sync.RWMutex
	receipts map[string]ports.Receipt
	ttl      time.Duration
	now      func() time.Time
}

// NewReceiptStore constructs an empty store. A non-positive ttl uses DefaultReceiptTTL.
func NewReceiptStore(ttl time.Duration) *ReceiptStore {
	if ttl <= 0 {
		ttl = DefaultReceiptTTL
	}
	return &ReceiptStore{
		receipts: map[string]ports.Receipt{},
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *ReceiptStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *ReceiptStore) Lookup(_ context.Context, key string) (*ports.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[key]
	if !ok || s.expired(receipt) {
		return nil, nil
	}
	copy := receipt
	return &copy, nil
}

func (s *ReceiptStore) Record(_ context.Context, receipt ports.Receipt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.receipts[receipt.Key]; ok && !s.expired(existing) {
		return false, nil
	}
	if receipt.RecordedAt.IsZero() {
		receipt.RecordedAt = s.now()
	}
	s.receipts[receipt.Key] = receipt
	return true, nil
}

// Sweep drops expired receipts and returns how many were removed.
func (s *ReceiptStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, receipt := range s.receipts {
		if s.expired(receipt) {
			delete(s.receipts, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *ReceiptStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *ReceiptStore) expired(receipt ports.Receipt) bool {
	return !s.now().Before(receipt.RecordedAt.Add(s.ttl))
}
