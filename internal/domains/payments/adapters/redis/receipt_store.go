package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

var _ ports.ReceiptStore = (*ReceiptStore)(nil)

const keyPrefix = "payments:receipt:"

// ReceiptStore keeps receipts in Redis and lets key expiry bound their lifetime.
type ReceiptStore struct {
	rdb goredis.UniversalClient
	ttl time.Duration
}

// NewReceiptStore wires a Redis-backed receipt store. Caller manages the client lifecycle.
func NewReceiptStore(rdb goredis.UniversalClient, ttl time.Duration) *ReceiptStore {
	return &ReceiptStore{rdb: rdb, ttl: ttl}
}

func (s *ReceiptStore) Lookup(ctx context.Context, key string) (*ports.Receipt, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	orderID, err := s.rdb.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.Receipt{Key: key, OrderID: orderID}, nil
}

// Record uses SETNX so only the first writer of a key wins.
func (s *ReceiptStore) Record(ctx context.Context, receipt ports.Receipt) (bool, error) {
	if err := s.ensureClient(); err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, keyPrefix+receipt.Key, receipt.OrderID, s.ttl).Result()
}

func (s *ReceiptStore) ensureClient() error {
	if s == nil || s.rdb == nil {
		return errors.New("redis receipt store not configured")
	}
	return nil
}
