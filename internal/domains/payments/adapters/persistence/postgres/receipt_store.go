package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

var _ ports.ReceiptStore = (*ReceiptStore)(nil)

// ReceiptStore persists receipts in PostgreSQL with an explicit expiry column.
type ReceiptStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewReceiptStore wires a PostgreSQL-backed receipt store.
func NewReceiptStore(db *gorm.DB, ttl time.Duration) *ReceiptStore {
	return &ReceiptStore{db: db, ttl: ttl, now: time.Now}
}

// Lookup returns the live receipt for key, or nil when absent or expired.
func (s *ReceiptStore) Lookup(ctx context.Context, key string) (*ports.Receipt, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record receiptRecord
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now().UTC()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.Receipt{Key: record.Key, OrderID: record.OrderID, RecordedAt: record.CreatedAt}, nil
}

// Record inserts the receipt, replacing an expired one. created is false when a live receipt exists.
func (s *ReceiptStore) Record(ctx context.Context, receipt ports.Receipt) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	now := s.now().UTC()
	if receipt.RecordedAt.IsZero() {
		receipt.RecordedAt = now
	}
	record := receiptRecord{
		Key:       receipt.Key,
		OrderID:   receipt.OrderID,
		ExpiresAt: receipt.RecordedAt.Add(s.ttl),
		CreatedAt: receipt.RecordedAt,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"order_id":   record.OrderID,
				"expires_at": record.ExpiresAt,
				"created_at": record.CreatedAt,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lte{Column: clause.Column{Table: "payment_receipts", Name: "expires_at"}, Value: now},
			}},
		}).Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Purge deletes expired receipts.
func (s *ReceiptStore) Purge(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&receiptRecord{})
	return result.RowsAffected, result.Error
}

func (s *ReceiptStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres receipt store not configured")
	}
	return nil
}

type receiptRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:255"`
	OrderID   string    `gorm:"column:order_id;size:64;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (receiptRecord) TableName() string { return "payment_receipts" }
