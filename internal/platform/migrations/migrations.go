package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&paymentReceiptRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID                    string          `gorm:"primaryKey;column:id;size:64"`
	OwnerID               string          `gorm:"column:owner_id;size:128;index:idx_orders_owner_created"`
	Items                 []orderItem     `gorm:"column:items;serializer:json"`
	DessertIDs            pq.StringArray  `gorm:"column:dessert_ids;type:text[]"`
	TotalAmount           decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	Discount              decimal.Decimal `gorm:"column:discount;type:numeric(14,2)"`
	DeliveryFee           decimal.Decimal `gorm:"column:delivery_fee;type:numeric(14,2)"`
	FinalAmount           decimal.Decimal `gorm:"column:final_amount;type:numeric(14,2)"`
	Status                string          `gorm:"column:status;type:varchar(32);index"`
	PaymentMethod         string          `gorm:"column:payment_method;type:varchar(32)"`
	PaymentStatus         string          `gorm:"column:payment_status;type:varchar(32);index"`
	FullAddress           string          `gorm:"column:full_address"`
	Phone                 string          `gorm:"column:phone;size:32"`
	Note                  string          `gorm:"column:note"`
	EstimatedDeliveryTime string          `gorm:"column:estimated_delivery_time"`
	TransactionID         *string         `gorm:"column:payment_transaction_id;size:128"`
	Gateway               string          `gorm:"column:payment_gateway;size:64"`
	TransactionDate       string          `gorm:"column:payment_transaction_date;size:64"`
	PaidAmount            decimal.Decimal `gorm:"column:payment_amount;type:numeric(14,2)"`
	ReferenceNumber       string          `gorm:"column:payment_reference_number;size:128"`
	TransferContent       string          `gorm:"column:payment_content"`
	TransferDescription   string          `gorm:"column:payment_description"`
	SubAccount            string          `gorm:"column:payment_sub_account;size:64"`
	CreatedAt             time.Time       `gorm:"column:created_at;index:idx_orders_owner_created"`
	UpdatedAt             time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItem struct {
	DessertID    string          `json:"dessertId"`
	DessertName  string          `json:"dessertName,omitempty"`
	DessertImage string          `json:"dessertImage,omitempty"`
	Quantity     int32           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
}

// Payment receipt schema mirrors the payments Postgres receipt store.
type paymentReceiptRecord struct {
	Key       string    `gorm:"primaryKey;column:key;size:255"`
	OrderID   string    `gorm:"column:order_id;size:64;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (paymentReceiptRecord) TableName() string { return "payment_receipts" }
