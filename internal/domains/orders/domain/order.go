package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order fulfilment progression.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus enumerates the settlement state of an order.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

var (
	ErrEmptyIdentifier    = errors.New("order identifier is required")
	ErrEmptyOwner         = errors.New("order owner is required")
	ErrNoItems            = errors.New("order must contain at least one item")
	ErrInvalidItem        = errors.New("order item is invalid")
	ErrInvalidAmount      = errors.New("final amount must be greater than zero")
	ErrInvalidStatus      = errors.New("order status is invalid")
	ErrInvalidPayment     = errors.New("payment status is invalid")
	ErrMissingAddress     = errors.New("delivery address and phone are required")
	ErrNotPending         = errors.New("only pending orders can be modified")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrMissingTransaction = errors.New("payment transaction is required")
)

// Item is a single dessert line on an order.
type Item struct {
	DessertID    string
	DessertName  string
	DessertImage string
	Quantity     int32
	Price        decimal.Decimal
	Discount     decimal.Decimal
}

// DeliveryAddress is where the order is delivered.
type DeliveryAddress struct {
	FullAddress string
	Phone       string
	Note        string
}

// PaymentTransaction records the bank transfer that settled the order.
type PaymentTransaction struct {
	TransactionID   string
	Gateway         string
	TransactionDate string
	Amount          decimal.Decimal
	ReferenceNumber string
	Content         string
	Description     string
	SubAccount      string
}

// Order is the purchase aggregate.
type Order struct {
	ID                    string
	OwnerID               string
	Items                 []Item
	TotalAmount           decimal.Decimal
	Discount              decimal.Decimal
	DeliveryFee           decimal.Decimal
	FinalAmount           decimal.Decimal
	Status                Status
	PaymentMethod         string
	PaymentStatus         PaymentStatus
	DeliveryAddress       DeliveryAddress
	EstimatedDeliveryTime string
	PaymentTransaction    *PaymentTransaction
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrEmptyIdentifier
	}
	if strings.TrimSpace(o.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, item := range o.Items {
		if strings.TrimSpace(item.DessertID) == "" || item.Quantity < 1 || item.Price.IsNegative() {
			return ErrInvalidItem
		}
	}
	if !o.FinalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(o.DeliveryAddress.FullAddress) == "" || strings.TrimSpace(o.DeliveryAddress.Phone) == "" {
		return ErrMissingAddress
	}
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if !IsValidPaymentStatus(o.PaymentStatus) {
		return ErrInvalidPayment
	}
	return nil
}

// UpdateStatus moves the order to a known fulfilment state.
func (o *Order) UpdateStatus(status Status, at time.Time) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	o.UpdatedAt = at
	return nil
}

// Cancel marks a pending order as cancelled.
func (o *Order) Cancel(at time.Time) error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	o.Status = StatusCancelled
	o.UpdatedAt = at
	return nil
}

// UpdateDelivery replaces delivery details while the order is still pending.
func (o *Order) UpdateDelivery(address *DeliveryAddress, estimated string, at time.Time) error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	if address != nil {
		if strings.TrimSpace(address.FullAddress) == "" || strings.TrimSpace(address.Phone) == "" {
			return ErrMissingAddress
		}
		o.DeliveryAddress = *address
	}
	if estimated != "" {
		o.EstimatedDeliveryTime = estimated
	}
	o.UpdatedAt = at
	return nil
}

// MarkPaid settles an unpaid order with the given transfer. A pending order
// advances to confirmed; any later status is kept.
func (o *Order) MarkPaid(txn PaymentTransaction, at time.Time) error {
	if o.PaymentStatus != PaymentUnpaid {
		return ErrAlreadyPaid
	}
	if strings.TrimSpace(txn.TransactionID) == "" {
		return ErrMissingTransaction
	}
	o.PaymentStatus = PaymentPaid
	if o.Status == StatusPending {
		o.Status = StatusConfirmed
	}
	record := txn
	o.PaymentTransaction = &record
	o.UpdatedAt = at
	return nil
}

// Clone returns a deep copy so adapters never share mutable state with callers.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	if o.PaymentTransaction != nil {
		txn := *o.PaymentTransaction
		clone.PaymentTransaction = &txn
	}
	return &clone
}

func IsValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusDelivering, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsValidPaymentStatus(status PaymentStatus) bool {
	switch status {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	default:
		return false
	}
}
