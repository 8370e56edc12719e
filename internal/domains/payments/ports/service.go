package ports

import (
	"context"

	"github.com/shopspring/decimal"

	orderdomain "github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
)

// StatusView is the payment state of one order.
type StatusView struct {
	OrderID            string
	PaymentStatus      orderdomain.PaymentStatus
	Status             orderdomain.Status
	FinalAmount        decimal.Decimal
	PaymentTransaction *orderdomain.PaymentTransaction
}

// BankAccount is where customers transfer money.
type BankAccount struct {
	BankName       string
	AccountNumber  string
	AccountName    string
	VirtualAccount string
}

// PaymentInfo tells the customer how to pay an order.
type PaymentInfo struct {
	Bank      BankAccount
	Amount    decimal.Decimal
	Content   string
	OrderID   string
	QRContent string
}

// Service exposes payment use cases to adapters.
type Service interface {
	Reconciler
	PaymentStatus(ctx context.Context, orderID string) (*StatusView, error)
	PaymentInfo(ctx context.Context, orderID string) (*PaymentInfo, error)
}
