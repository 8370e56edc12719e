package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// TransferIn is the only direction that can settle an order.
const TransferIn = "in"

// ErrInvalidPayload marks a notification without a transaction id or content.
var ErrInvalidPayload = errors.New("invalid webhook data")

// Notification is one inbound bank-transfer event as delivered by the gateway.
type Notification struct {
	TransactionID   string
	Gateway         string
	TransactionDate string
	AccountNumber   string
	SubAccount      string
	Code            string
	Content         string
	TransferType    string
	TransferAmount  decimal.Decimal
	Accumulated     decimal.Decimal
	ReferenceCode   string
	Description     string
}

// Validate rejects notifications the matcher cannot reason about.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.TransactionID) == "" || strings.TrimSpace(n.Content) == "" {
		return ErrInvalidPayload
	}
	return nil
}

// IsIncoming reports whether money moved into the account.
func (n Notification) IsIncoming() bool {
	return n.TransferType == TransferIn
}

// ReceiptKey identifies the notification across gateway retries.
func (n Notification) ReceiptKey() string {
	return strings.TrimSpace(n.Gateway) + ":" + strings.TrimSpace(n.TransactionID)
}
