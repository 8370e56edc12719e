package mapper

import (
	"encoding/json"

	ordermapper "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

// PaymentStatus is the body of GET /payment/status/:orderId.
type PaymentStatus struct {
	Success            bool                            `json:"success"`
	OrderID            string                          `json:"orderId"`
	PaymentStatus      string                          `json:"paymentStatus"`
	Status             string                          `json:"status"`
	FinalAmount        json.Number                     `json:"finalAmount"`
	PaymentTransaction *ordermapper.PaymentTransaction `json:"paymentTransaction"`
}

// CreatePaymentRequest is the body of POST /payment/create.
type CreatePaymentRequest struct {
	OrderID string `json:"orderId"`
}

// BankInfo describes where and how much to transfer.
type BankInfo struct {
	BankName       string      `json:"bankName"`
	AccountNumber  string      `json:"accountNumber"`
	AccountName    string      `json:"accountName"`
	VirtualAccount string      `json:"virtualAccount"`
	Amount         json.Number `json:"amount"`
	Content        string      `json:"content"`
	OrderID        string      `json:"orderId"`
}

// PaymentInfo is the body of POST /payment/create.
type PaymentInfo struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	PaymentInfo BankInfo `json:"paymentInfo"`
	QRContent   string   `json:"qrContent"`
}

func FromStatusView(view *ports.StatusView) PaymentStatus {
	return PaymentStatus{
		Success:            true,
		OrderID:            view.OrderID,
		PaymentStatus:      string(view.PaymentStatus),
		Status:             string(view.Status),
		FinalAmount:        ordermapper.Number(view.FinalAmount),
		PaymentTransaction: ordermapper.FromDomainTransaction(view.PaymentTransaction),
	}
}

func FromPaymentInfo(info *ports.PaymentInfo) PaymentInfo {
	return PaymentInfo{
		Success: true,
		Message: "Payment info created",
		PaymentInfo: BankInfo{
			BankName:       info.Bank.BankName,
			AccountNumber:  info.Bank.AccountNumber,
			AccountName:    info.Bank.AccountName,
			VirtualAccount: info.Bank.VirtualAccount,
			Amount:         ordermapper.Number(info.Amount),
			Content:        info.Content,
			OrderID:        info.OrderID,
		},
		QRContent: info.QRContent,
	}
}
