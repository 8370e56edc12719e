package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
)

// TransactionID accepts the gateway transaction id as either a JSON number or string.
type TransactionID string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TransactionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*t = TransactionID(strings.TrimSpace(value))
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("transaction id must be a number or string: %w", err)
	}
	*t = TransactionID(number.String())
	return nil
}

// SepayNotification is the webhook body pushed by the Sepay gateway.
type SepayNotification struct {
	ID              TransactionID   `json:"id"`
	Gateway         string          `json:"gateway"`
	TransactionDate string          `json:"transactionDate"`
	AccountNumber   string          `json:"accountNumber"`
	SubAccount      string          `json:"subAccount"`
	Code            *string         `json:"code"`
	Content         string          `json:"content"`
	TransferType    string          `json:"transferType"`
	TransferAmount  decimal.Decimal `json:"transferAmount"`
	Accumulated     decimal.Decimal `json:"accumulated"`
	ReferenceCode   string          `json:"referenceCode"`
	Description     string          `json:"description"`
}

// ToDomainNotification converts the webhook body into the matcher input.
func ToDomainNotification(body SepayNotification) domain.Notification {
	notification := domain.Notification{
		TransactionID:   string(body.ID),
		Gateway:         body.Gateway,
		TransactionDate: body.TransactionDate,
		AccountNumber:   body.AccountNumber,
		SubAccount:      body.SubAccount,
		Content:         body.Content,
		TransferType:    body.TransferType,
		TransferAmount:  body.TransferAmount,
		Accumulated:     body.Accumulated,
		ReferenceCode:   body.ReferenceCode,
		Description:     body.Description,
	}
	if body.Code != nil {
		notification.Code = *body.Code
	}
	return notification
}

// WebhookResponse is the acknowledgement returned to the gateway.
type WebhookResponse struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	OrderID       string      `json:"orderId,omitempty"`
	SearchedID    string      `json:"searchedId,omitempty"`
	Hint          string      `json:"hint,omitempty"`
	TransactionID string      `json:"transactionId,omitempty"`
	Amount        json.Number `json:"amount,omitempty"`
	Expected      json.Number `json:"expected,omitempty"`
	Received      json.Number `json:"received,omitempty"`
}

// FromResult renders a matcher result for the gateway.
func FromResult(result *domain.Result) WebhookResponse {
	if result == nil {
		return WebhookResponse{}
	}
	response := WebhookResponse{
		Success:       result.Success,
		Message:       result.Message,
		OrderID:       result.OrderID,
		SearchedID:    result.SearchedID,
		Hint:          result.Hint,
		TransactionID: result.TransactionID,
	}
	switch result.Outcome {
	case domain.OutcomeApplied, domain.OutcomeAppliedCancelled:
		response.Amount = json.Number(result.Amount.String())
	case domain.OutcomeInsufficient:
		response.Expected = json.Number(result.Expected.String())
		response.Received = json.Number(result.Received.String())
	}
	return response
}
