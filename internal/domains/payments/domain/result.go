package domain

import "github.com/shopspring/decimal"

// Outcome classifies how a notification was handled.
type Outcome string

const (
	OutcomeApplied          Outcome = "applied"
	OutcomeAppliedCancelled Outcome = "applied_cancelled"
	OutcomeNotIncoming      Outcome = "not_incoming"
	OutcomeAccountMismatch  Outcome = "account_mismatch"
	OutcomeNoIdentifier     Outcome = "no_identifier"
	OutcomeOrderNotFound    Outcome = "order_not_found"
	OutcomeAlreadyPaid      Outcome = "already_paid"
	OutcomeRefunded         Outcome = "refunded"
	OutcomeInsufficient     Outcome = "insufficient"
)

// Acknowledgement messages returned to the gateway.
const (
	MessageApplied          = "Payment processed successfully"
	MessageAppliedCancelled = "Payment recorded for cancelled order"
	MessageNotIncoming      = "Transaction type not 'in'"
	MessageAccountMismatch  = "Virtual account not matched"
	MessageNoIdentifier     = "No order ID found"
	MessageOrderNotFound    = "Order not found"
	MessageAlreadyPaid      = "Order already paid"
	MessageRefunded         = "Order payment refunded"
	MessageInsufficient     = "Payment amount insufficient"

	NotFoundHint = "Make sure order is created before payment"
)

// Result is the business answer to a notification. Every outcome is acknowledged
// to the gateway; Success=false only when the notification could not be tied to an order.
type Result struct {
	Outcome       Outcome
	Success       bool
	Message       string
	OrderID       string
	SearchedID    string
	Hint          string
	TransactionID string
	Amount        decimal.Decimal
	Expected      decimal.Decimal
	Received      decimal.Decimal
}

// Applied reports whether the notification changed an order.
func (r Result) Applied() bool {
	return r.Outcome == OutcomeApplied || r.Outcome == OutcomeAppliedCancelled
}

func NotIncoming() Result {
	return Result{Outcome: OutcomeNotIncoming, Success: true, Message: MessageNotIncoming}
}

func AccountMismatch() Result {
	return Result{Outcome: OutcomeAccountMismatch, Success: true, Message: MessageAccountMismatch}
}

func NoIdentifier() Result {
	return Result{Outcome: OutcomeNoIdentifier, Success: false, Message: MessageNoIdentifier}
}

func OrderNotFound(searched string) Result {
	return Result{Outcome: OutcomeOrderNotFound, Success: false, Message: MessageOrderNotFound, SearchedID: searched, Hint: NotFoundHint}
}

func AlreadyPaid(orderID string) Result {
	return Result{Outcome: OutcomeAlreadyPaid, Success: true, Message: MessageAlreadyPaid, OrderID: orderID}
}

func Refunded(orderID string) Result {
	return Result{Outcome: OutcomeRefunded, Success: true, Message: MessageRefunded, OrderID: orderID}
}

func Insufficient(orderID string, expected, received decimal.Decimal) Result {
	return Result{
		Outcome:  OutcomeInsufficient,
		Success:  true,
		Message:  MessageInsufficient,
		OrderID:  orderID,
		Expected: expected,
		Received: received,
	}
}

func Applied(orderID, transactionID string, amount decimal.Decimal, cancelled bool) Result {
	result := Result{
		Outcome:       OutcomeApplied,
		Success:       true,
		Message:       MessageApplied,
		OrderID:       orderID,
		TransactionID: transactionID,
		Amount:        amount,
	}
	if cancelled {
		result.Outcome = OutcomeAppliedCancelled
		result.Message = MessageAppliedCancelled
	}
	return result
}
