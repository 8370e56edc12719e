package payments

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	"github.com/Apurer/dessert-delivery-api/internal/platform/temporal/sequences"
)

const (
	// ReconcileWorkflowName is the public identifier for registering the workflow.
	ReconcileWorkflowName = "payments.workflows.Reconcile"
	// ReconcileTaskQueue is the queue consumed by the worker processing payment workflows.
	ReconcileTaskQueue = "PAYMENT_RECONCILE"
)

// ReconcileWorkflowInput captures one bank-transfer notification.
type ReconcileWorkflowInput struct {
	Notification domain.Notification
	TraceID      string
}

// ReconcileWorkflow settles an order from a bank-transfer notification.
func ReconcileWorkflow(ctx workflow.Context, input ReconcileWorkflowInput) (*domain.Result, error) {
	logger := workflow.GetLogger(ctx)
	txID := input.Notification.TransactionID
	logger.Info("ReconcileWorkflow started", withTraceID(input.TraceID, "transactionId", txID)...)
	result, err := sequences.RunPaymentReconcileSequence(ctx, input.Notification)
	if err != nil {
		logger.Error("ReconcileWorkflow failed", withTraceID(input.TraceID, "transactionId", txID, "error", err)...)
		return nil, err
	}
	logger.Info("ReconcileWorkflow completed", withTraceID(input.TraceID, "transactionId", txID, "orderId", result.OrderID, "outcome", string(result.Outcome))...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
