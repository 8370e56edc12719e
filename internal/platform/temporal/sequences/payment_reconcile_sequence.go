package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	paymentactivities "github.com/Apurer/dessert-delivery-api/internal/platform/temporal/activities/payments"
)

// RunPaymentReconcileSequence executes the matcher activity with a retry policy that
// only covers infrastructure failures.
func RunPaymentReconcileSequence(ctx workflow.Context, n domain.Notification) (*domain.Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("payment reconcile sequence started", "transactionId", n.TransactionID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{paymentactivities.InvalidPayloadErrorType},
		},
	}

	var result domain.Result
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), paymentactivities.ReconcileActivityName, n).Get(ctx, &result)
	if err != nil {
		logger.Error("payment reconcile sequence failed", "transactionId", n.TransactionID, "error", err)
		return nil, err
	}
	logger.Info("payment reconcile sequence completed", "transactionId", n.TransactionID, "outcome", string(result.Outcome))
	return &result, nil
}
