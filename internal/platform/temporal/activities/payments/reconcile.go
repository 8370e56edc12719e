package payments

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

const (
	// ReconcileActivityName applies one notification through the matcher.
	ReconcileActivityName = "payments.activities.Reconcile"
	// InvalidPayloadErrorType marks notifications that retrying cannot fix.
	InvalidPayloadErrorType = "InvalidPayload"
)

// Activities groups activities that operate on the payments bounded context.
type Activities struct {
	reconciler ports.Reconciler
}

// NewActivities wires the matcher into the Temporal activities bundle.
func NewActivities(reconciler ports.Reconciler) *Activities {
	return &Activities{reconciler: reconciler}
}

// Reconcile runs the matcher. Business outcomes are results; only infrastructure errors are retried.
func (a *Activities) Reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.reconciler == nil {
		logger.Error("reconcile activity not initialized", "transactionId", n.TransactionID)
		return nil, errors.New("reconcile activity not initialized")
	}
	logger.Info("Reconcile activity started", "transactionId", n.TransactionID, "attempt", activity.GetInfo(ctx).Attempt)
	result, err := a.reconciler.Reconcile(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), InvalidPayloadErrorType, err)
		}
		logger.Error("Reconcile activity failed", "transactionId", n.TransactionID, "error", err)
		return nil, err
	}
	logger.Info("Reconcile activity completed", "transactionId", n.TransactionID, "outcome", string(result.Outcome))
	return result, nil
}
