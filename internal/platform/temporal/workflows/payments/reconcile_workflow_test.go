package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	paymentactivities "github.com/Apurer/dessert-delivery-api/internal/platform/temporal/activities/payments"
)

type reconcilerFunc func(ctx context.Context, n domain.Notification) (*domain.Result, error)

func (f reconcilerFunc) Reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	return f(ctx, n)
}

func newEnv(t *testing.T, reconciler reconcilerFunc) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	activities := paymentactivities.NewActivities(reconciler)
	env.RegisterActivityWithOptions(activities.Reconcile, activity.RegisterOptions{Name: paymentactivities.ReconcileActivityName})
	return env
}

func TestReconcileWorkflow_ReturnsMatcherResult(t *testing.T) {
	env := newEnv(t, func(_ context.Context, n domain.Notification) (*domain.Result, error) {
		result := domain.Applied("DH-1", n.TransactionID, n.TransferAmount, false)
		return &result, nil
	})

	env.ExecuteWorkflow(ReconcileWorkflow, ReconcileWorkflowInput{Notification: domain.Notification{
		TransactionID: "92704", Content: "DH-1", TransferType: "in", TransferAmount: decimal.NewFromInt(150000),
	}})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result domain.Result
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, domain.OutcomeApplied, result.Outcome)
	require.Equal(t, "DH-1", result.OrderID)
	require.True(t, result.Amount.Equal(decimal.NewFromInt(150000)))
}

func TestReconcileWorkflow_InvalidPayloadIsNotRetried(t *testing.T) {
	calls := 0
	env := newEnv(t, func(context.Context, domain.Notification) (*domain.Result, error) {
		calls++
		return nil, domain.ErrInvalidPayload
	})

	env.ExecuteWorkflow(ReconcileWorkflow, ReconcileWorkflowInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Equal(t, 1, calls)
}

func TestReconcileWorkflow_RetriesInfrastructureErrors(t *testing.T) {
	calls := 0
	env := newEnv(t, func(_ context.Context, n domain.Notification) (*domain.Result, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset")
		}
		result := domain.AlreadyPaid("DH-1")
		return &result, nil
	})

	env.ExecuteWorkflow(ReconcileWorkflow, ReconcileWorkflowInput{Notification: domain.Notification{TransactionID: "1", Content: "DH-1"}})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Equal(t, 3, calls)
}
