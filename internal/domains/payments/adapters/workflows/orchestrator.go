package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
	paymentactivities "github.com/Apurer/dessert-delivery-api/internal/platform/temporal/activities/payments"
	paymentworkflows "github.com/Apurer/dessert-delivery-api/internal/platform/temporal/workflows/payments"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalReconcileWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineReconcileWorkflows)(nil)
)

// TemporalReconcileWorkflows runs reconciliation on a Temporal cluster.
type TemporalReconcileWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalReconcileWorkflows wires a Temporal client into the orchestrator.
func NewTemporalReconcileWorkflows(c client.Client) *TemporalReconcileWorkflows {
	return &TemporalReconcileWorkflows{client: c, taskQueue: paymentworkflows.ReconcileTaskQueue}
}

// Reconcile starts the workflow keyed by gateway transaction and waits for its result.
// A start that collides with a running execution attaches to it instead.
func (o *TemporalReconcileWorkflows) Reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal reconcile workflows not configured")
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	workflowID := BuildReconcileWorkflowID(n)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	input := paymentworkflows.ReconcileWorkflowInput{Notification: n, TraceID: workflowTraceID(ctx)}
	// Started by registered name: this client has no workflow registry of its own.
	run, err := o.client.ExecuteWorkflow(ctx, options, paymentworkflows.ReconcileWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result domain.Result
	if err := run.Get(ctx, &result); err != nil {
		return nil, unwrapWorkflowError(err)
	}
	return &result, nil
}

// InlineReconcileWorkflows calls the matcher directly, for tests or when Temporal is unavailable.
type InlineReconcileWorkflows struct {
	reconciler ports.Reconciler
}

func NewInlineReconcileWorkflows(reconciler ports.Reconciler) *InlineReconcileWorkflows {
	return &InlineReconcileWorkflows{reconciler: reconciler}
}

func (o *InlineReconcileWorkflows) Reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	if o == nil || o.reconciler == nil {
		return nil, errors.New("inline reconcile workflows not configured")
	}
	return o.reconciler.Reconcile(ctx, n)
}

// BuildReconcileWorkflowID derives a stable workflow ID from the gateway transaction.
func BuildReconcileWorkflowID(n domain.Notification) string {
	sum := sha256.Sum256([]byte(n.ReceiptKey()))
	return fmt.Sprintf("payment-reconcile-%s", hex.EncodeToString(sum[:8]))
}

// unwrapWorkflowError restores ErrInvalidPayload from the activity's application error.
func unwrapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == paymentactivities.InvalidPayloadErrorType {
		return fmt.Errorf("%w: %s", domain.ErrInvalidPayload, appErr.Error())
	}
	return err
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
