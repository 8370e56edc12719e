package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/dessert-delivery-api/internal/app/api"
	platformobservability "github.com/Apurer/dessert-delivery-api/internal/platform/observability"
	paymentactivities "github.com/Apurer/dessert-delivery-api/internal/platform/temporal/activities/payments"
	paymentworkflows "github.com/Apurer/dessert-delivery-api/internal/platform/temporal/workflows/payments"
)

func main() {
	ctx := context.Background()
	const serviceName = "dessert-delivery-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Log().Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Log()

	components := api.BuildComponents(ctx, cfg, instruments)
	defer components.Close()
	reconcileActivities := paymentactivities.NewActivities(components.Payments)

	temporalClient, err := api.DialTemporal(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, paymentworkflows.ReconcileTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(paymentworkflows.ReconcileWorkflow, workflow.RegisterOptions{Name: paymentworkflows.ReconcileWorkflowName})
	w.RegisterActivityWithOptions(reconcileActivities.Reconcile, activity.RegisterOptions{Name: paymentactivities.ReconcileActivityName})

	logger.Info("worker listening", slog.String("taskQueue", paymentworkflows.ReconcileTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
