package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	dessertserver "github.com/Apurer/dessert-delivery-api/go"

	paymentsworkflows "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/workflows"
	paymentsports "github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
	"github.com/Apurer/dessert-delivery-api/internal/platform/auth"
	platformobservability "github.com/Apurer/dessert-delivery-api/internal/platform/observability"
	apierrors "github.com/Apurer/dessert-delivery-api/internal/shared/errors"
)

const serviceName = "dessert-delivery-api"

// Run boots the dessert delivery HTTP API with observability, repositories, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Log().Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Log()

	components := BuildComponents(ctx, cfg, instruments)
	defer components.Close()

	var paymentWorkflows paymentsports.WorkflowOrchestrator = paymentsworkflows.NewInlineReconcileWorkflows(components.Payments)
	if temporalClient, err := DialTemporal(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, reconciling inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		paymentWorkflows = paymentsworkflows.NewTemporalReconcileWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := dessertserver.ApiHandleFunctions{
		OrderAPI:     dessertserver.NewOrderAPI(components.Orders),
		PaymentAPI:   dessertserver.NewPaymentAPI(components.Payments, paymentWorkflows),
		HealthAPI:    dessertserver.NewHealthAPI(components.Orders),
		Authenticate: authenticator(cfg, logger),
		WebhookAuth:  dessertserver.SepayAPIKey(cfg.SepayAPIKey),
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router = dessertserver.NewRouterWithGinEngine(router, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dessert delivery API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Dessert delivery API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Dessert delivery API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

// authenticator guards order routes. Without JWT_SECRET every order request is rejected.
func authenticator(cfg Config, logger *slog.Logger) gin.HandlerFunc {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, order routes will reject all requests")
		return func(c *gin.Context) {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail("authentication is not configured"))
			c.Abort()
		}
	}
	return auth.NewVerifier(cfg.JWTSecret).Middleware()
}
