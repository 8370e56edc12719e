package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordersmemory "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/dessert-delivery-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
	paymentsmemory "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/memory"
	paymentsobs "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/observability"
	paymentspostgres "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/persistence/postgres"
	paymentsredis "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/redis"
	paymentsapp "github.com/Apurer/dessert-delivery-api/internal/domains/payments/application"
	paymentsports "github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
	platformobservability "github.com/Apurer/dessert-delivery-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/dessert-delivery-api/internal/platform/postgres"
	platformredis "github.com/Apurer/dessert-delivery-api/internal/platform/redis"
)

const receiptSweepInterval = 10 * time.Minute

// Components holds the decorated services shared by the API and the worker.
type Components struct {
	Orders   ordersports.Service
	Payments paymentsports.Service
	cleanup  []func()
}

// Close releases every backing connection.
func (c *Components) Close() {
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
}

// BuildComponents wires repositories, receipt store and services. Backing
// services that are unconfigured or unreachable fall back to memory.
func BuildComponents(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) *Components {
	logger := instruments.Log()
	components := &Components{}

	db, closeDB := platformpostgres.ConnectWithFallback(ctx, cfg.PostgresDSN, logger)
	components.cleanup = append(components.cleanup, closeDB)

	orderRepo := buildOrderRepository(db, logger)
	coreOrders := ordersapp.NewService(orderRepo, ordersapp.WithIdentifierPrefix(cfg.OrderIDPrefix))
	components.Orders = ordersobs.New(
		coreOrders,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	receipts, closeReceipts := buildReceiptStore(ctx, cfg, db, logger)
	components.cleanup = append(components.cleanup, closeReceipts)
	corePayments := paymentsapp.NewService(orderRepo, paymentsapp.Config{
		ExpectedSubAccount: cfg.BankAccount,
		IdentifierPrefix:   cfg.OrderIDPrefix,
		Bank: paymentsports.BankAccount{
			BankName:       cfg.BankName,
			AccountNumber:  cfg.BankAccount,
			AccountName:    cfg.BankAccountName,
			VirtualAccount: cfg.BankAccount,
		},
	}, paymentsapp.WithReceiptStore(receipts), paymentsapp.WithLogger(logger))
	components.Payments = paymentsobs.New(
		corePayments,
		paymentsobs.WithLogger(logger),
		paymentsobs.WithTracer(instruments.Tracer("internal.payments.application")),
		paymentsobs.WithMeter(instruments.Meter("internal.payments.application")),
	)
	return components
}

// orderRepository is the union of what the order service and the matcher need.
type orderRepository interface {
	ordersports.Repository
	paymentsports.OrderStore
}

func buildOrderRepository(db *gorm.DB, logger *slog.Logger) orderRepository {
	if db == nil {
		logger.Warn("order repository running in memory")
		return ordersmemory.NewRepository()
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db)
}

func buildReceiptStore(ctx context.Context, cfg Config, db *gorm.DB, logger *slog.Logger) (paymentsports.ReceiptStore, func()) {
	if cfg.RedisAddr != "" {
		rdb, err := platformredis.Connect(ctx, platformredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err == nil {
			logger.Info("notification receipts stored in redis", slog.String("addr", cfg.RedisAddr))
			return paymentsredis.NewReceiptStore(rdb, cfg.ReceiptTTL), func() { _ = rdb.Close() }
		}
		logger.Warn("failed to connect to redis, falling back", slog.String("error", err.Error()))
	}
	if db != nil {
		logger.Info("notification receipts stored in postgres")
		return paymentspostgres.NewReceiptStore(db, cfg.ReceiptTTL), func() {}
	}
	logger.Warn("notification receipts kept in memory")
	store := paymentsmemory.NewReceiptStore(cfg.ReceiptTTL)
	sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go store.RunSweeper(sweepCtx, receiptSweepInterval)
	return store, cancel
}

// DialTemporal connects a Temporal client with tracing and structured logging.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Log()),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
