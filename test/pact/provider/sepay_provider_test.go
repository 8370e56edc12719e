//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	pacttest "github.com/Apurer/dessert-delivery-api/test/pact"

	dessertserver "github.com/Apurer/dessert-delivery-api/go"
	ordersmemory "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/dessert-delivery-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	paymentsobs "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/observability"
	paymentsworkflows "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/workflows"
	paymentsapp "github.com/Apurer/dessert-delivery-api/internal/domains/payments/application"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDessertDeliveryProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateOrderAwaitingPayment: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetOrders(t)
			if setup {
				app.seedOrder(t, pacttest.AwaitingOrderID, pacttest.OrderAmount)
			}
			return nil, nil
		},
		pacttest.StateNoOrders: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetOrders(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.resetOrders(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	repo   *ordersmemory.Repository
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	orderRepo := ordersmemory.NewRepository()
	orderService := ordersobs.New(ordersapp.NewService(orderRepo))
	paymentService := paymentsobs.New(paymentsapp.NewService(orderRepo, paymentsapp.Config{
		ExpectedSubAccount: pacttest.VirtualAccount,
	}))
	workflows := paymentsworkflows.NewInlineReconcileWorkflows(paymentService)

	handlers := dessertserver.ApiHandleFunctions{
		OrderAPI:    dessertserver.NewOrderAPI(orderService),
		PaymentAPI:  dessertserver.NewPaymentAPI(paymentService, workflows),
		HealthAPI:   dessertserver.NewHealthAPI(orderService),
		WebhookAuth: dessertserver.SepayAPIKey(pacttest.APIKey),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = dessertserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		repo:   orderRepo,
		server: server,
	}
}

func (a *contractProviderApp) resetOrders(t testing.TB) {
	t.Helper()
	orders, err := a.repo.ListRecent(context.Background(), 1000)
	require.NoError(t, err)
	for _, order := range orders {
		_ = a.repo.Delete(context.Background(), order.ID)
	}
}

func (a *contractProviderApp) seedOrder(t testing.TB, id string, amount int64) {
	t.Helper()
	now := time.Now().UTC()
	_, err := a.repo.Create(context.Background(), &orderdomain.Order{
		ID:      id,
		OwnerID: "pact-customer",
		Items: []orderdomain.Item{
			{DessertID: "tiramisu", DessertName: "Tiramisu", Quantity: 1, Price: decimal.NewFromInt(amount)},
		},
		TotalAmount:     decimal.NewFromInt(amount),
		FinalAmount:     decimal.NewFromInt(amount),
		Status:          orderdomain.StatusPending,
		PaymentMethod:   "bank_transfer",
		PaymentStatus:   orderdomain.PaymentUnpaid,
		DeliveryAddress: orderdomain.DeliveryAddress{FullAddress: "1 Le Loi, District 1", Phone: "0900000000"},
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
}
