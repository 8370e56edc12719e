package dessertserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	paymenthttpmapper "github.com/Apurer/dessert-delivery-api/internal/domains/payments/adapters/http/mapper"
	"github.com/Apurer/dessert-delivery-api/internal/domains/payments/domain"
	paymentsports "github.com/Apurer/dessert-delivery-api/internal/domains/payments/ports"
)

const invalidWebhookMessage = "Invalid webhook data"

// PaymentAPI wires HTTP transport with the payments bounded context service and workflows.
type PaymentAPI struct {
	service   paymentsports.Service
	workflows paymentsports.WorkflowOrchestrator
}

// NewPaymentAPI creates a PaymentAPI backed by the provided service.
func NewPaymentAPI(service paymentsports.Service, workflows paymentsports.WorkflowOrchestrator) PaymentAPI {
	return PaymentAPI{service: service, workflows: workflows}
}

type webhookFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Post /payment/webhook/sepay
// Receives a bank-transfer notification and settles the matching order.
// Business outcomes are always acknowledged with 200 so the gateway stops retrying.
func (api *PaymentAPI) SepayWebhook(c *gin.Context) {
	var payload paymenthttpmapper.SepayNotification
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, webhookFailure{Message: invalidWebhookMessage, Error: err.Error()})
		return
	}
	result, err := api.reconcile(c.Request.Context(), paymenthttpmapper.ToDomainNotification(payload))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, webhookFailure{Message: invalidWebhookMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, webhookFailure{Message: "Internal server error", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, paymenthttpmapper.FromResult(result))
}

func (api *PaymentAPI) reconcile(ctx context.Context, n domain.Notification) (*domain.Result, error) {
	if api.workflows != nil {
		return api.workflows.Reconcile(ctx, n)
	}
	return api.service.Reconcile(ctx, n)
}

// Get /payment/status/:orderId
// Reports the payment state of an order
func (api *PaymentAPI) GetPaymentStatus(c *gin.Context) {
	view, err := api.service.PaymentStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondPaymentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymenthttpmapper.FromStatusView(view))
}

// Post /payment/create
// Returns bank transfer details and QR content for an unpaid order
func (api *PaymentAPI) CreatePayment(c *gin.Context) {
	var payload paymenthttpmapper.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	info, err := api.service.PaymentInfo(c.Request.Context(), payload.OrderID)
	if err != nil {
		respondPaymentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymenthttpmapper.FromPaymentInfo(info))
}
