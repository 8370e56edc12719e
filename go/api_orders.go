package dessertserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
	"github.com/Apurer/dessert-delivery-api/internal/platform/auth"
)

// OrderAPI wires HTTP transport with the orders bounded context service.
type OrderAPI struct {
	service ordersports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ordersports.Service) OrderAPI {
	return OrderAPI{service: service}
}

type orderEnvelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Order   orderhttpmapper.Order `json:"order"`
}

// Post /orders
// Place a new order for the authenticated user
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.PlaceOrder(c.Request.Context(), orderhttpmapper.ToPlaceOrderInput(principal.Subject, payload))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	if result.Existing {
		c.JSON(http.StatusOK, orderEnvelope{Success: true, Message: "Order already exists", Order: orderhttpmapper.FromDomainOrder(result.Order)})
		return
	}
	c.JSON(http.StatusCreated, orderEnvelope{Success: true, Message: "Order created", Order: orderhttpmapper.FromDomainOrder(result.Order)})
}

// Get /orders
// Lists orders of the authenticated user, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	filter := ordersports.ListFilter{
		OwnerID:       principal.Subject,
		Status:        domain.Status(c.Query("status")),
		PaymentStatus: domain.PaymentStatus(c.Query("paymentStatus")),
	}
	if principal.IsAdmin() {
		filter.OwnerID = strings.TrimSpace(c.Query("userId"))
	}
	page, ok := parseIntQuery(c, "page")
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit")
	if !ok {
		return
	}
	filter.Page, filter.Limit = page, limit
	result, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromListResult(result))
}

// Get /orders/:id
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, ok := api.ownedOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Patch /orders/:id/status
// Moves an order to another fulfilment status
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	if _, ok := api.ownedOrder(c); !ok {
		return
	}
	var payload orderhttpmapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.UpdateStatus(c.Request.Context(), c.Param("id"), domain.Status(payload.Status))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderEnvelope{Success: true, Message: "Order status updated", Order: orderhttpmapper.FromDomainOrder(updated)})
}

// Put /orders/:id
// Updates delivery details of a pending order
func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	if _, ok := api.ownedOrder(c); !ok {
		return
	}
	var payload orderhttpmapper.UpdateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	var address *domain.DeliveryAddress
	if payload.DeliveryAddress != nil {
		converted := orderhttpmapper.ToDomainAddress(*payload.DeliveryAddress)
		address = &converted
	}
	updated, err := api.service.UpdateDelivery(c.Request.Context(), c.Param("id"), address, payload.EstimatedDeliveryTime)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderEnvelope{Success: true, Message: "Order updated", Order: orderhttpmapper.FromDomainOrder(updated)})
}

// Delete /orders/:id
// Cancels a pending order
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	if _, ok := api.ownedOrder(c); !ok {
		return
	}
	cancelled, err := api.service.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderEnvelope{Success: true, Message: "Order cancelled", Order: orderhttpmapper.FromDomainOrder(cancelled)})
}

// Get /orders/stats/summary
// Summarises the authenticated user's orders
func (api *OrderAPI) OrderSummary(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	summary, err := api.service.Summary(c.Request.Context(), principal.Subject)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromSummary(summary))
}

// ownedOrder loads the order named by the path and checks the caller may act on it.
func (api *OrderAPI) ownedOrder(c *gin.Context) (*domain.Order, bool) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return nil, false
	}
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOrderServiceError(c, err)
		return nil, false
	}
	if order.OwnerID != principal.Subject && !principal.IsAdmin() {
		respondOrderServiceError(c, errForbidden)
		return nil, false
	}
	return order, true
}

func requirePrincipal(c *gin.Context) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, auth.ErrMissingToken)
		return auth.Principal{}, false
	}
	return principal, true
}

func parseIntQuery(c *gin.Context, name string) (int, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return parsed, true
}
