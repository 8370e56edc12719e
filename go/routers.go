package dessertserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Middleware runs before HandlerFunc.
	Middleware []gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers and route guards of every API.
type ApiHandleFunctions struct {
	OrderAPI   OrderAPI
	PaymentAPI PaymentAPI
	HealthAPI  HealthAPI

	// Authenticate guards the order routes.
	Authenticate gin.HandlerFunc
	// WebhookAuth guards the gateway webhook.
	WebhookAuth gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(RequestID())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := append(append([]gin.HandlerFunc{}, route.Middleware...), route.HandlerFunc)
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, handlers...)
		case http.MethodPost:
			router.POST(route.Pattern, handlers...)
		case http.MethodPut:
			router.PUT(route.Pattern, handlers...)
		case http.MethodPatch:
			router.PATCH(route.Pattern, handlers...)
		case http.MethodDelete:
			router.DELETE(route.Pattern, handlers...)
		}
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	authenticated := guard(handleFunctions.Authenticate)
	webhook := guard(handleFunctions.WebhookAuth)
	return []Route{
		{"Health", http.MethodGet, "/health", handleFunctions.HealthAPI.Health, nil},
		{"CreateOrder", http.MethodPost, "/orders", handleFunctions.OrderAPI.CreateOrder, authenticated},
		{"ListOrders", http.MethodGet, "/orders", handleFunctions.OrderAPI.ListOrders, authenticated},
		{"OrderSummary", http.MethodGet, "/orders/stats/summary", handleFunctions.OrderAPI.OrderSummary, authenticated},
		{"GetOrder", http.MethodGet, "/orders/:id", handleFunctions.OrderAPI.GetOrder, authenticated},
		{"UpdateOrder", http.MethodPut, "/orders/:id", handleFunctions.OrderAPI.UpdateOrder, authenticated},
		{"UpdateOrderStatus", http.MethodPatch, "/orders/:id/status", handleFunctions.OrderAPI.UpdateOrderStatus, authenticated},
		{"CancelOrder", http.MethodDelete, "/orders/:id", handleFunctions.OrderAPI.CancelOrder, authenticated},
		{"SepayWebhook", http.MethodPost, "/payment/webhook/sepay", handleFunctions.PaymentAPI.SepayWebhook, webhook},
		{"GetPaymentStatus", http.MethodGet, "/payment/status/:orderId", handleFunctions.PaymentAPI.GetPaymentStatus, nil},
		{"CreatePayment", http.MethodPost, "/payment/create", handleFunctions.PaymentAPI.CreatePayment, nil},
	}
}

func guard(h gin.HandlerFunc) []gin.HandlerFunc {
	if h == nil {
		return nil
	}
	return []gin.HandlerFunc{h}
}
