package dessertserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ordersports "github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

// HealthAPI reports liveness together with the order store size.
type HealthAPI struct {
	orders ordersports.Service
	now    func() time.Time
}

func NewHealthAPI(orders ordersports.Service) HealthAPI {
	return HealthAPI{orders: orders, now: time.Now}
}

type healthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	OrdersCount int64     `json:"ordersCount"`
}

// Get /health
func (api *HealthAPI) Health(c *gin.Context) {
	count, err := api.orders.Count(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "OK", Timestamp: api.now().UTC(), OrdersCount: count})
}
