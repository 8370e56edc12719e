package mapper

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

// OrderItem is the wire shape of one order line.
type OrderItem struct {
	DessertID    string          `json:"dessertId" binding:"required"`
	DessertName  string          `json:"dessertName,omitempty"`
	DessertImage string          `json:"dessertImage,omitempty"`
	Quantity     int32           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
}

// DeliveryAddress is the wire shape of the delivery target.
type DeliveryAddress struct {
	FullAddress string `json:"fullAddress"`
	Phone       string `json:"phone"`
	Note        string `json:"note,omitempty"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	ID                    string           `json:"id,omitempty"`
	Items                 []OrderItem      `json:"items"`
	TotalAmount           decimal.Decimal  `json:"totalAmount"`
	Discount              decimal.Decimal  `json:"discount"`
	DeliveryFee           decimal.Decimal  `json:"deliveryFee"`
	FinalAmount           decimal.Decimal  `json:"finalAmount"`
	PaymentMethod         string           `json:"paymentMethod,omitempty"`
	DeliveryAddress       *DeliveryAddress `json:"deliveryAddress"`
	EstimatedDeliveryTime string           `json:"estimatedDeliveryTime,omitempty"`
}

// UpdateOrderRequest is the body of PUT /orders/:id.
type UpdateOrderRequest struct {
	DeliveryAddress       *DeliveryAddress `json:"deliveryAddress,omitempty"`
	EstimatedDeliveryTime string           `json:"estimatedDeliveryTime,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentTransaction is the wire shape of a settled transfer.
type PaymentTransaction struct {
	TransactionID   string      `json:"transactionId"`
	Gateway         string      `json:"gateway,omitempty"`
	TransactionDate string      `json:"transactionDate,omitempty"`
	Amount          json.Number `json:"amount"`
	ReferenceNumber string      `json:"referenceNumber,omitempty"`
	Content         string      `json:"content,omitempty"`
	Description     string      `json:"description,omitempty"`
	SubAccount      string      `json:"subAccount,omitempty"`
}

// Order is the wire shape of an order.
type Order struct {
	ID                    string              `json:"id"`
	UserID                string              `json:"userId"`
	Items                 []OrderItemView     `json:"items"`
	TotalAmount           json.Number         `json:"totalAmount"`
	Discount              json.Number         `json:"discount"`
	DeliveryFee           json.Number         `json:"deliveryFee"`
	FinalAmount           json.Number         `json:"finalAmount"`
	Status                string              `json:"status"`
	PaymentMethod         string              `json:"paymentMethod"`
	PaymentStatus         string              `json:"paymentStatus"`
	DeliveryAddress       DeliveryAddress     `json:"deliveryAddress"`
	EstimatedDeliveryTime string              `json:"estimatedDeliveryTime,omitempty"`
	PaymentTransaction    *PaymentTransaction `json:"paymentTransaction,omitempty"`
	CreatedAt             time.Time           `json:"createdAt"`
	UpdatedAt             time.Time           `json:"updatedAt"`
}

// OrderItemView renders amounts as JSON numbers.
type OrderItemView struct {
	DessertID    string      `json:"dessertId"`
	DessertName  string      `json:"dessertName,omitempty"`
	DessertImage string      `json:"dessertImage,omitempty"`
	Quantity     int32       `json:"quantity"`
	Price        json.Number `json:"price"`
	Discount     json.Number `json:"discount"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// OrderList is the body of GET /orders.
type OrderList struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// StatusBucket is one row of the summary breakdown.
type StatusBucket struct {
	Status      string      `json:"status"`
	Count       int         `json:"count"`
	TotalAmount json.Number `json:"totalAmount"`
}

// Summary is the body of GET /orders/stats/summary.
type Summary struct {
	TotalOrders int            `json:"totalOrders"`
	TotalSpent  json.Number    `json:"totalSpent"`
	ByStatus    []StatusBucket `json:"byStatus"`
}

// Number renders a decimal as an exact JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// ToPlaceOrderInput converts a transport request into the service input.
func ToPlaceOrderInput(ownerID string, req CreateOrderRequest) ports.PlaceOrderInput {
	input := ports.PlaceOrderInput{
		ID:                    req.ID,
		OwnerID:               ownerID,
		Items:                 make([]domain.Item, 0, len(req.Items)),
		TotalAmount:           req.TotalAmount,
		Discount:              req.Discount,
		DeliveryFee:           req.DeliveryFee,
		FinalAmount:           req.FinalAmount,
		PaymentMethod:         req.PaymentMethod,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, domain.Item{
			DessertID:    item.DessertID,
			DessertName:  item.DessertName,
			DessertImage: item.DessertImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Discount:     item.Discount,
		})
	}
	if req.DeliveryAddress != nil {
		input.DeliveryAddress = ToDomainAddress(*req.DeliveryAddress)
	}
	return input
}

func ToDomainAddress(address DeliveryAddress) domain.DeliveryAddress {
	return domain.DeliveryAddress{FullAddress: address.FullAddress, Phone: address.Phone, Note: address.Note}
}

// FromDomainTransaction converts a settled transfer to its transport representation.
func FromDomainTransaction(txn *domain.PaymentTransaction) *PaymentTransaction {
	if txn == nil {
		return nil
	}
	return &PaymentTransaction{
		TransactionID:   txn.TransactionID,
		Gateway:         txn.Gateway,
		TransactionDate: txn.TransactionDate,
		Amount:          Number(txn.Amount),
		ReferenceNumber: txn.ReferenceNumber,
		Content:         txn.Content,
		Description:     txn.Description,
		SubAccount:      txn.SubAccount,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:            order.ID,
		UserID:        order.OwnerID,
		Items:         make([]OrderItemView, 0, len(order.Items)),
		TotalAmount:   Number(order.TotalAmount),
		Discount:      Number(order.Discount),
		DeliveryFee:   Number(order.DeliveryFee),
		FinalAmount:   Number(order.FinalAmount),
		Status:        string(order.Status),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: string(order.PaymentStatus),
		DeliveryAddress: DeliveryAddress{
			FullAddress: order.DeliveryAddress.FullAddress,
			Phone:       order.DeliveryAddress.Phone,
			Note:        order.DeliveryAddress.Note,
		},
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		PaymentTransaction:    FromDomainTransaction(order.PaymentTransaction),
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, OrderItemView{
			DessertID:    item.DessertID,
			DessertName:  item.DessertName,
			DessertImage: item.DessertImage,
			Quantity:     item.Quantity,
			Price:        Number(item.Price),
			Discount:     Number(item.Discount),
		})
	}
	return out
}

// FromListResult converts a page of orders.
func FromListResult(result *ports.ListResult) OrderList {
	list := OrderList{Orders: make([]Order, 0, len(result.Orders))}
	for _, order := range result.Orders {
		list.Orders = append(list.Orders, FromDomainOrder(order))
	}
	list.Pagination = Pagination{Total: result.Total, Page: result.Page, Limit: result.Limit}
	if result.Limit > 0 {
		list.Pagination.TotalPages = (result.Total + int64(result.Limit) - 1) / int64(result.Limit)
	}
	return list
}

// FromSummary converts an order summary.
func FromSummary(summary *ports.Summary) Summary {
	out := Summary{
		TotalOrders: summary.TotalOrders,
		TotalSpent:  Number(summary.TotalSpent),
		ByStatus:    make([]StatusBucket, 0, len(summary.ByStatus)),
	}
	for _, bucket := range summary.ByStatus {
		out.ByStatus = append(out.ByStatus, StatusBucket{
			Status:      string(bucket.Status),
			Count:       bucket.Count,
			TotalAmount: Number(bucket.TotalAmount),
		})
	}
	return out
}
