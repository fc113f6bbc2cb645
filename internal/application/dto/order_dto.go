package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest body para POST /api/orders/checkout.
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address" validate:"max=500"`
	Notes           string `json:"notes" validate:"max=1000"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderLineResponse línea de pedido.
type OrderLineResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido con sus líneas.
type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Username        string              `json:"username"`
	Status          string              `json:"status"`
	Total           decimal.Decimal     `json:"total"`
	DeliveryAddress string              `json:"delivery_address"`
	Notes           string              `json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
	Lines           []OrderLineResponse `json:"lines"`
}

// OrderStatsResponse conteo de pedidos por estado.
type OrderStatsResponse struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// OrderListResponse listado de pedidos con sus conteos.
type OrderListResponse struct {
	Items []OrderResponse    `json:"items"`
	Stats OrderStatsResponse `json:"stats"`
}
