package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea solicitada. ArticleID puede omitirse en servicios.
type OrderLineRequest struct {
	ArticleType string          `json:"article_type"`
	ArticleID   string          `json:"article_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders/sales y /api/orders/purchases.
type CreateOrderRequest struct {
	CounterpartyID        string             `json:"counterparty_id"`
	DeliveryTerms         string             `json:"delivery_terms,omitempty"`
	RequestedDeliveryDate *time.Time         `json:"requested_delivery_date,omitempty"`
	Lines                 []OrderLineRequest `json:"lines"`
}

// DeliveryLineRequest incremento entregado de una línea.
type DeliveryLineRequest struct {
	LineID   string          `json:"line_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// DeliverOrderRequest body para POST /api/orders/:id/deliveries.
type DeliverOrderRequest struct {
	Lines []DeliveryLineRequest `json:"lines"`
}

// CreateOrderResponse respuesta de creación.
type CreateOrderResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

// OrderLineResponse línea con su avance de entrega.
type OrderLineResponse struct {
	ID                string          `json:"id"`
	LineNo            int             `json:"line_no"`
	ArticleType       string          `json:"article_type"`
	ArticleID         string          `json:"article_id,omitempty"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityDelivered decimal.Decimal `json:"quantity_delivered"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Status            string          `json:"status"`
}

// OrderResponse orden completa.
type OrderResponse struct {
	ID                    string              `json:"id"`
	Kind                  string              `json:"kind"`
	Number                string              `json:"number"`
	CounterpartyID        string              `json:"counterparty_id"`
	Status                string              `json:"status"`
	DeliveryTerms         string              `json:"delivery_terms,omitempty"`
	RequestedDeliveryDate *time.Time          `json:"requested_delivery_date,omitempty"`
	Total                 decimal.Decimal     `json:"total"`
	CreatedAt             time.Time           `json:"created_at"`
	Lines                 []OrderLineResponse `json:"lines"`
}

// OrderVerificationResponse resultado de VerifyOrder.
type OrderVerificationResponse struct {
	OrderID    string   `json:"order_id"`
	Status     string   `json:"status"`
	Consistent bool     `json:"consistent"`
	Issues     []string `json:"issues,omitempty"`
}
