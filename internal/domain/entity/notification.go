package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de notificación emitidos por el motor.
const (
	NotificationLowStock       = "low_stock"
	NotificationOrderDelivered = "order_delivered"
)

// Recipients a quién va dirigida una notificación.
type Recipients struct {
	Roles      []string `json:"roles"`
	Department string   `json:"department,omitempty"`
}

// AlertEvent alerta de stock bajo para un artículo.
type AlertEvent struct {
	Article   ArticleKey
	Name      string
	Domain    string
	Remaining decimal.Decimal
	Floor     decimal.Decimal
	Unit      string
	At        time.Time
}

// Notification evento de negocio entregado al sink externo (consola, push, correo).
type Notification struct {
	Kind       string         `json:"kind"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Reference  string         `json:"reference,omitempty"`
	Recipients Recipients     `json:"recipients"`
	Data       map[string]any `json:"data,omitempty"`
	At         time.Time      `json:"at"`
}
