package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido del movimiento.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MovementReason motivo del movimiento.
type MovementReason string

const (
	ReasonPurchaseReceipt MovementReason = "purchase_receipt"
	ReasonSaleDelivery    MovementReason = "sale_delivery"
	ReasonProduction      MovementReason = "production"
	ReasonConsumption     MovementReason = "consumption"
	ReasonAdjustment      MovementReason = "adjustment"
)

// Valid indica si el motivo es conocido.
func (r MovementReason) Valid() bool {
	switch r {
	case ReasonPurchaseReceipt, ReasonSaleDelivery, ReasonProduction, ReasonConsumption, ReasonAdjustment:
		return true
	}
	return false
}

// MovementEntry es un hecho inmutable del libro de movimientos: una cantidad cambió de manos.
// Las reservas no son movimientos; solo entradas y consumos/entregas.
type MovementEntry struct {
	ID         string
	Seq        int64 // asignado por el almacenamiento; orden de commit por clave
	Key        ArticleKey
	Direction  Direction
	Quantity   decimal.Decimal // siempre positivo
	Unit       string
	Reason     MovementReason
	Reference  string // id de orden u operación
	Actor      string
	OccurredAt time.Time
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (m MovementEntry) Signed() decimal.Decimal {
	if m.Direction == DirectionOutbound {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
