package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind tipo de orden comercial.
type OrderKind string

const (
	OrderSales    OrderKind = "sales"
	OrderPurchase OrderKind = "purchase"
)

// Estados agregados de la orden. Se persisten en columna pero siempre se derivan de las líneas.
const (
	OrderStatusCreated            = "created"
	OrderStatusPartiallyDelivered = "partially_delivered"
	OrderStatusFullyDelivered     = "fully_delivered"
	OrderStatusCancelled          = "cancelled"
)

// Estados por línea.
const (
	LineStatusPending  = "pending"
	LineStatusPartial  = "partial"
	LineStatusComplete = "complete"
)

// Order cabecera de una orden de venta o de compra.
type Order struct {
	ID                    string
	Kind                  OrderKind
	Number                string // único, visible para el cliente
	CounterpartyID        string
	Status                string
	DeliveryTerms         string
	RequestedDeliveryDate *time.Time
	CreatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Lines                 []*OrderLine
}

// Total suma cantidad pedida * precio de todas las líneas.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.QuantityOrdered.Mul(l.UnitPrice))
	}
	return total
}

// Line busca una línea por ID.
func (o *Order) Line(id string) *OrderLine {
	for _, l := range o.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// OrderLine línea de la orden. Article es nil para servicios puros.
type OrderLine struct {
	ID                string
	OrderID           string
	LineNo            int
	ArticleType       ArticleType
	Article           *ArticleKey
	QuantityOrdered   decimal.Decimal
	QuantityDelivered decimal.Decimal
	UnitPrice         decimal.Decimal
	Status            string
}

// StockBound indica si la línea mueve stock.
func (l *OrderLine) StockBound() bool {
	return l.Article != nil && l.ArticleType.StockBound()
}

// Outstanding cantidad aún por entregar.
func (l *OrderLine) Outstanding() decimal.Decimal {
	return l.QuantityOrdered.Sub(l.QuantityDelivered)
}
