package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// NextLineStatus estado de la línea tras una entrega.
// complete si entregado == pedido; partial si entregado > 0; si no, pending.
func NextLineStatus(ordered, delivered decimal.Decimal) string {
	switch {
	case delivered.Equal(ordered):
		return entity.LineStatusComplete
	case delivered.GreaterThan(decimal.Zero):
		return entity.LineStatusPartial
	default:
		return entity.LineStatusPending
	}
}

// AggregateStatus deriva el estado de la orden desde sus líneas.
func AggregateStatus(lines []*entity.OrderLine) string {
	if len(lines) == 0 {
		return entity.OrderStatusCreated
	}
	complete, touched := 0, 0
	for _, l := range lines {
		if l.Status == entity.LineStatusComplete {
			complete++
		}
		if l.QuantityDelivered.GreaterThan(decimal.Zero) {
			touched++
		}
	}
	switch {
	case complete == len(lines):
		return entity.OrderStatusFullyDelivered
	case touched > 0:
		return entity.OrderStatusPartiallyDelivered
	default:
		return entity.OrderStatusCreated
	}
}

// VerifyOrder contrasta el estado persistido contra el derivado de las líneas y revisa
// 0 <= entregado <= pedido en cada línea. Devuelve la lista de discrepancias (vacía si cuadra).
func VerifyOrder(o *entity.Order) []string {
	var issues []string
	for _, l := range o.Lines {
		if l.QuantityDelivered.IsNegative() || l.QuantityDelivered.GreaterThan(l.QuantityOrdered) {
			issues = append(issues, fmt.Sprintf("línea %d: entregado %s fuera de [0, %s]",
				l.LineNo, l.QuantityDelivered, l.QuantityOrdered))
		}
		if want := NextLineStatus(l.QuantityOrdered, l.QuantityDelivered); want != l.Status {
			issues = append(issues, fmt.Sprintf("línea %d: estado %q, esperado %q", l.LineNo, l.Status, want))
		}
	}
	if o.Status == entity.OrderStatusCancelled {
		return issues
	}
	if want := AggregateStatus(o.Lines); want != o.Status {
		issues = append(issues, fmt.Sprintf("orden: estado %q, esperado %q", o.Status, want))
	}
	return issues
}

// Umbrales de fidelización por ventas acumuladas.
var (
	loyaltySilverFrom = decimal.NewFromInt(10_000_000)
	loyaltyGoldFrom   = decimal.NewFromInt(50_000_000)
)

// LoyaltyTier nivel de fidelización según el total de ventas acumulado.
func LoyaltyTier(salesTotal decimal.Decimal) string {
	switch {
	case salesTotal.GreaterThanOrEqual(loyaltyGoldFrom):
		return entity.LoyaltyGold
	case salesTotal.GreaterThanOrEqual(loyaltySilverFrom):
		return entity.LoyaltySilver
	default:
		return entity.LoyaltyStandard
	}
}

// ApplyOrderToCounterparty acumula el total de la orden en las estadísticas del tercero.
func ApplyOrderToCounterparty(c entity.Counterparty, kind entity.OrderKind, total decimal.Decimal) entity.Counterparty {
	switch kind {
	case entity.OrderSales:
		c.SalesTotal = c.SalesTotal.Add(total)
		c.LoyaltyTier = LoyaltyTier(c.SalesTotal)
	case entity.OrderPurchase:
		c.PurchaseTotal = c.PurchaseTotal.Add(total)
	}
	c.OrderCount++
	return c
}
