package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

func line(ordered, delivered int64) *entity.OrderLine {
	l := &entity.OrderLine{QuantityOrdered: d(ordered), QuantityDelivered: d(delivered)}
	l.Status = inventory.NextLineStatus(l.QuantityOrdered, l.QuantityDelivered)
	return l
}

func TestNextLineStatus(t *testing.T) {
	assert.Equal(t, entity.LineStatusPending, inventory.NextLineStatus(d(10), d(0)))
	assert.Equal(t, entity.LineStatusPartial, inventory.NextLineStatus(d(10), d(4)))
	assert.Equal(t, entity.LineStatusComplete, inventory.NextLineStatus(d(10), d(10)))
}

func TestAggregateStatus(t *testing.T) {
	assert.Equal(t, entity.OrderStatusCreated, inventory.AggregateStatus([]*entity.OrderLine{line(10, 0), line(5, 0)}))
	assert.Equal(t, entity.OrderStatusPartiallyDelivered, inventory.AggregateStatus([]*entity.OrderLine{line(10, 10), line(5, 0)}))
	assert.Equal(t, entity.OrderStatusPartiallyDelivered, inventory.AggregateStatus([]*entity.OrderLine{line(10, 3), line(5, 0)}))
	assert.Equal(t, entity.OrderStatusFullyDelivered, inventory.AggregateStatus([]*entity.OrderLine{line(10, 10), line(5, 5)}))
}

func TestVerifyOrder_DetectaEstadoDesalineado(t *testing.T) {
	o := &entity.Order{Status: entity.OrderStatusFullyDelivered, Lines: []*entity.OrderLine{line(10, 10), line(5, 2)}}
	issues := inventory.VerifyOrder(o)
	assert.Len(t, issues, 1)

	o.Status = entity.OrderStatusPartiallyDelivered
	assert.Empty(t, inventory.VerifyOrder(o))
}

func TestLoyaltyTier(t *testing.T) {
	assert.Equal(t, entity.LoyaltyStandard, inventory.LoyaltyTier(decimal.NewFromInt(9_999_999)))
	assert.Equal(t, entity.LoyaltySilver, inventory.LoyaltyTier(decimal.NewFromInt(10_000_000)))
	assert.Equal(t, entity.LoyaltyGold, inventory.LoyaltyTier(decimal.NewFromInt(75_000_000)))

	c := inventory.ApplyOrderToCounterparty(entity.Counterparty{LoyaltyTier: entity.LoyaltyStandard}, entity.OrderSales, decimal.NewFromInt(12_000_000))
	assert.Equal(t, entity.LoyaltySilver, c.LoyaltyTier)
	assert.Equal(t, 1, c.OrderCount)
}
