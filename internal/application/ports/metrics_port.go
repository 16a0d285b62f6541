package ports

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// Metrics puerto de observabilidad del motor de stock.
type Metrics interface {
	ObserveMovement(reason entity.MovementReason, direction entity.Direction, qty decimal.Decimal)
	ObserveRejection(op string, err error)
	ObserveAlert(domain string)
	ObserveOrder(kind entity.OrderKind, event string)
}

// NopMetrics implementación vacía para cuando no hay exportador configurado.
type NopMetrics struct{}

func (NopMetrics) ObserveMovement(entity.MovementReason, entity.Direction, decimal.Decimal) {}
func (NopMetrics) ObserveRejection(string, error) {}
func (NopMetrics) ObserveAlert(string) {}
func (NopMetrics) ObserveOrder(entity.OrderKind, string) {}
