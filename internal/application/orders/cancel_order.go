package orders

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// CancelOrder anula la orden. En ventas libera la reserva pendiente de cada línea no completa,
// así una orden abandonada no retiene stock. Las órdenes entregadas por completo no se anulan.
// Las cantidades ya entregadas y las estadísticas del tercero no se revierten.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, caller entity.Caller, orderID string) (*dto.OrderResponse, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order_id", "requerido")
	}
	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		order, err = repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case entity.OrderStatusCancelled:
			return domain.ErrOrderCancelled
		case entity.OrderStatusFullyDelivered:
			return domain.ErrAlreadyFullyDelivered
		}
		if order.Kind == entity.OrderSales {
			totals, keys := stockTotals(order.Lines)
			for _, key := range keys {
				if !totals[key].IsPositive() {
					continue
				}
				_, err := repos.Stock.Release(ctx, key, totals[key])
				if errors.Is(err, domain.ErrArticleNotFound) {
					continue
				}
				if err != nil {
					return err
				}
			}
		}
		order.Status = entity.OrderStatusCancelled
		order.UpdatedAt = uc.now()
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, uc.fail("cancel_order", err)
	}
	uc.metrics.ObserveOrder(order.Kind, "cancelled")
	uc.log.Info().
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("user_id", caller.UserID).
		Msg("orden anulada")
	resp := toOrderResponse(order)
	return &resp, nil
}
