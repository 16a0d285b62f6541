package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// Destinatarios del aviso de orden entregada por completo.
var (
	salesCompletedTo    = entity.Recipients{Roles: []string{entity.RoleVendedor, entity.RoleAdmin}, Department: entity.DomainCommercial}
	purchaseCompletedTo = entity.Recipients{Roles: []string{entity.RoleBodeguero, entity.RoleAdmin}, Department: entity.DomainCommercial}
)

type delivery struct {
	index int
	line  *entity.OrderLine
	qty   decimal.Decimal
}

// DeliverOrder registra entregas parciales o totales. Ventas: consume lo reservado y anota
// sale_delivery. Compras: ingresa el stock y anota purchase_receipt. Todos los pares se aplican
// en una sola transacción; cualquier falla revierte la entrega completa.
func (uc *OrderUseCase) DeliverOrder(ctx context.Context, caller entity.Caller, orderID string, in dto.DeliverOrderRequest) (*dto.OrderResponse, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "indique al menos una línea")
	}
	seen := make(map[string]bool, len(in.Lines))
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if l.LineID == "" {
			return nil, domain.NewValidationError(field+".line_id", "requerido")
		}
		if seen[l.LineID] {
			return nil, domain.NewValidationError(field+".line_id", "línea repetida en la misma entrega")
		}
		seen[l.LineID] = true
		if err := inventory.ValidateQuantity(field+".quantity", l.Quantity); err != nil {
			return nil, err
		}
	}

	var (
		order     *entity.Order
		movements []*entity.MovementEntry
		alerts    []entity.AlertEvent
		notes     []entity.Notification
		completed bool
	)
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		movements, alerts, notes, completed = nil, nil, nil, false
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

		deliveries, err := matchDeliveries(order, in.Lines)
		if err != nil {
			return err
		}
		now := uc.now()

		touched := make(map[entity.ArticleKey]*entity.StockRecord)
		for _, d := range deliveries {
			if !d.line.StockBound() {
				continue
			}
			key := *d.line.Article
			var (
				rec *entity.StockRecord
				mov *entity.MovementEntry
			)
			if order.Kind == entity.OrderSales {
				rec, err = repos.Stock.ConsumeReserved(ctx, key, d.qty)
				if errors.Is(err, domain.ErrArticleNotFound) {
					err = domain.NewStockError(domain.ErrInconsistentReservation, key.String(), d.qty, decimal.Zero)
				}
				if err != nil {
					return withLine(err, d)
				}
				mov = newMovement(key, entity.DirectionOutbound, d.qty, rec.Unit, entity.ReasonSaleDelivery, order.Number, caller.UserID, now)
			} else {
				article, err := repos.Articles.GetByKey(ctx, key)
				if err != nil {
					return withLine(err, d)
				}
				cost := d.line.UnitPrice
				rec, err = repos.Stock.Receive(ctx, entity.Receipt{
					Key:      key,
					Quantity: d.qty,
					Unit:     article.Unit,
					UnitCost: &cost,
					At:       now,
				})
				if err != nil {
					return withLine(err, d)
				}
				mov = newMovement(key, entity.DirectionInbound, d.qty, rec.Unit, entity.ReasonPurchaseReceipt, order.Number, caller.UserID, now)
			}
			if err := repos.Movements.Append(ctx, mov); err != nil {
				return err
			}
			movements = append(movements, mov)
			touched[key] = rec
		}

		for _, d := range deliveries {
			d.line.QuantityDelivered = d.line.QuantityDelivered.Add(d.qty)
			d.line.Status = inventory.NextLineStatus(d.line.QuantityOrdered, d.line.QuantityDelivered)
			if err := repos.Orders.UpdateLine(ctx, d.line); err != nil {
				return err
			}
		}
		order.Status = inventory.AggregateStatus(order.Lines)
		order.UpdatedAt = now
		if err := repos.Orders.UpdateStatus(ctx, order); err != nil {
			return err
		}

		if order.Kind == entity.OrderSales {
			keys := make([]entity.ArticleKey, 0, len(touched))
			for k := range touched {
				keys = append(keys, k)
			}
			sortKeys(keys)
			for _, k := range keys {
				article, err := repos.Articles.GetByKey(ctx, k)
				if err != nil {
					return err
				}
				if ev := uc.monitor.Check(article, touched[k], now); ev != nil {
					alerts = append(alerts, *ev)
					notes = append(notes, uc.monitor.Notification(*ev))
				}
			}
		}
		if order.Status == entity.OrderStatusFullyDelivered {
			completed = true
			notes = append(notes, completionNotice(order, now))
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail("deliver_order", err)
	}

	for _, m := range movements {
		uc.metrics.ObserveMovement(m.Reason, m.Direction, m.Quantity)
	}
	uc.metrics.ObserveOrder(order.Kind, "delivered")
	if completed {
		uc.metrics.ObserveOrder(order.Kind, "completed")
		uc.log.Info().Str("order_id", order.ID).Str("number", order.Number).Msg("orden entregada por completo")
	}
	uc.dispatch(ctx, alerts, notes)
	resp := toOrderResponse(order)
	return &resp, nil
}

// matchDeliveries resuelve cada par contra las líneas de la orden y verifica
// entregado + incremento <= pedido. Devuelve los pares en orden determinista de artículo.
func matchDeliveries(order *entity.Order, req []dto.DeliveryLineRequest) ([]delivery, error) {
	out := make([]delivery, 0, len(req))
	for i, r := range req {
		line := order.Line(r.LineID)
		if line == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].line_id", i), "la línea no pertenece a la orden")
		}
		if line.QuantityDelivered.Add(r.Quantity).GreaterThan(line.QuantityOrdered) {
			if order.Kind == entity.OrderSales && line.StockBound() {
				return nil, domain.NewStockError(domain.ErrInconsistentReservation, line.Article.String(), r.Quantity, line.Outstanding()).WithLine(i, line.ID)
			}
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].quantity", i),
				"excede lo pendiente ("+line.Outstanding().String()+")")
		}
		out = append(out, delivery{index: i, line: line, qty: r.Quantity})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].line.Article, out[j].line.Article
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		default:
			return a.Less(*b)
		}
	})
	return out, nil
}

func withLine(err error, d delivery) error {
	var se *domain.StockError
	if errors.As(err, &se) {
		return se.WithLine(d.index, d.line.ID)
	}
	return err
}

func newMovement(key entity.ArticleKey, dir entity.Direction, qty decimal.Decimal, unit string,
	reason entity.MovementReason, ref, actor string, at time.Time) *entity.MovementEntry {
	return &entity.MovementEntry{
		ID:         uuid.New().String(),
		Key:        key,
		Direction:  dir,
		Quantity:   qty,
		Unit:       unit,
		Reason:     reason,
		Reference:  ref,
		Actor:      actor,
		OccurredAt: at,
	}
}

func completionNotice(o *entity.Order, at time.Time) entity.Notification {
	to := salesCompletedTo
	title := "Orden de venta entregada"
	if o.Kind == entity.OrderPurchase {
		to = purchaseCompletedTo
		title = "Orden de compra recibida"
	}
	return entity.Notification{
		Kind:       entity.NotificationOrderDelivered,
		Title:      title,
		Message:    fmt.Sprintf("La orden %s fue entregada por completo", o.Number),
		Reference:  o.Number,
		Recipients: to,
		Data: map[string]any{
			"order_id":        o.ID,
			"counterparty_id": o.CounterpartyID,
			"total":           o.Total().String(),
		},
		At: at,
	}
}
