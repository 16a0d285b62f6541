package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// CreateSalesOrder crea la orden de venta y reserva el stock de cada línea en una sola transacción.
// Si alguna línea excede lo vendible se rechaza la orden completa nombrando la primera línea que falla.
func (uc *OrderUseCase) CreateSalesOrder(ctx context.Context, caller entity.Caller, in dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	return uc.create(ctx, caller, entity.OrderSales, in)
}

// CreatePurchaseOrder crea la orden de compra. No verifica ni reserva stock: es el lado de entrada.
func (uc *OrderUseCase) CreatePurchaseOrder(ctx context.Context, caller entity.Caller, in dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	return uc.create(ctx, caller, entity.OrderPurchase, in)
}

func (uc *OrderUseCase) create(ctx context.Context, caller entity.Caller, kind entity.OrderKind, in dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	op := "create_" + string(kind) + "_order"
	lines, err := buildLines(in)
	if err != nil {
		return nil, uc.fail(op, err)
	}

	if kind == entity.OrderSales {
		// Lectura previa fuera de la transacción: rechaza rápido y nombra la línea. La reserva
		// dentro de la transacción vuelve a verificar de forma atómica.
		if err := uc.precheckSellable(ctx, lines); err != nil {
			return nil, uc.fail(op, err)
		}
	}

	var order *entity.Order
	for attempt := 1; ; attempt++ {
		now := uc.now()
		order = &entity.Order{
			ID:                    uuid.New().String(),
			Kind:                  kind,
			Number:                uc.numbers(kind, now),
			CounterpartyID:        in.CounterpartyID,
			Status:                entity.OrderStatusCreated,
			DeliveryTerms:         in.DeliveryTerms,
			RequestedDeliveryDate: in.RequestedDeliveryDate,
			CreatedBy:             caller.UserID,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		for _, l := range lines {
			cp := *l
			cp.ID = uuid.New().String()
			cp.OrderID = order.ID
			order.Lines = append(order.Lines, &cp)
		}

		err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
			return uc.persistNewOrder(ctx, repos, order)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrDuplicateOrderNumber) && attempt < uc.retries {
			uc.log.Warn().Str("number", order.Number).Int("attempt", attempt).Msg("número de orden duplicado, reintentando")
			continue
		}
		return nil, uc.fail(op, err)
	}

	uc.metrics.ObserveOrder(kind, "created")
	uc.log.Info().
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("kind", string(kind)).
		Int("lines", len(order.Lines)).
		Str("user_id", caller.UserID).
		Msg("orden creada")
	return &dto.CreateOrderResponse{ID: order.ID, Number: order.Number, Status: order.Status}, nil
}

// persistNewOrder inserta la orden, reserva (ventas) y actualiza estadísticas del tercero.
func (uc *OrderUseCase) persistNewOrder(ctx context.Context, repos repository.Repositories, order *entity.Order) error {
	cp, err := repos.Counterparties.GetForUpdate(ctx, order.CounterpartyID)
	if err != nil {
		return err
	}
	want := entity.CounterpartyCustomer
	if order.Kind == entity.OrderPurchase {
		want = entity.CounterpartySupplier
	}
	if cp.Kind != want {
		return domain.NewValidationError("counterparty_id", "el tercero no es "+want)
	}

	if err := repos.Orders.Create(ctx, order); err != nil {
		return err
	}

	if order.Kind == entity.OrderSales {
		totals, keys := stockTotals(order.Lines)
		for _, key := range keys {
			_, err := repos.Stock.Reserve(ctx, key, totals[key])
			if errors.Is(err, domain.ErrArticleNotFound) {
				err = domain.NewStockError(domain.ErrInsufficientStock, key.String(), totals[key], decimal.Zero)
			}
			if err != nil {
				return nameLine(err, order.Lines, key)
			}
		}
	}

	updated := inventory.ApplyOrderToCounterparty(*cp, order.Kind, order.Total())
	updated.UpdatedAt = order.CreatedAt
	return repos.Counterparties.UpdateStats(ctx, &updated)
}

// precheckSellable acumula lo pedido por artículo en el orden de las líneas y falla en la
// primera línea cuyo acumulado supera lo vendible.
func (uc *OrderUseCase) precheckSellable(ctx context.Context, lines []*entity.OrderLine) error {
	cumulative := make(map[entity.ArticleKey]decimal.Decimal)
	sellable := make(map[entity.ArticleKey]decimal.Decimal)
	for i, l := range lines {
		if !l.StockBound() {
			continue
		}
		key := *l.Article
		avail, ok := sellable[key]
		if !ok {
			if _, err := uc.reads.Articles.GetByKey(ctx, key); err != nil {
				return err
			}
			rec, err := uc.reads.Stock.Get(ctx, key)
			switch {
			case errors.Is(err, domain.ErrArticleNotFound):
				avail = decimal.Zero
			case err != nil:
				return err
			default:
				avail = rec.Sellable()
			}
			sellable[key] = avail
		}
		cumulative[key] = cumulative[key].Add(l.QuantityOrdered)
		if cumulative[key].GreaterThan(avail) {
			return domain.NewStockError(domain.ErrInsufficientStock, key.String(), cumulative[key], avail).WithLine(i, "")
		}
	}
	return nil
}

// buildLines valida la solicitud y arma las líneas (sin IDs).
func buildLines(in dto.CreateOrderRequest) ([]*entity.OrderLine, error) {
	if in.CounterpartyID == "" {
		return nil, domain.NewValidationError("counterparty_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "la orden debe tener al menos una línea")
	}
	lines := make([]*entity.OrderLine, 0, len(in.Lines))
	for i, r := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		t := entity.ArticleType(r.ArticleType)
		if !t.Valid() {
			return nil, domain.NewValidationError(field+".article_type", "tipo de artículo desconocido")
		}
		if t.StockBound() && r.ArticleID == "" {
			return nil, domain.NewValidationError(field+".article_id", "requerido")
		}
		if err := inventory.ValidateQuantity(field+".quantity", r.Quantity); err != nil {
			return nil, err
		}
		if r.UnitPrice.IsNegative() {
			return nil, domain.NewValidationError(field+".unit_price", "no puede ser negativo")
		}
		line := &entity.OrderLine{
			LineNo:            i + 1,
			ArticleType:       t,
			QuantityOrdered:   r.Quantity,
			QuantityDelivered: decimal.Zero,
			UnitPrice:         r.UnitPrice,
			Status:            entity.LineStatusPending,
		}
		if r.ArticleID != "" {
			line.Article = &entity.ArticleKey{Type: t, ID: r.ArticleID}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// stockTotals agrupa cantidades por artículo y devuelve las claves en orden determinista,
// para que dos transacciones bloqueen filas siempre en la misma secuencia.
func stockTotals(lines []*entity.OrderLine) (map[entity.ArticleKey]decimal.Decimal, []entity.ArticleKey) {
	totals := make(map[entity.ArticleKey]decimal.Decimal)
	var keys []entity.ArticleKey
	for _, l := range lines {
		if !l.StockBound() {
			continue
		}
		key := *l.Article
		if _, ok := totals[key]; !ok {
			keys = append(keys, key)
		}
		totals[key] = totals[key].Add(l.Outstanding())
	}
	sortKeys(keys)
	return totals, keys
}

func sortKeys(keys []entity.ArticleKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// nameLine asocia el rechazo de una reserva agregada a la línea que lo provoca, con el mismo
// criterio que precheckSellable: la primera línea, en el orden de la solicitud, cuyo acumulado
// del artículo supera lo vendible. Si lo vendible se desconoce (cero) es la primera línea del artículo.
func nameLine(err error, lines []*entity.OrderLine, key entity.ArticleKey) error {
	var se *domain.StockError
	if !errors.As(err, &se) {
		return err
	}
	cumulative := decimal.Zero
	first := -1
	for i, l := range lines {
		if l.Article == nil || *l.Article != key {
			continue
		}
		if first < 0 {
			first = i
		}
		cumulative = cumulative.Add(l.QuantityOrdered)
		if cumulative.GreaterThan(se.Available) {
			named := se.WithLine(i, l.ID)
			named.Requested = cumulative
			return named
		}
	}
	if first >= 0 {
		return se.WithLine(first, lines[first].ID)
	}
	return err
}
