package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta cabecera y líneas (las líneas en un solo batch).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (id, kind, order_number, counterparty_id, status, delivery_terms,
			requested_delivery_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		o.ID, string(o.Kind), o.Number, o.CounterpartyID, o.Status, o.DeliveryTerms,
		o.RequestedDeliveryDate, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return domain.ErrDuplicateOrderNumber
		}
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		var articleID *string
		if l.Article != nil {
			id := l.Article.ID
			articleID = &id
		}
		batch.Queue(`
			INSERT INTO order_lines (id, order_id, line_no, article_type, article_id,
				quantity_ordered, quantity_delivered, unit_price, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, o.ID, l.LineNo, string(l.ArticleType), articleID,
			l.QuantityOrdered, l.QuantityDelivered, l.UnitPrice, l.Status,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create order lines: %w", err)
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la cabecera: dos entregas sobre la misma orden quedan serializadas.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, true)
}

func (r *OrderRepo) get(ctx context.Context, id string, lock bool) (*entity.Order, error) {
	query := `
		SELECT id, kind, order_number, counterparty_id, status, delivery_terms,
			requested_delivery_date, created_by, created_at, updated_at
		FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var (
		o         entity.Order
		kind      string
		requested *time.Time
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &kind, &o.Number, &o.CounterpartyID, &o.Status, &o.DeliveryTerms,
		&requested, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Kind = entity.OrderKind(kind)
	o.RequestedDeliveryDate = requested

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, line_no, article_type, article_id,
			quantity_ordered, quantity_delivered, unit_price, status
		FROM order_lines WHERE order_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	o.Lines, err = pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	return &o, nil
}

func scanOrderLine(row pgx.CollectableRow) (*entity.OrderLine, error) {
	var (
		l         entity.OrderLine
		typ       string
		articleID *string
	)
	err := row.Scan(&l.ID, &l.OrderID, &l.LineNo, &typ, &articleID,
		&l.QuantityOrdered, &l.QuantityDelivered, &l.UnitPrice, &l.Status)
	if err != nil {
		return nil, err
	}
	l.ArticleType = entity.ArticleType(typ)
	if articleID != nil {
		l.Article = &entity.ArticleKey{Type: l.ArticleType, ID: *articleID}
	}
	return &l, nil
}

// UpdateLine persiste cantidad entregada y estado de la línea.
func (r *OrderRepo) UpdateLine(ctx context.Context, line *entity.OrderLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE order_lines SET quantity_delivered = $3, status = $4
		WHERE id = $1 AND order_id = $2`,
		line.ID, line.OrderID, line.QuantityDelivered, line.Status)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateStatus persiste el estado agregado.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		o.ID, o.Status, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
