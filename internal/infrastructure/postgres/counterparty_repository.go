package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.CounterpartyRepository = (*CounterpartyRepo)(nil)

// CounterpartyRepo clientes y proveedores.
type CounterpartyRepo struct {
	q Querier
}

// NewCounterpartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCounterpartyRepository(q Querier) *CounterpartyRepo {
	return &CounterpartyRepo{q: q}
}

// GetForUpdate obtiene el tercero bloqueando la fila mientras se acumulan sus totales.
func (r *CounterpartyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Counterparty, error) {
	query := `
		SELECT id, kind, name, sales_total, purchase_total, order_count, loyalty_tier, updated_at
		FROM counterparties WHERE id = $1 FOR UPDATE`
	var c entity.Counterparty
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Kind, &c.Name, &c.SalesTotal, &c.PurchaseTotal, &c.OrderCount, &c.LoyaltyTier, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCounterpartyNotFound
		}
		return nil, fmt.Errorf("get counterparty: %w", err)
	}
	return &c, nil
}

// UpdateStats persiste totales, número de órdenes y nivel de fidelización.
func (r *CounterpartyRepo) UpdateStats(ctx context.Context, c *entity.Counterparty) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE counterparties
		SET sales_total = $2, purchase_total = $3, order_count = $4, loyalty_tier = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.SalesTotal, c.PurchaseTotal, c.OrderCount, c.LoyaltyTier, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update counterparty stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCounterpartyNotFound
	}
	return nil
}
