package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// Cada mutación es un UPDATE condicional: verificación y cambio son la misma sentencia.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `article_type, article_id, quantity_available, quantity_reserved,
	unit, location, expiry_date, unit_cost, updated_at`

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var (
		s      entity.StockRecord
		typ    string
		expiry *time.Time
		cost   decimal.NullDecimal
	)
	if err := row.Scan(&typ, &s.Key.ID, &s.Available, &s.Reserved,
		&s.Unit, &s.Location, &expiry, &cost, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Key.Type = entity.ArticleType(typ)
	s.ExpiryDate = expiry
	if cost.Valid {
		c := cost.Decimal
		s.UnitCost = &c
	}
	return &s, nil
}

// Get obtiene el registro de stock del artículo.
func (r *StockRepo) Get(ctx context.Context, key entity.ArticleKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE article_type = $1 AND article_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, string(key.Type), key.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.ArticleKey) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_records WHERE article_type = $1 AND article_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, string(key.Type), key.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Reserve incrementa quantity_reserved solo si lo vendible alcanza.
func (r *StockRepo) Reserve(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	query := `
		UPDATE stock_records
		SET quantity_reserved = quantity_reserved + $3, updated_at = now()
		WHERE article_type = $1 AND article_id = $2
		  AND quantity_available - quantity_reserved >= $3
		RETURNING ` + stockColumns
	return r.mutate(ctx, "reserve", query, key, qty, func(s *entity.StockRecord) error {
		return domain.NewStockError(domain.ErrInsufficientStock, key.String(), qty, s.Sellable())
	})
}

// Release decrementa quantity_reserved en min(qty, reservado).
func (r *StockRepo) Release(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	query := `
		UPDATE stock_records
		SET quantity_reserved = quantity_reserved - LEAST($3, quantity_reserved), updated_at = now()
		WHERE article_type = $1 AND article_id = $2
		RETURNING ` + stockColumns
	return r.mutate(ctx, "release", query, key, qty, nil)
}

// ConsumeReserved descuenta reservado y disponible (entrega contra reserva).
func (r *StockRepo) ConsumeReserved(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	query := `
		UPDATE stock_records
		SET quantity_reserved = quantity_reserved - $3,
		    quantity_available = quantity_available - $3,
		    updated_at = now()
		WHERE article_type = $1 AND article_id = $2
		  AND quantity_reserved >= $3
		RETURNING ` + stockColumns
	return r.mutate(ctx, "consume reserved", query, key, qty, func(s *entity.StockRecord) error {
		return domain.NewStockError(domain.ErrInconsistentReservation, key.String(), qty, s.Reserved)
	})
}

// ConsumeDirect descuenta disponible sin reserva previa, sin tocar lo reservado por órdenes.
func (r *StockRepo) ConsumeDirect(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	query := `
		UPDATE stock_records
		SET quantity_available = quantity_available - $3, updated_at = now()
		WHERE article_type = $1 AND article_id = $2
		  AND quantity_available - quantity_reserved >= $3
		RETURNING ` + stockColumns
	return r.mutate(ctx, "consume direct", query, key, qty, func(s *entity.StockRecord) error {
		return domain.NewStockError(domain.ErrInsufficientStock, key.String(), qty, s.Sellable())
	})
}

// Receive crea el registro o suma al disponible. El costo unitario queda como promedio
// ponderado y el vencimiento como el más próximo.
func (r *StockRepo) Receive(ctx context.Context, in entity.Receipt) (*entity.StockRecord, error) {
	if err := inventory.ValidateQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}
	var cost decimal.NullDecimal
	if in.UnitCost != nil {
		cost = decimal.NewNullDecimal(*in.UnitCost)
	}
	query := `
		INSERT INTO stock_records AS s (article_type, article_id, quantity_available, quantity_reserved,
			unit, location, expiry_date, unit_cost, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6, $7, $8)
		ON CONFLICT (article_type, article_id) DO UPDATE SET
			unit_cost = CASE
				WHEN EXCLUDED.unit_cost IS NULL THEN s.unit_cost
				WHEN s.unit_cost IS NULL OR s.quantity_available <= 0 THEN EXCLUDED.unit_cost
				ELSE (s.quantity_available * s.unit_cost + EXCLUDED.quantity_available * EXCLUDED.unit_cost)
					/ (s.quantity_available + EXCLUDED.quantity_available)
			END,
			quantity_available = s.quantity_available + EXCLUDED.quantity_available,
			location = COALESCE(NULLIF(EXCLUDED.location, ''), s.location),
			expiry_date = LEAST(s.expiry_date, EXCLUDED.expiry_date),
			updated_at = EXCLUDED.updated_at
		RETURNING ` + stockColumns
	s, err := scanStock(r.q.QueryRow(ctx, query,
		string(in.Key.Type), in.Key.ID, in.Quantity, in.Unit, in.Location, in.ExpiryDate, cost, in.At))
	if err != nil {
		return nil, fmt.Errorf("receive stock: %w", err)
	}
	return s, nil
}

// mutate ejecuta un UPDATE condicional. Sin filas afectadas distingue entre registro
// inexistente y condición no cumplida (rejected construye el error de negocio).
func (r *StockRepo) mutate(ctx context.Context, op, query string, key entity.ArticleKey, qty decimal.Decimal,
	rejected func(*entity.StockRecord) error) (*entity.StockRecord, error) {
	if err := inventory.ValidateQuantity("quantity", qty); err != nil {
		return nil, err
	}
	s, err := scanStock(r.q.QueryRow(ctx, query, string(key.Type), key.ID, qty))
	if err == nil {
		return s, nil
	}
	if isCheckViolation(err) {
		return nil, domain.NewStockError(domain.ErrInsufficientStock, key.String(), qty, decimal.Zero)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s stock: %w", op, err)
	}
	current, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if rejected == nil {
		return current, nil
	}
	return nil, rejected(current)
}
