package postgres

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.MovementLedger = (*MovementLedger)(nil)

// MovementLedger libro de movimientos sobre PostgreSQL. Solo INSERT; seq (BIGSERIAL) da el
// orden de commit por artículo porque toda entrada va acompañada del UPDATE de su fila de stock.
type MovementLedger struct {
	q        Querier
	pageSize int
}

// NewMovementLedger construye el libro. Pasar pool o tx (Querier).
func NewMovementLedger(q Querier, pageSize int) *MovementLedger {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &MovementLedger{q: q, pageSize: pageSize}
}

// Append inserta el movimiento y devuelve en entry el seq asignado.
func (l *MovementLedger) Append(ctx context.Context, entry *entity.MovementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, article_type, article_id, direction, quantity, unit, reason, reference, actor, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := l.q.QueryRow(ctx, query,
		entry.ID, string(entry.Key.Type), entry.Key.ID, string(entry.Direction), entry.Quantity,
		entry.Unit, string(entry.Reason), entry.Reference, entry.Actor, entry.OccurredAt,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// History recorre por páginas (keyset sobre seq). Cada recorrido vuelve a consultar desde el inicio.
func (l *MovementLedger) History(ctx context.Context, key entity.ArticleKey, filter repository.HistoryFilter) iter.Seq2[*entity.MovementEntry, error] {
	query := `
		SELECT seq, id, article_type, article_id, direction, quantity, unit, reason, reference, actor, occurred_at
		FROM stock_movements
		WHERE article_type = $1 AND article_id = $2
		  AND ($3::timestamptz IS NULL OR occurred_at >= $3)
		  AND ($4::timestamptz IS NULL OR occurred_at <= $4)
		  AND seq > $5
		ORDER BY seq
		LIMIT $6`
	return func(yield func(*entity.MovementEntry, error) bool) {
		var after int64
		for {
			rows, err := l.q.Query(ctx, query, string(key.Type), key.ID, filter.From, filter.To, after, l.pageSize)
			if err != nil {
				yield(nil, fmt.Errorf("movement history: %w", err))
				return
			}
			page, err := pgx.CollectRows(rows, scanMovement)
			if err != nil {
				yield(nil, fmt.Errorf("movement history: %w", err))
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < l.pageSize {
				return
			}
			after = page[len(page)-1].Seq
		}
	}
}

func scanMovement(row pgx.CollectableRow) (*entity.MovementEntry, error) {
	var (
		m                      entity.MovementEntry
		typ, direction, reason string
		occurred               time.Time
	)
	err := row.Scan(&m.Seq, &m.ID, &typ, &m.Key.ID, &direction, &m.Quantity,
		&m.Unit, &reason, &m.Reference, &m.Actor, &occurred)
	if err != nil {
		return nil, err
	}
	m.Key.Type = entity.ArticleType(typ)
	m.Direction = entity.Direction(direction)
	m.Reason = entity.MovementReason(reason)
	m.OccurredAt = occurred
	return &m, nil
}

// Totals suma entradas y salidas del artículo.
func (l *MovementLedger) Totals(ctx context.Context, key entity.ArticleKey) (inbound, outbound decimal.Decimal, err error) {
	query := `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'inbound'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'outbound'), 0)
		FROM stock_movements
		WHERE article_type = $1 AND article_id = $2`
	if err = l.q.QueryRow(ctx, query, string(key.Type), key.ID).Scan(&inbound, &outbound); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("movement totals: %w", err)
	}
	return inbound, outbound, nil
}
