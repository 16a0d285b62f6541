package repository

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// HistoryFilter rango opcional de fechas para History.
type HistoryFilter struct {
	From *time.Time
	To   *time.Time
}

// MovementLedger libro de movimientos de solo anexado.
type MovementLedger interface {
	// Append es la única mutación. Asigna ID (si falta) y Seq.
	Append(ctx context.Context, entry *entity.MovementEntry) error
	// History recorre los movimientos de la clave en orden de commit. La secuencia es perezosa
	// (lee por páginas) y se puede recorrer varias veces; cada recorrido vuelve a consultar.
	History(ctx context.Context, key entity.ArticleKey, filter HistoryFilter) iter.Seq2[*entity.MovementEntry, error]
	// Totals suma entradas y salidas de la clave (conciliación contra el disponible).
	Totals(ctx context.Context, key entity.ArticleKey) (inbound, outbound decimal.Decimal, err error)
}
