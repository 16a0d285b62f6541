package inventory

import (
	"context"
	"errors"
	"iter"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/ports"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// StockQueryUseCase consultas de solo lectura: nivel de stock, historial de movimientos,
// conciliación contra el libro y artículos bajo umbral.
type StockQueryUseCase struct {
	repos   repository.Repositories
	metrics ports.Metrics
	log     *logger.Logger
}

// NewStockQueryUseCase recibe repositorios sin transacción (pool o store en memoria).
func NewStockQueryUseCase(repos repository.Repositories, metrics ports.Metrics, log *logger.Logger) *StockQueryUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockQueryUseCase{repos: repos, metrics: metrics, log: log}
}

// GetStockLevel devuelve disponible, reservado y vendible. Un artículo sin entradas aún
// tiene nivel cero; ErrArticleNotFound solo si el artículo no existe en el maestro.
func (uc *StockQueryUseCase) GetStockLevel(ctx context.Context, key entity.ArticleKey) (*dto.StockLevelResponse, error) {
	rec, err := uc.stockOrZero(ctx, key)
	if err != nil {
		return nil, uc.fail("stock_level", err, key)
	}
	level := ToStockLevel(rec)
	return &level, nil
}

// Movements expone la secuencia perezosa del libro para consumidores que recorren por streaming.
func (uc *StockQueryUseCase) Movements(ctx context.Context, key entity.ArticleKey, filter repository.HistoryFilter) iter.Seq2[*entity.MovementEntry, error] {
	return uc.repos.Movements.History(ctx, key, filter)
}

// GetMovementHistory devuelve los movimientos en orden de commit. limit <= 0 trae todos.
func (uc *StockQueryUseCase) GetMovementHistory(ctx context.Context, key entity.ArticleKey, filter repository.HistoryFilter, limit int) ([]dto.MovementResponse, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	out := make([]dto.MovementResponse, 0)
	for m, err := range uc.repos.Movements.History(ctx, key, filter) {
		if err != nil {
			return nil, uc.fail("history", err, key)
		}
		out = append(out, dto.MovementResponse{
			ID:         m.ID,
			Seq:        m.Seq,
			Direction:  string(m.Direction),
			Quantity:   m.Quantity,
			Unit:       m.Unit,
			Reason:     string(m.Reason),
			Reference:  m.Reference,
			Actor:      m.Actor,
			OccurredAt: m.OccurredAt,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ReconcileStock compara el disponible con Σentradas − Σsalidas del libro.
func (uc *StockQueryUseCase) ReconcileStock(ctx context.Context, key entity.ArticleKey) (*dto.ReconciliationResponse, error) {
	rec, err := uc.stockOrZero(ctx, key)
	if err != nil {
		return nil, uc.fail("reconcile", err, key)
	}
	in, out, err := uc.repos.Movements.Totals(ctx, key)
	if err != nil {
		return nil, uc.fail("reconcile", err, key)
	}
	return &dto.ReconciliationResponse{
		ArticleType: string(key.Type),
		ArticleID:   key.ID,
		Available:   rec.Available,
		Inbound:     in,
		Outbound:    out,
		Balanced:    rec.Available.Equal(in.Sub(out)),
	}, nil
}

// ListLowStock artículos en o bajo su umbral, primero los de mayor déficit.
// domain vacío considera todos los dominios.
func (uc *StockQueryUseCase) ListLowStock(ctx context.Context, domainName string) ([]dto.LowStockDTO, error) {
	if domainName != "" && !entity.ValidDomain(domainName) {
		return nil, domain.NewValidationError("domain", "dominio desconocido")
	}
	items, err := uc.repos.Articles.ListBelowFloor(ctx, domainName)
	if err != nil {
		return nil, uc.fail("low_stock", err, entity.ArticleKey{})
	}
	out := make([]dto.LowStockDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockDTO{
			ArticleType: string(it.Article.Key.Type),
			ArticleID:   it.Article.Key.ID,
			Name:        it.Article.Name,
			Domain:      it.Article.Domain,
			Available:   it.Available,
			Reserved:    it.Reserved,
			AlertFloor:  it.Article.AlertFloor,
			Unit:        it.Article.Unit,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		defA := out[i].AlertFloor.Sub(out[i].Available)
		defB := out[j].AlertFloor.Sub(out[j].Available)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		if out[i].ArticleType != out[j].ArticleType {
			return out[i].ArticleType < out[j].ArticleType
		}
		return out[i].ArticleID < out[j].ArticleID
	})
	return out, nil
}

func (uc *StockQueryUseCase) stockOrZero(ctx context.Context, key entity.ArticleKey) (*entity.StockRecord, error) {
	rec, err := uc.repos.Stock.Get(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrArticleNotFound) {
		return nil, err
	}
	article, err := uc.repos.Articles.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return &entity.StockRecord{
		Key:       key,
		Available: decimal.Zero,
		Reserved:  decimal.Zero,
		Unit:      article.Unit,
	}, nil
}

// fail registra la métrica de rechazo; una falla de almacenamiento además queda en el log
// con la causa completa, que nunca llega al cliente.
func (uc *StockQueryUseCase) fail(op string, err error, key entity.ArticleKey) error {
	uc.metrics.ObserveRejection(op, err)
	if domain.IsBusiness(err) {
		return err
	}
	ev := uc.log.Error().Err(err).Str("op", op)
	if key.ID != "" {
		ev = ev.Str("article", key.String())
	}
	ev.Msg("falla de almacenamiento en consulta de stock")
	return domain.WrapStorage(op, err)
}
