package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/ports"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	stockrules "github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// StockUseCase movimientos directos de stock: consumo sin reserva (insumos, siembra, ración),
// entradas (producción, recepción, ajuste) y liberación manual de reservas.
// Cada operación es una sola transacción; las alertas se despachan después del commit.
type StockUseCase struct {
	txRunner repository.TxRunner
	monitor  *ThresholdMonitor
	notifier ports.Notifier
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner repository.TxRunner,
	monitor *ThresholdMonitor,
	notifier ports.Notifier,
	metrics ports.Metrics,
	log *logger.Logger,
) *StockUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{
		txRunner: txRunner,
		monitor:  monitor,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// ParseStockKey valida tipo e id y exige que el tipo maneje stock.
func ParseStockKey(articleType, articleID string) (entity.ArticleKey, error) {
	key := entity.ArticleKey{Type: entity.ArticleType(articleType), ID: articleID}
	if !key.Type.Valid() {
		return key, domain.NewValidationError("article_type", "tipo de artículo desconocido")
	}
	if !key.Type.StockBound() {
		return key, domain.NewValidationError("article_type", "los servicios no manejan stock")
	}
	if articleID == "" {
		return key, domain.NewValidationError("article_id", "requerido")
	}
	return key, nil
}

// ConsumeArticle descuenta stock sin reserva previa. La verificación y el descuento son el mismo
// paso atómico del repositorio, así dos consumos concurrentes no pueden sobregirar el disponible.
func (uc *StockUseCase) ConsumeArticle(ctx context.Context, caller entity.Caller, in dto.ConsumeArticleRequest) (*dto.MovementResult, error) {
	key, err := ParseStockKey(in.ArticleType, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := stockrules.ValidateQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	reason := entity.ReasonConsumption
	if in.Reason != "" {
		reason = entity.MovementReason(in.Reason)
	}
	if reason != entity.ReasonConsumption && reason != entity.ReasonAdjustment {
		return nil, domain.NewValidationError("reason", "solo consumption o adjustment")
	}

	now := uc.now()
	var (
		result *dto.MovementResult
		notes  []entity.Notification
		alerts []entity.AlertEvent
	)
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		notes, alerts = nil, nil
		article, err := repos.Articles.GetByKey(ctx, key)
		if err != nil {
			return err
		}
		rec, err := repos.Stock.ConsumeDirect(ctx, key, in.Quantity)
		if errors.Is(err, domain.ErrArticleNotFound) {
			// El artículo existe pero nunca tuvo entradas: no hay nada que consumir.
			return domain.NewStockError(domain.ErrInsufficientStock, key.String(), in.Quantity, decimal.Zero)
		}
		if err != nil {
			return err
		}
		mov := &entity.MovementEntry{
			ID:         uuid.New().String(),
			Key:        key,
			Direction:  entity.DirectionOutbound,
			Quantity:   in.Quantity,
			Unit:       rec.Unit,
			Reason:     reason,
			Reference:  in.Reference,
			Actor:      caller.UserID,
			OccurredAt: now,
		}
		if err := repos.Movements.Append(ctx, mov); err != nil {
			return err
		}
		if ev := uc.monitor.Check(article, rec, now); ev != nil {
			alerts = append(alerts, *ev)
			notes = append(notes, uc.monitor.Notification(*ev))
		}
		result = &dto.MovementResult{MovementID: mov.ID, Stock: ToStockLevel(rec)}
		return nil
	})
	if err != nil {
		return nil, uc.fail("consume", err)
	}
	uc.metrics.ObserveMovement(reason, entity.DirectionOutbound, in.Quantity)
	uc.afterCommit(ctx, alerts, notes)
	return result, nil
}

// ReceiveArticle registra una entrada (producción, recepción, ajuste positivo). Crea el registro
// de stock si no existe y mantiene el costo promedio ponderado.
func (uc *StockUseCase) ReceiveArticle(ctx context.Context, caller entity.Caller, in dto.ReceiveArticleRequest) (*dto.MovementResult, error) {
	key, err := ParseStockKey(in.ArticleType, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := stockrules.ValidateQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if in.Unit == "" {
		return nil, domain.NewValidationError("unit", "requerido")
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	reason := entity.ReasonProduction
	if in.Reason != "" {
		reason = entity.MovementReason(in.Reason)
	}
	switch reason {
	case entity.ReasonProduction, entity.ReasonPurchaseReceipt, entity.ReasonAdjustment:
	default:
		return nil, domain.NewValidationError("reason", "solo production, purchase_receipt o adjustment")
	}

	now := uc.now()
	var result *dto.MovementResult
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		article, err := repos.Articles.GetByKey(ctx, key)
		if err != nil {
			return err
		}
		if article.Unit != "" && article.Unit != in.Unit {
			return domain.NewValidationError("unit", "el artículo se maneja en "+article.Unit)
		}
		rec, err := repos.Stock.Receive(ctx, entity.Receipt{
			Key:        key,
			Quantity:   in.Quantity,
			Unit:       in.Unit,
			Location:   in.Location,
			UnitCost:   in.UnitCost,
			ExpiryDate: in.ExpiryDate,
			At:         now,
		})
		if err != nil {
			return err
		}
		mov := &entity.MovementEntry{
			ID:         uuid.New().String(),
			Key:        key,
			Direction:  entity.DirectionInbound,
			Quantity:   in.Quantity,
			Unit:       in.Unit,
			Reason:     reason,
			Reference:  in.Reference,
			Actor:      caller.UserID,
			OccurredAt: now,
		}
		if err := repos.Movements.Append(ctx, mov); err != nil {
			return err
		}
		result = &dto.MovementResult{MovementID: mov.ID, Stock: ToStockLevel(rec)}
		return nil
	})
	if err != nil {
		return nil, uc.fail("receive", err)
	}
	uc.metrics.ObserveMovement(reason, entity.DirectionInbound, in.Quantity)
	return result, nil
}

// ReleaseReservation libera reserva abandonada (decrementa Reserved en min(qty, Reserved)).
// No genera movimiento: las reservas no cambian el disponible.
func (uc *StockUseCase) ReleaseReservation(ctx context.Context, caller entity.Caller, key entity.ArticleKey, qty decimal.Decimal) (*dto.StockLevelResponse, error) {
	if !key.Type.StockBound() || key.ID == "" {
		return nil, domain.NewValidationError("article", "clave de artículo inválida")
	}
	if err := stockrules.ValidateQuantity("quantity", qty); err != nil {
		return nil, err
	}
	var level dto.StockLevelResponse
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		rec, err := repos.Stock.Release(ctx, key, qty)
		if err != nil {
			return err
		}
		level = ToStockLevel(rec)
		return nil
	})
	if err != nil {
		return nil, uc.fail("release", err)
	}
	uc.log.Info().
		Str("article", key.String()).
		Str("quantity", qty.String()).
		Str("user_id", caller.UserID).
		Msg("reserva liberada manualmente")
	return &level, nil
}

// afterCommit despacha alertas ya confirmadas. Nunca afecta el resultado de la operación.
func (uc *StockUseCase) afterCommit(ctx context.Context, alerts []entity.AlertEvent, notes []entity.Notification) {
	for _, a := range alerts {
		uc.metrics.ObserveAlert(a.Domain)
	}
	if len(notes) > 0 && uc.notifier != nil {
		uc.notifier.Dispatch(ctx, notes...)
	}
}

// fail registra la métrica de rechazo y, si es una falla de almacenamiento, el detalle en el log.
func (uc *StockUseCase) fail(op string, err error) error {
	uc.metrics.ObserveRejection(op, err)
	if !domain.IsBusiness(err) {
		uc.log.Error().Err(err).Str("op", op).Msg("falla de almacenamiento en operación de stock")
		return domain.WrapStorage(op, err)
	}
	return err
}

// ToStockLevel convierte el registro a la respuesta pública.
func ToStockLevel(rec *entity.StockRecord) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ArticleType: string(rec.Key.Type),
		ArticleID:   rec.Key.ID,
		Available:   rec.Available,
		Reserved:    rec.Reserved,
		Sellable:    rec.Sellable(),
		Unit:        rec.Unit,
		Location:    rec.Location,
		UnitCost:    rec.UnitCost,
		ExpiryDate:  rec.ExpiryDate,
	}
}
