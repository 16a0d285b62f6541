package orders

import (
	"context"
	"time"

	appinventory "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/ports"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// DefaultNumberRetries reintentos ante colisión del número de orden.
const DefaultNumberRetries = 5

// Options parámetros opcionales del caso de uso.
type Options struct {
	NumberRetries int
	Numbers       NumberFunc
	Now           func() time.Time
}

// OrderUseCase máquina de estados de órdenes de venta y compra: creación con reservas,
// entregas parciales contra reserva, anulación y verificación.
type OrderUseCase struct {
	txRunner repository.TxRunner
	reads    repository.Repositories
	monitor  *appinventory.ThresholdMonitor
	notifier ports.Notifier
	metrics  ports.Metrics
	log      *logger.Logger
	retries  int
	numbers  NumberFunc
	now      func() time.Time
}

// NewOrderUseCase construye el caso de uso. reads son repositorios sin transacción para la
// verificación previa y las consultas.
func NewOrderUseCase(
	txRunner repository.TxRunner,
	reads repository.Repositories,
	monitor *appinventory.ThresholdMonitor,
	notifier ports.Notifier,
	metrics ports.Metrics,
	log *logger.Logger,
	opts Options,
) *OrderUseCase {
	uc := &OrderUseCase{
		txRunner: txRunner,
		reads:    reads,
		monitor:  monitor,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
		retries:  opts.NumberRetries,
		numbers:  opts.Numbers,
		now:      opts.Now,
	}
	if uc.metrics == nil {
		uc.metrics = ports.NopMetrics{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.retries <= 0 {
		uc.retries = DefaultNumberRetries
	}
	if uc.numbers == nil {
		uc.numbers = NewOrderNumber
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.monitor == nil {
		uc.monitor = appinventory.NewThresholdMonitor(nil)
	}
	return uc
}

// fail registra la métrica y, si no es un rechazo de negocio, el detalle completo en el log.
func (uc *OrderUseCase) fail(op string, err error) error {
	uc.metrics.ObserveRejection(op, err)
	if !domain.IsBusiness(err) {
		uc.log.Error().Err(err).Str("op", op).Msg("falla de almacenamiento en operación de orden")
		return domain.WrapStorage(op, err)
	}
	return err
}

// dispatch despacha notificaciones ya confirmadas; nunca afecta el resultado.
func (uc *OrderUseCase) dispatch(ctx context.Context, alerts []entity.AlertEvent, notes []entity.Notification) {
	for _, a := range alerts {
		uc.metrics.ObserveAlert(a.Domain)
	}
	if len(notes) > 0 && uc.notifier != nil {
		uc.notifier.Dispatch(ctx, notes...)
	}
}
