package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-engine/internal/application/ports"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

var _ ports.Notifier = (*Dispatcher)(nil)

// DefaultTimeout plazo de un despacho si no se configura otro.
const DefaultTimeout = 3 * time.Second

// Dispatcher implementa ports.Notifier: entrega en segundo plano, un solo intento por
// notificación, con plazo propio. Las fallas se registran y se descartan.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewDispatcher construye el despachador.
func NewDispatcher(sink Sink, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{sink: sink, timeout: timeout, log: log}
}

// Dispatch no bloquea. El contexto del request puede terminar antes que la entrega, por eso
// se desacopla su cancelación.
func (d *Dispatcher) Dispatch(ctx context.Context, notes ...entity.Notification) {
	if len(notes) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		base := context.WithoutCancel(ctx)
		for _, n := range notes {
			d.send(base, n)
		}
	}()
}

// send entrega una notificación con su propio plazo; una entrega lenta no consume el de las demás.
func (d *Dispatcher) send(ctx context.Context, n entity.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.sink.Send(sendCtx, n); err != nil {
		d.log.Warn().Err(err).
			Str("kind", n.Kind).
			Str("reference", n.Reference).
			Msg("no se pudo entregar la notificación")
	}
}

// Wait espera los despachos en curso (apagado ordenado y tests).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
