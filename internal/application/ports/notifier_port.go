package ports

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// Notifier define el puerto de salida hacia el sink de notificaciones (consola, push, correo).
// Dispatch se invoca solo después del commit; no bloquea ni devuelve error: la entrega es
// de mejor esfuerzo, un solo intento, y sus fallas se registran y se descartan.
type Notifier interface {
	Dispatch(ctx context.Context, notes ...entity.Notification)
}
