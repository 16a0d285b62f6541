package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// CounterpartyRepository clientes y proveedores con estadísticas agregadas.
type CounterpartyRepository interface {
	// GetForUpdate devuelve el tercero bloqueado o domain.ErrCounterpartyNotFound.
	GetForUpdate(ctx context.Context, id string) (*entity.Counterparty, error)
	UpdateStats(ctx context.Context, c *entity.Counterparty) error
}
