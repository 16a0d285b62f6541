package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// OrderRepository persistencia de órdenes y sus líneas.
type OrderRepository interface {
	// Create inserta cabecera y líneas. domain.ErrDuplicateOrderNumber si el número ya existe.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve la orden con sus líneas o domain.ErrOrderNotFound.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID bloqueando la cabecera (serializa entregas sobre la misma orden).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateLine(ctx context.Context, line *entity.OrderLine) error
	UpdateStatus(ctx context.Context, order *entity.Order) error
}
