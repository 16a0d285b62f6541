package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockRepository es el único escritor de las cantidades de StockRecord.
// Todas las mutaciones corren dentro de la transacción del llamador y devuelven el registro
// resultante; ninguna puede dejar Reserved > Available.
type StockRepository interface {
	// Get devuelve el registro o domain.ErrArticleNotFound si aún no existe.
	Get(ctx context.Context, key entity.ArticleKey) (*entity.StockRecord, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, key entity.ArticleKey) (*entity.StockRecord, error)

	Reserve(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error)
	Release(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error)
	ConsumeReserved(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error)
	ConsumeDirect(ctx context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error)
	// Receive crea el registro si no existe; si existe suma al disponible.
	Receive(ctx context.Context, in entity.Receipt) (*entity.StockRecord, error)
}
