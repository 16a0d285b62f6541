package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// LowStockItem artículo cuyo disponible está en o bajo su umbral de alerta.
type LowStockItem struct {
	Article   entity.Article
	Available decimal.Decimal
	Reserved  decimal.Decimal
}

// ArticleRepository lectura del maestro de artículos (externo al motor).
type ArticleRepository interface {
	// GetByKey devuelve el artículo o domain.ErrArticleNotFound.
	GetByKey(ctx context.Context, key entity.ArticleKey) (*entity.Article, error)
	// ListBelowFloor artículos en o bajo su umbral; domain vacío = todos los dominios.
	ListBelowFloor(ctx context.Context, domain string) ([]LowStockItem, error)
}
