package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo lectura del maestro de artículos.
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// GetByKey obtiene el artículo.
func (r *ArticleRepo) GetByKey(ctx context.Context, key entity.ArticleKey) (*entity.Article, error) {
	query := `
		SELECT article_type, article_id, name, domain, unit, alert_floor
		FROM articles WHERE article_type = $1 AND article_id = $2`
	var (
		a   entity.Article
		typ string
	)
	err := r.q.QueryRow(ctx, query, string(key.Type), key.ID).Scan(
		&typ, &a.Key.ID, &a.Name, &a.Domain, &a.Unit, &a.AlertFloor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	a.Key.Type = entity.ArticleType(typ)
	return &a, nil
}

// ListBelowFloor artículos con stock en o bajo el umbral; los que nunca tuvieron entradas cuentan como cero.
func (r *ArticleRepo) ListBelowFloor(ctx context.Context, domainName string) ([]repository.LowStockItem, error) {
	query := `
		SELECT a.article_type, a.article_id, a.name, a.domain, a.unit, a.alert_floor,
			COALESCE(s.quantity_available, 0), COALESCE(s.quantity_reserved, 0)
		FROM articles a
		LEFT JOIN stock_records s USING (article_type, article_id)
		WHERE a.article_type <> 'service'
		  AND ($1 = '' OR a.domain = $1)
		  AND COALESCE(s.quantity_available, 0) <= a.alert_floor
		ORDER BY a.alert_floor - COALESCE(s.quantity_available, 0) DESC, a.article_type, a.article_id`
	rows, err := r.q.Query(ctx, query, domainName)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.LowStockItem, error) {
		var (
			it  repository.LowStockItem
			typ string
		)
		err := row.Scan(&typ, &it.Article.Key.ID, &it.Article.Name, &it.Article.Domain,
			&it.Article.Unit, &it.Article.AlertFloor, &it.Available, &it.Reserved)
		it.Article.Key.Type = entity.ArticleType(typ)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}
