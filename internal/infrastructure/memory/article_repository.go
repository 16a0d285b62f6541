package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

type articleRepo struct{ v view }

func (r *articleRepo) GetByKey(_ context.Context, key entity.ArticleKey) (*entity.Article, error) {
	var out *entity.Article
	err := r.v.read(func(st *state) error {
		a, ok := st.articles[key]
		if !ok {
			return domain.ErrArticleNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *articleRepo) ListBelowFloor(_ context.Context, domainName string) ([]repository.LowStockItem, error) {
	var out []repository.LowStockItem
	err := r.v.read(func(st *state) error {
		for key, a := range st.articles {
			if !key.Type.StockBound() || (domainName != "" && a.Domain != domainName) {
				continue
			}
			item := repository.LowStockItem{Article: a, Available: decimal.Zero, Reserved: decimal.Zero}
			if rec, ok := st.stock[key]; ok {
				item.Available, item.Reserved = rec.Available, rec.Reserved
			}
			if item.Available.LessThanOrEqual(a.AlertFloor) {
				out = append(out, item)
			}
		}
		return nil
	})
	return out, err
}
