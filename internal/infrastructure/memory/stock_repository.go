package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

type stockRepo struct{ v view }

func (r *stockRepo) Get(_ context.Context, key entity.ArticleKey) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.v.read(func(st *state) error {
		rec, ok := st.stock[key]
		if !ok {
			return domain.ErrArticleNotFound
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *stockRepo) GetForUpdate(ctx context.Context, key entity.ArticleKey) (*entity.StockRecord, error) {
	return r.Get(ctx, key)
}

func (r *stockRepo) Reserve(_ context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	return r.apply(key, qty, inventory.Reserve)
}

func (r *stockRepo) Release(_ context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	return r.apply(key, qty, inventory.Release)
}

func (r *stockRepo) ConsumeReserved(_ context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	return r.apply(key, qty, inventory.ConsumeReserved)
}

func (r *stockRepo) ConsumeDirect(_ context.Context, key entity.ArticleKey, qty decimal.Decimal) (*entity.StockRecord, error) {
	return r.apply(key, qty, inventory.ConsumeDirect)
}

func (r *stockRepo) Receive(_ context.Context, in entity.Receipt) (*entity.StockRecord, error) {
	if in.At.IsZero() {
		in.At = r.v.now()
	}
	var out *entity.StockRecord
	err := r.v.write(func(st *state) error {
		var current *entity.StockRecord
		if rec, ok := st.stock[in.Key]; ok {
			current = &rec
		}
		next, err := inventory.Receive(current, in)
		if err != nil {
			return err
		}
		st.stock[in.Key] = next
		out = &next
		return nil
	})
	return out, err
}

type stockRule func(entity.StockRecord, decimal.Decimal, time.Time) (entity.StockRecord, error)

func (r *stockRepo) apply(key entity.ArticleKey, qty decimal.Decimal, rule stockRule) (*entity.StockRecord, error) {
	var out *entity.StockRecord
	err := r.v.write(func(st *state) error {
		rec, ok := st.stock[key]
		if !ok {
			return domain.ErrArticleNotFound
		}
		next, err := rule(rec, qty, r.v.now())
		if err != nil {
			return err
		}
		st.stock[key] = next
		out = &next
		return nil
	})
	return out, err
}
