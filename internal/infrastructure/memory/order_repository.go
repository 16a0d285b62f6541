package memory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

type orderRepo struct{ v view }

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.numbers[o.Number]; ok {
			return domain.ErrDuplicateOrderNumber
		}
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[o.ID] = cloneOrder(o)
		st.numbers[o.Number] = o.ID
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.read(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateLine(_ context.Context, line *entity.OrderLine) error {
	return r.v.write(func(st *state) error {
		o, ok := st.orders[line.OrderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		for _, l := range o.Lines {
			if l.ID == line.ID {
				l.QuantityDelivered = line.QuantityDelivered
				l.Status = line.Status
				return nil
			}
		}
		return domain.ErrOrderNotFound
	})
}

func (r *orderRepo) UpdateStatus(_ context.Context, order *entity.Order) error {
	return r.v.write(func(st *state) error {
		o, ok := st.orders[order.ID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Status = order.Status
		o.UpdatedAt = order.UpdatedAt
		return nil
	})
}
