package memory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

type counterpartyRepo struct{ v view }

func (r *counterpartyRepo) GetForUpdate(_ context.Context, id string) (*entity.Counterparty, error) {
	var out *entity.Counterparty
	err := r.v.read(func(st *state) error {
		c, ok := st.counterparties[id]
		if !ok {
			return domain.ErrCounterpartyNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *counterpartyRepo) UpdateStats(_ context.Context, c *entity.Counterparty) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.counterparties[c.ID]; !ok {
			return domain.ErrCounterpartyNotFound
		}
		st.counterparties[c.ID] = *c
		return nil
	})
}
