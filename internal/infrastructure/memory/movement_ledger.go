package memory

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

type movementLedger struct{ v view }

func (l *movementLedger) Append(_ context.Context, entry *entity.MovementEntry) error {
	return l.v.write(func(st *state) error {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		st.seq++
		entry.Seq = st.seq
		st.movements = append(st.movements, *entry)
		return nil
	})
}

// History toma una copia de las entradas de la clave al empezar cada recorrido.
func (l *movementLedger) History(_ context.Context, key entity.ArticleKey, filter repository.HistoryFilter) iter.Seq2[*entity.MovementEntry, error] {
	return func(yield func(*entity.MovementEntry, error) bool) {
		var matched []entity.MovementEntry
		_ = l.v.read(func(st *state) error {
			for _, m := range st.movements {
				if m.Key != key {
					continue
				}
				if filter.From != nil && m.OccurredAt.Before(*filter.From) {
					continue
				}
				if filter.To != nil && m.OccurredAt.After(*filter.To) {
					continue
				}
				matched = append(matched, m)
			}
			return nil
		})
		for i := range matched {
			if !yield(&matched[i], nil) {
				return
			}
		}
	}
}

func (l *movementLedger) Totals(_ context.Context, key entity.ArticleKey) (inbound, outbound decimal.Decimal, err error) {
	err = l.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.Key != key {
				continue
			}
			if m.Direction == entity.DirectionInbound {
				inbound = inbound.Add(m.Quantity)
			} else {
				outbound = outbound.Add(m.Quantity)
			}
		}
		return nil
	})
	return inbound, outbound, err
}
