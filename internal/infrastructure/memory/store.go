// Package memory implementa los repositorios del motor en memoria con el mismo modelo
// transaccional que PostgreSQL: cada Run trabaja sobre una copia del estado bajo un único
// candado y la copia reemplaza al estado solo si fn termina sin error.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

type state struct {
	articles       map[entity.ArticleKey]entity.Article
	stock          map[entity.ArticleKey]entity.StockRecord
	movements      []entity.MovementEntry
	seq            int64
	orders         map[string]*entity.Order
	numbers        map[string]string // número → id
	counterparties map[string]entity.Counterparty
}

func newState() state {
	return state{
		articles:       map[entity.ArticleKey]entity.Article{},
		stock:          map[entity.ArticleKey]entity.StockRecord{},
		orders:         map[string]*entity.Order{},
		numbers:        map[string]string{},
		counterparties: map[string]entity.Counterparty{},
	}
}

func (s state) clone() state {
	c := state{
		articles:       maps.Clone(s.articles),
		stock:          maps.Clone(s.stock),
		movements:      slices.Clone(s.movements),
		seq:            s.seq,
		orders:         make(map[string]*entity.Order, len(s.orders)),
		numbers:        maps.Clone(s.numbers),
		counterparties: maps.Clone(s.counterparties),
	}
	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}
	return c
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = make([]*entity.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lc := *l
		if l.Article != nil {
			k := *l.Article
			lc.Article = &k
		}
		cp.Lines[i] = &lc
	}
	return &cp
}

// Store almacenamiento en memoria. Seguro para uso concurrente.
type Store struct {
	mu    sync.RWMutex
	state state
	nowFn func() time.Time
}

// New crea un store vacío.
func New() *Store {
	return &Store{state: newState(), nowFn: time.Now}
}

// Run ejecuta fn sobre una copia del estado. Las transacciones quedan serializadas.
func (s *Store) Run(_ context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(newRepositories(view{st: &tx, now: s.nowFn})); err != nil {
		return err
	}
	s.state = tx
	return nil
}

// Repositories devuelve repositorios fuera de transacción: cada llamada toma el candado.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(view{store: s, now: s.nowFn})
}

// PutArticle registra un artículo en el maestro (datos externos al motor).
func (s *Store) PutArticle(a entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.articles[a.Key] = a
}

// PutCounterparty registra un cliente o proveedor.
func (s *Store) PutCounterparty(c entity.Counterparty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.counterparties[c.ID] = c
}

// view resuelve el estado sobre el que opera un repositorio: el de la transacción (ya bajo
// candado) o el del store, tomando el candado en cada llamada.
type view struct {
	store *Store
	st    *state
	now   func() time.Time
}

func (v view) read(fn func(st *state) error) error {
	if v.store == nil {
		return fn(v.st)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(&v.store.state)
}

func (v view) write(fn func(st *state) error) error {
	if v.store == nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	// Fuera de transacción la escritura es atómica por llamada: trabaja sobre una copia.
	tx := v.store.state.clone()
	if err := fn(&tx); err != nil {
		return err
	}
	v.store.state = tx
	return nil
}

func newRepositories(v view) repository.Repositories {
	return repository.Repositories{
		Stock:          &stockRepo{v: v},
		Movements:      &movementLedger{v: v},
		Orders:         &orderRepo{v: v},
		Articles:       &articleRepo{v: v},
		Counterparties: &counterpartyRepo{v: v},
	}
}
