package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// DefaultPageSize filas por página al recorrer el libro de movimientos.
const DefaultPageSize = 200

// Store agrupa el pool y construye repositorios atados al pool o a una transacción.
type Store struct {
	pool     *pgxpool.Pool
	pageSize int
}

// NewStore construye el store. pageSize <= 0 usa DefaultPageSize.
func NewStore(pool *pgxpool.Pool, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{pool: pool, pageSize: pageSize}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit
// o Rollback. Las mutaciones de stock son UPDATE condicionales: cada verificación y su cambio
// ocurren en la misma sentencia, con la fila bloqueada hasta el commit.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx, s.pageSize)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repositories devuelve repositorios sobre el pool (lecturas fuera de transacción).
func (s *Store) Repositories() repository.Repositories {
	return NewRepositories(s.pool, s.pageSize)
}

// NewRepositories construye todos los repositorios sobre q (pool o tx).
func NewRepositories(q Querier, pageSize int) repository.Repositories {
	return repository.Repositories{
		Stock:          NewStockRepository(q),
		Movements:      NewMovementLedger(q, pageSize),
		Orders:         NewOrderRepository(q),
		Articles:       NewArticleRepository(q),
		Counterparties: NewCounterpartyRepository(q),
	}
}
