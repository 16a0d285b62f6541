package repository

import "context"

// Repositories agrupa los repositorios atados a una misma conexión o transacción.
type Repositories struct {
	Stock          StockRepository
	Movements      MovementLedger
	Orders         OrderRepository
	Articles       ArticleRepository
	Counterparties CounterpartyRepository
}

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
