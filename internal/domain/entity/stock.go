package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa la cantidad de un artículo en una ubicación conceptual.
// Invariante: 0 <= Reserved <= Available. Nunca se borra, solo se lleva a cero.
type StockRecord struct {
	Key        ArticleKey
	Available  decimal.Decimal
	Reserved   decimal.Decimal
	Unit       string
	Location   string
	ExpiryDate *time.Time
	UnitCost   *decimal.Decimal
	UpdatedAt  time.Time
}

// Sellable es lo que aún puede prometerse a nuevas órdenes: Available - Reserved.
func (s StockRecord) Sellable() decimal.Decimal {
	return s.Available.Sub(s.Reserved)
}

// Receipt datos de una entrada de stock (compra, producción, ajuste positivo).
type Receipt struct {
	Key        ArticleKey
	Quantity   decimal.Decimal
	Unit       string
	Location   string
	UnitCost   *decimal.Decimal
	ExpiryDate *time.Time
	At         time.Time
}
