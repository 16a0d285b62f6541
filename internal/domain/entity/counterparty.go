package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de tercero.
const (
	CounterpartyCustomer = "customer"
	CounterpartySupplier = "supplier"
)

// Niveles de fidelización del cliente.
const (
	LoyaltyStandard = "standard"
	LoyaltySilver   = "silver"
	LoyaltyGold     = "gold"
)

// Counterparty cliente o proveedor con sus estadísticas agregadas.
type Counterparty struct {
	ID            string
	Kind          string
	Name          string
	SalesTotal    decimal.Decimal
	PurchaseTotal decimal.Decimal
	OrderCount    int
	LoyaltyTier   string
	UpdatedAt     time.Time
}
