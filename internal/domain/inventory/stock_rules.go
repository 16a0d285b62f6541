package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// Reglas aritméticas del registro de stock. Son puras: reciben el estado actual y devuelven
// el nuevo o un error; ninguna deja Reserved > Available ni cantidades negativas.
// Los adaptadores de almacenamiento las aplican bajo bloqueo o las replican como UPDATE condicional.

// QuantityScale decimales que admite una cantidad; las columnas de cantidad son NUMERIC(18,4).
const QuantityScale = 4

// ValidateQuantity exige qty > 0 con a lo sumo QuantityScale decimales significativos.
// Una cantidad más fina se redondearía distinto en el stock y en el libro.
func ValidateQuantity(field string, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.NewValidationError(field, "debe ser mayor que cero")
	}
	if !qty.Truncate(QuantityScale).Equal(qty) {
		return domain.NewValidationError(field, "máximo 4 decimales")
	}
	return nil
}

func requirePositive(qty decimal.Decimal) error {
	return ValidateQuantity("quantity", qty)
}

// Reserve incrementa Reserved si Sellable alcanza; si no, ErrInsufficientStock.
func Reserve(s entity.StockRecord, qty decimal.Decimal, now time.Time) (entity.StockRecord, error) {
	if err := requirePositive(qty); err != nil {
		return s, err
	}
	if s.Sellable().LessThan(qty) {
		return s, domain.NewStockError(domain.ErrInsufficientStock, s.Key.String(), qty, s.Sellable())
	}
	s.Reserved = s.Reserved.Add(qty)
	s.UpdatedAt = now
	return s, nil
}

// Release decrementa Reserved en min(qty, Reserved).
func Release(s entity.StockRecord, qty decimal.Decimal, now time.Time) (entity.StockRecord, error) {
	if err := requirePositive(qty); err != nil {
		return s, err
	}
	s.Reserved = s.Reserved.Sub(decimal.Min(qty, s.Reserved))
	s.UpdatedAt = now
	return s, nil
}

// ConsumeReserved descuenta Reserved y Available (entrega contra reserva).
// Falla con ErrInconsistentReservation si qty > Reserved.
func ConsumeReserved(s entity.StockRecord, qty decimal.Decimal, now time.Time) (entity.StockRecord, error) {
	if err := requirePositive(qty); err != nil {
		return s, err
	}
	if s.Reserved.LessThan(qty) {
		return s, domain.NewStockError(domain.ErrInconsistentReservation, s.Key.String(), qty, s.Reserved)
	}
	s.Reserved = s.Reserved.Sub(qty)
	s.Available = s.Available.Sub(qty)
	s.UpdatedAt = now
	return s, nil
}

// ConsumeDirect descuenta Available sin reserva previa. Solo consume la parte no reservada:
// tocar lo reservado rompería la promesa hecha a las órdenes de venta.
func ConsumeDirect(s entity.StockRecord, qty decimal.Decimal, now time.Time) (entity.StockRecord, error) {
	if err := requirePositive(qty); err != nil {
		return s, err
	}
	if s.Sellable().LessThan(qty) {
		return s, domain.NewStockError(domain.ErrInsufficientStock, s.Key.String(), qty, s.Sellable())
	}
	s.Available = s.Available.Sub(qty)
	s.UpdatedAt = now
	return s, nil
}

// Receive suma la entrada. Si current es nil crea el registro. Mantiene el costo promedio
// ponderado y la fecha de vencimiento más próxima.
func Receive(current *entity.StockRecord, in entity.Receipt) (entity.StockRecord, error) {
	if err := requirePositive(in.Quantity); err != nil {
		return entity.StockRecord{}, err
	}
	if current == nil {
		rec := entity.StockRecord{
			Key:        in.Key,
			Available:  in.Quantity,
			Reserved:   decimal.Zero,
			Unit:       in.Unit,
			Location:   in.Location,
			ExpiryDate: in.ExpiryDate,
			UpdatedAt:  in.At,
		}
		if in.UnitCost != nil {
			c := *in.UnitCost
			rec.UnitCost = &c
		}
		return rec, nil
	}
	s := *current
	s.UnitCost = blendCost(s.Available, s.UnitCost, in.UnitCost, in.Quantity)
	s.Available = s.Available.Add(in.Quantity)
	if in.Location != "" {
		s.Location = in.Location
	}
	if in.ExpiryDate != nil && (s.ExpiryDate == nil || in.ExpiryDate.Before(*s.ExpiryDate)) {
		e := *in.ExpiryDate
		s.ExpiryDate = &e
	}
	s.UpdatedAt = in.At
	return s, nil
}

// CheckInvariant verifica 0 <= Reserved <= Available.
func CheckInvariant(s entity.StockRecord) bool {
	return !s.Reserved.IsNegative() && s.Reserved.LessThanOrEqual(s.Available)
}
