package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInconsistentReservation = errors.New("la entrega excede la cantidad reservada")
	ErrArticleNotFound         = errors.New("artículo no encontrado")
	ErrOrderNotFound           = errors.New("orden no encontrada")
	ErrCounterpartyNotFound    = errors.New("tercero no encontrado")
	ErrAlreadyFullyDelivered   = errors.New("la orden ya fue entregada por completo")
	ErrOrderCancelled          = errors.New("la orden está anulada")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrDuplicateOrderNumber    = errors.New("número de orden duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
	ErrStorage                 = errors.New("error de almacenamiento")
)

// ValidationError indica qué campo de la entrada es inválido. Unwrap devuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un error de validación para el campo indicado.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// StockError conserva el artículo (y la línea de la orden, si aplica) que provocó el rechazo
// para que el llamador pueda corregir solo esa parte de la solicitud.
type StockError struct {
	Err       error
	Article   string // "tipo:id"
	Line      int    // índice de línea en la solicitud; -1 si no aplica
	LineID    string
	Requested decimal.Decimal
	Available decimal.Decimal // vendible, reservado o disponible según el tipo de error
}

// NewStockError construye un StockError sin línea asociada.
func NewStockError(err error, article string, requested, available decimal.Decimal) *StockError {
	return &StockError{Err: err, Article: article, Line: -1, Requested: requested, Available: available}
}

// WithLine devuelve una copia del error asociada a la línea indicada.
func (e *StockError) WithLine(index int, lineID string) *StockError {
	cp := *e
	cp.Line = index
	cp.LineID = lineID
	return &cp
}

func (e *StockError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%s: línea %d, artículo %s (solicitado %s, disponible %s)",
			e.Err.Error(), e.Line+1, e.Article, e.Requested.String(), e.Available.String())
	}
	return fmt.Sprintf("%s: artículo %s (solicitado %s, disponible %s)",
		e.Err.Error(), e.Article, e.Requested.String(), e.Available.String())
}

func (e *StockError) Unwrap() error { return e.Err }

// StorageError envuelve una falla del almacenamiento subyacente. Es el único error
// considerado una falla real; el texto de Cause nunca debe llegar al cliente.
type StorageError struct {
	Op    string
	Cause error
}

// WrapStorage envuelve err como StorageError. Los errores de dominio pasan sin cambios.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsBusiness(err) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Cause: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Cause)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Cause} }

// IsBusiness indica si err es un rechazo de negocio o de validación (no una falla).
func IsBusiness(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrInsufficientStock, ErrInconsistentReservation,
		ErrArticleNotFound, ErrOrderNotFound, ErrCounterpartyNotFound,
		ErrAlreadyFullyDelivered, ErrOrderCancelled, ErrDuplicate, ErrDuplicateOrderNumber,
		ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
