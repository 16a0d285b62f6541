package orders

import (
	"encoding/base32"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// NumberFunc genera el número visible de una orden.
type NumberFunc func(kind entity.OrderKind, now time.Time) string

// Prefijos de dos letras por tipo de orden.
const (
	prefixSales    = "VE"
	prefixPurchase = "CO"
)

// NewOrderNumber formato <prefijo><aaaammdd>-<6 caracteres base32>, p. ej. VE20260114-K3QZ7A.
// El sufijo aleatorio no garantiza unicidad; la restricción UNIQUE y el reintento sí.
func NewOrderNumber(kind entity.OrderKind, now time.Time) string {
	prefix := prefixSales
	if kind == entity.OrderPurchase {
		prefix = prefixPurchase
	}
	id := uuid.New()
	suffix := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(id[:4])
	return prefix + now.Format("20060102") + "-" + suffix[:6]
}
