package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

var (
	testKey = entity.ArticleKey{Type: entity.ArticleRawMaterial, ID: "urea-46"}
	testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func record(available, reserved int64) entity.StockRecord {
	return entity.StockRecord{Key: testKey, Available: d(available), Reserved: d(reserved), Unit: "kg"}
}

func TestReserve_IncrementaReservado(t *testing.T) {
	got, err := inventory.Reserve(record(100, 30), d(70), testNow)
	require.NoError(t, err)
	assert.True(t, got.Reserved.Equal(d(100)))
	assert.True(t, got.Available.Equal(d(100)), "reservar no mueve el disponible")
	assert.True(t, got.Sellable().IsZero())
}

func TestReserve_SinVendibleSuficiente(t *testing.T) {
	_, err := inventory.Reserve(record(100, 30), d(71), testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "raw_material:urea-46", se.Article)
	assert.True(t, se.Available.Equal(d(70)), "el error informa el vendible")
}

func TestReserve_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.Reserve(record(10, 0), decimal.Zero, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRelease_NuncaBajaDeCero(t *testing.T) {
	got, err := inventory.Release(record(50, 5), d(20), testNow)
	require.NoError(t, err)
	assert.True(t, got.Reserved.IsZero())
	assert.True(t, got.Available.Equal(d(50)))
}

func TestConsumeReserved(t *testing.T) {
	got, err := inventory.ConsumeReserved(record(50, 20), d(15), testNow)
	require.NoError(t, err)
	assert.True(t, got.Available.Equal(d(35)))
	assert.True(t, got.Reserved.Equal(d(5)))

	_, err = inventory.ConsumeReserved(record(50, 20), d(21), testNow)
	assert.ErrorIs(t, err, domain.ErrInconsistentReservation)
}

func TestConsumeDirect_RespetaLoReservado(t *testing.T) {
	got, err := inventory.ConsumeDirect(record(100, 0), d(90), testNow)
	require.NoError(t, err)
	assert.True(t, got.Available.Equal(d(10)))

	// 10 disponibles, 20 solicitados
	_, err = inventory.ConsumeDirect(got, d(20), testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// lo reservado no se puede consumir directamente
	_, err = inventory.ConsumeDirect(record(100, 95), d(10), testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReceive_CreaYAcumula(t *testing.T) {
	cost := d(2000)
	exp := testNow.AddDate(0, 6, 0)
	created, err := inventory.Receive(nil, entity.Receipt{
		Key: testKey, Quantity: d(100), Unit: "kg", Location: "bodega-1", UnitCost: &cost, ExpiryDate: &exp, At: testNow,
	})
	require.NoError(t, err)
	assert.True(t, created.Available.Equal(d(100)))
	assert.True(t, created.Reserved.IsZero())
	require.NotNil(t, created.UnitCost)
	assert.True(t, created.UnitCost.Equal(d(2000)))

	cost2 := d(3000)
	sooner := testNow.AddDate(0, 3, 0)
	got, err := inventory.Receive(&created, entity.Receipt{
		Key: testKey, Quantity: d(100), Unit: "kg", UnitCost: &cost2, ExpiryDate: &sooner, At: testNow,
	})
	require.NoError(t, err)
	assert.True(t, got.Available.Equal(d(200)))
	assert.True(t, got.UnitCost.Equal(d(2500)), "costo promedio ponderado")
	assert.Equal(t, "bodega-1", got.Location, "sin ubicación nueva se conserva la actual")
	assert.True(t, got.ExpiryDate.Equal(sooner), "se conserva el vencimiento más próximo")
}

func TestCostCalculator(t *testing.T) {
	got := inventory.CostCalculator(d(10), d(100), d(30), d(200))
	assert.True(t, got.Equal(d(175)), "got %s", got)
	assert.True(t, inventory.CostCalculator(d(0), d(0), d(0), d(10)).IsZero())
}

// Secuencias arbitrarias de operaciones nunca rompen 0 <= reservado <= disponible.
func TestInvariante_SecuenciaDeOperaciones(t *testing.T) {
	s := record(0, 0)
	ops := []struct {
		name string
		qty  int64
	}{
		{"receive", 40}, {"reserve", 25}, {"direct", 20}, {"direct", 15}, {"consume", 10},
		{"release", 100}, {"reserve", 30}, {"consume", 31}, {"receive", 5}, {"reserve", 1},
	}
	for _, op := range ops {
		var next entity.StockRecord
		var err error
		switch op.name {
		case "receive":
			next, err = inventory.Receive(&s, entity.Receipt{Key: testKey, Quantity: d(op.qty), At: testNow})
		case "reserve":
			next, err = inventory.Reserve(s, d(op.qty), testNow)
		case "direct":
			next, err = inventory.ConsumeDirect(s, d(op.qty), testNow)
		case "consume":
			next, err = inventory.ConsumeReserved(s, d(op.qty), testNow)
		case "release":
			next, err = inventory.Release(s, d(op.qty), testNow)
		}
		if err == nil {
			s = next
		}
		assert.True(t, inventory.CheckInvariant(s), "%s %d dejó %s/%s", op.name, op.qty, s.Available, s.Reserved)
	}
}

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"1", true},
		{"0.0001", true},
		{"12.5000000", true},
		{"0", false},
		{"-3", false},
		{"0.00001", false},
		{"1.00005", false},
	}
	for _, tt := range tests {
		err := inventory.ValidateQuantity("lines[2].quantity", decimal.RequireFromString(tt.in))
		if tt.ok {
			assert.NoError(t, err, tt.in)
			continue
		}
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve), tt.in)
		assert.Equal(t, "lines[2].quantity", ve.Field)
	}

	_, err := inventory.Reserve(record(10, 0), decimal.RequireFromString("0.00001"), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las reglas puras también rechazan la escala")
}
