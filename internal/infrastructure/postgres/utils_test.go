package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}
	wrapped := fmt.Errorf("insertar orden: %w", dup)

	assert.True(t, isUniqueViolation(wrapped, "orders_order_number_key"))
	assert.True(t, isUniqueViolation(wrapped, ""), "constraint vacío acepta cualquiera")
	assert.False(t, isUniqueViolation(wrapped, "orders_pkey"))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(errors.New("conexión cerrada"), ""))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, isCheckViolation(fmt.Errorf("reservar: %w", &pgconn.PgError{Code: "23514"})))
	assert.False(t, isCheckViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isCheckViolation(errors.New("x")))
}
