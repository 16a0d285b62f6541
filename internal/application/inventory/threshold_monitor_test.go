package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

func TestThresholdMonitor_Check(t *testing.T) {
	semilla := &entity.Article{
		Key:        entity.ArticleKey{Type: entity.ArticleRawMaterial, ID: "semilla-arroz"},
		Name:       "Semilla de arroz",
		Domain:     entity.DomainAgriculture,
		Unit:       "bulto",
		AlertFloor: decimal.NewFromInt(10),
	}
	m := NewThresholdMonitor(nil)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		available int64
		alert     bool
	}{
		{"por encima del umbral", 11, false},
		{"exactamente en el umbral", 10, true},
		{"por debajo", 3, true},
		{"agotado", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := m.Check(semilla, &entity.StockRecord{Key: semilla.Key, Available: decimal.NewFromInt(tt.available)}, now)
			if !tt.alert {
				assert.Nil(t, ev)
				return
			}
			require.NotNil(t, ev)
			assert.Equal(t, "bulto", ev.Unit, "sin unidad en el registro usa la del maestro")
			assert.True(t, ev.Remaining.Equal(decimal.NewFromInt(tt.available)))
			assert.Equal(t, now, ev.At)
		})
	}

	assert.Nil(t, m.Check(nil, &entity.StockRecord{}, now))
	assert.Nil(t, m.Check(semilla, nil, now))
}

func TestAlertRouting_For(t *testing.T) {
	routing := NewAlertRouting(map[string][]string{
		entity.DomainLivestock:  {entity.RoleVeterinario, entity.RoleAdmin},
		entity.DomainCommercial: {},
	})

	got := routing.For(entity.DomainLivestock)
	assert.Equal(t, []string{entity.RoleVeterinario, entity.RoleAdmin}, got.Roles)
	assert.Equal(t, entity.DomainLivestock, got.Department)

	for _, d := range []string{entity.DomainCommercial, entity.DomainAgriculture, ""} {
		got := routing.For(d)
		assert.Equal(t, []string{entity.RoleAdmin}, got.Roles, "dominio %q cae al administrador", d)
		assert.Equal(t, d, got.Department)
	}
}

func TestThresholdMonitor_Notification(t *testing.T) {
	m := NewThresholdMonitor(NewAlertRouting(map[string][]string{
		entity.DomainAgriculture: {entity.RoleAgronomo},
	}))
	ev := entity.AlertEvent{
		Article:   entity.ArticleKey{Type: entity.ArticleRawMaterial, ID: "urea"},
		Domain:    entity.DomainAgriculture,
		Remaining: decimal.RequireFromString("7.5"),
		Floor:     decimal.NewFromInt(20),
		Unit:      "kg",
	}

	n := m.Notification(ev)
	assert.Equal(t, entity.NotificationLowStock, n.Kind)
	assert.Equal(t, "Stock bajo: raw_material:urea", n.Title, "sin nombre usa la clave")
	assert.Equal(t, "Quedan 7.5 kg de raw_material:urea (umbral 20)", n.Message)
	assert.Equal(t, []string{entity.RoleAgronomo}, n.Recipients.Roles)
	assert.Equal(t, "7.5", n.Data["remaining"])
}
