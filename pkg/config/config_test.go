package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/pkg/config"
)

func TestParseAlertRoutes(t *testing.T) {
	routes, err := config.ParseAlertRoutes(" agriculture=agronomo, admin ; livestock=veterinario;")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"agriculture": {"agronomo", "admin"},
		"livestock":   {"veterinario"},
	}, routes)
}

func TestParseAlertRoutes_Invalidas(t *testing.T) {
	for _, s := range []string{"agriculture", "=admin", "livestock=,"} {
		_, err := config.ParseAlertRoutes(s)
		assert.Error(t, err, "entrada %q", s)
	}
}

func TestLoad_ValoresPorDefectoYEntorno(t *testing.T) {
	t.Setenv("APP_STORE", "memory")
	t.Setenv("ALERT_TIMEOUT_MS", "1500")
	t.Setenv("ALERT_ROUTES", "commercial=vendedor")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.Store)
	assert.Equal(t, 1500*time.Millisecond, cfg.Alerts.Timeout())
	assert.Equal(t, []string{"vendedor"}, cfg.Alerts.Routes["commercial"])
	assert.Equal(t, 200, cfg.Engine.LedgerPageSize)
	assert.Equal(t, 5, cfg.Engine.OrderNumberRetries)
}

func TestLoad_StoreInvalido(t *testing.T) {
	t.Setenv("APP_STORE", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
