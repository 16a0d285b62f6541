package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/orders"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/memory"
	"github.com/jhoicas/stock-engine/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/stock-engine/internal/interfaces/http"
)

var novillos = entity.ArticleKey{Type: entity.ArticleFinishedGood, ID: "novillo-cebado"}

// buildAPI arma la API completa sobre un store en memoria con 12 novillos en existencia.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	st := memory.New()
	st.PutArticle(entity.Article{Key: novillos, Name: "Novillo cebado", Domain: entity.DomainLivestock, Unit: "cabeza", AlertFloor: decimal.NewFromInt(3)})
	st.PutCounterparty(entity.Counterparty{ID: "cli-frigo", Kind: entity.CounterpartyCustomer, Name: "Frigorífico del Norte"})

	monitor := inventory.NewThresholdMonitor(nil)
	stockUC := inventory.NewStockUseCase(st, monitor, nil, nil, nil)
	_, err := stockUC.ReceiveArticle(context.Background(), entity.Caller{UserID: "seed"}, dto.ReceiveArticleRequest{
		ArticleType: string(novillos.Type), ArticleID: novillos.ID, Quantity: decimal.NewFromInt(12), Unit: "cabeza",
	})
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:      stockUC,
		StockQueryUC: inventory.NewStockQueryUseCase(st.Repositories(), nil, nil),
		OrderUC:      orders.NewOrderUseCase(st, st.Repositories(), monitor, nil, nil, nil, orders.Options{}),
		Metrics:      metrics.New(),
		JWTSecret:    testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestAPI_ConsumoSinStockDevuelveConflictoConDetalle(t *testing.T) {
	app := buildAPI(t)

	resp, body := call(t, app, http.MethodPost, "/api/stock/consumptions", "veterinario", dto.ConsumeArticleRequest{
		ArticleType: string(novillos.Type), ArticleID: novillos.ID, Quantity: decimal.NewFromInt(13),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Equal(t, novillos.String(), e.Details["article"])
	assert.Equal(t, "12", e.Details["available"])
}

func TestAPI_FlujoDeVentaCompleto(t *testing.T) {
	app := buildAPI(t)

	resp, body := call(t, app, http.MethodPost, "/api/orders/sales", "vendedor", dto.CreateOrderRequest{
		CounterpartyID: "cli-frigo",
		Lines: []dto.OrderLineRequest{{
			ArticleType: string(novillos.Type), ArticleID: novillos.ID,
			Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(4_200_000),
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created dto.CreateOrderResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, entity.OrderStatusCreated, created.Status)

	resp, body = call(t, app, http.MethodGet, "/api/orders/"+created.ID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	require.Len(t, order.Lines, 1)

	resp, body = call(t, app, http.MethodGet, "/api/stock/finished_good/novillo-cebado", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var level dto.StockLevelResponse
	require.NoError(t, json.Unmarshal(body, &level))
	assert.True(t, level.Reserved.Equal(decimal.NewFromInt(10)))
	assert.True(t, level.Sellable.Equal(decimal.NewFromInt(2)))

	resp, body = call(t, app, http.MethodPost, "/api/orders/"+created.ID+"/deliveries", "bodeguero", dto.DeliverOrderRequest{
		Lines: []dto.DeliveryLineRequest{{LineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(11)}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INCONSISTENT_RESERVATION")
	assert.Contains(t, string(body), order.Lines[0].ID)

	resp, body = call(t, app, http.MethodPost, "/api/orders/"+created.ID+"/deliveries", "bodeguero", dto.DeliverOrderRequest{
		Lines: []dto.DeliveryLineRequest{{LineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(10)}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, entity.OrderStatusFullyDelivered, order.Status)

	resp, body = call(t, app, http.MethodGet, "/api/stock/finished_good/novillo-cebado/movements", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs []dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &movs))
	require.Len(t, movs, 2)
	assert.Equal(t, string(entity.ReasonSaleDelivery), movs[1].Reason)
	assert.Equal(t, order.Number, movs[1].Reference)

	resp, body = call(t, app, http.MethodGet, "/api/stock/alerts?domain=livestock", "veterinario", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var low []dto.LowStockDTO
	require.NoError(t, json.Unmarshal(body, &low))
	require.Len(t, low, 1, "quedan 2 con umbral 3")

	resp, body = call(t, app, http.MethodGet, "/api/stock/finished_good/novillo-cebado/reconcile", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.True(t, rec.Balanced)

	resp, _ = call(t, app, http.MethodPost, "/api/orders/"+created.ID+"/cancel", "vendedor", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "una orden entregada no se anula")
}

func TestAPI_Autorizacion(t *testing.T) {
	app := buildAPI(t)

	resp, body := call(t, app, http.MethodPost, "/api/orders/sales", "agronomo", dto.CreateOrderRequest{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "FORBIDDEN")

	resp, _ = call(t, app, http.MethodPost, "/api/stock/finished_good/novillo-cebado/release", "vendedor", dto.ReleaseReservationRequest{Quantity: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/stock/finished_good/novillo-cebado", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_ErroresDeEntrada(t *testing.T) {
	app := buildAPI(t)

	resp, body := call(t, app, http.MethodGet, "/api/stock/service/flete", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "article_type")

	resp, _ = call(t, app, http.MethodGet, "/api/stock/finished_good/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/orders/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/stock/finished_good/novillo-cebado/movements?from=ayer", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/stock/receipts", bytes.NewBufferString("{no json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestAPI_Metricas(t *testing.T) {
	app := buildAPI(t)
	call(t, app, http.MethodGet, "/api/stock/finished_good/novillo-cebado", "admin", nil)

	resp, body := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/api/stock/:type/:id",status="200"} 1`)
}
