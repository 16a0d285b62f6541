package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/application/orders"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// HTTPMetrics lo implementa *metrics.Recorder.
type HTTPMetrics interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
	Handler() http.Handler
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC      *inventory.StockUseCase
	StockQueryUC *inventory.StockQueryUseCase
	OrderUC      *orders.OrderUseCase
	Metrics      HTTPMetrics // nil deshabilita /metrics
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(requestMetrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token; la identidad viene del servicio de autenticación.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(entity.RoleAdmin, entity.RoleVendedor, entity.RoleBodeguero, entity.RoleAgronomo, entity.RoleVeterinario)
	admin := RequireRole(entity.RoleAdmin)

	// Órdenes de venta y de compra
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/sales", RequireRole(entity.RoleAdmin, entity.RoleVendedor), orderHandler.CreateSales)
	ordersGroup.Post("/purchases", RequireRole(entity.RoleAdmin, entity.RoleVendedor, entity.RoleBodeguero), orderHandler.CreatePurchase)
	ordersGroup.Post("/:id/deliveries", RequireRole(entity.RoleAdmin, entity.RoleVendedor, entity.RoleBodeguero), orderHandler.Deliver)
	ordersGroup.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleVendedor), orderHandler.Cancel)
	ordersGroup.Get("/:id/verify", admin, orderHandler.Verify)
	ordersGroup.Get("/:id", anyRole, orderHandler.GetByID)

	// Stock: consumos, recepciones y consultas
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC, deps.StockQueryUC)
	operators := RequireRole(entity.RoleAdmin, entity.RoleBodeguero, entity.RoleAgronomo, entity.RoleVeterinario)
	stock.Post("/consumptions", operators, stockHandler.Consume)
	stock.Post("/receipts", operators, stockHandler.Receive)
	stock.Get("/alerts", anyRole, stockHandler.LowStock)
	stock.Get("/:type/:id/movements", anyRole, stockHandler.Movements)
	stock.Get("/:type/:id/reconcile", admin, stockHandler.Reconcile)
	stock.Post("/:type/:id/release", admin, stockHandler.Release)
	stock.Get("/:type/:id", anyRole, stockHandler.GetLevel)
}

// requestMetrics registra cada petición con la ruta registrada (no la URL) para acotar
// la cardinalidad de las etiquetas.
func requestMetrics(m HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
