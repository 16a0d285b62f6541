package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// StockHandler maneja consumos, recepciones y consultas de stock (protegido).
type StockHandler struct {
	uc    *inventory.StockUseCase
	query *inventory.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, query *inventory.StockQueryUseCase) *StockHandler {
	return &StockHandler{uc: uc, query: query}
}

// Consume godoc
// @Summary      Registrar consumo directo (sin reserva)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeArticleRequest  true  "article_type, article_id, quantity"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/consumptions [post]
func (h *StockHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ConsumeArticle(c.UserContext(), CallerFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Receive godoc
// @Summary      Registrar entrada de stock (producción, compra o ajuste)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveArticleRequest  true  "article_type, article_id, quantity, unit, unit_cost opcional"
// @Success      201   {object}  dto.MovementResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *StockHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ReceiveArticle(c.UserContext(), CallerFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetLevel godoc
// @Summary      Nivel de stock de un artículo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "raw_material | culture | finished_good"
// @Param        id    path  string  true  "ID del artículo"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/{type}/{id} [get]
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	key, err := inventory.ParseStockKey(c.Params("type"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.query.GetStockLevel(c.UserContext(), key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos en orden de registro
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type   path   string  true   "Tipo de artículo"
// @Param        id     path   string  true   "ID del artículo"
// @Param        from   query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to     query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit  query  int     false  "Máximo de movimientos"
// @Success      200    {array}   dto.MovementResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/stock/{type}/{id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	key, err := inventory.ParseStockKey(c.Params("type"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	var filter repository.HistoryFilter
	if filter.From, err = parseDateParam(c.Query("from"), "from", false); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = parseDateParam(c.Query("to"), "to", true); err != nil {
		return respondError(c, err)
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return respondError(c, domain.NewValidationError("limit", "no puede ser negativo"))
	}
	out, err := h.query.GetMovementHistory(c.UserContext(), key, filter, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar disponible contra el libro de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo de artículo"
// @Param        id    path  string  true  "ID del artículo"
// @Success      200   {object}  dto.ReconciliationResponse
// @Router       /api/stock/{type}/{id}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	key, err := inventory.ParseStockKey(c.Params("type"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.query.ReconcileStock(c.UserContext(), key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Release godoc
// @Summary      Liberar reserva abandonada
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string                         true  "Tipo de artículo"
// @Param        id    path  string                         true  "ID del artículo"
// @Param        body  body  dto.ReleaseReservationRequest  true  "quantity"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/{type}/{id}/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	key, err := inventory.ParseStockKey(c.Params("type"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReleaseReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ReleaseReservation(c.UserContext(), CallerFrom(c), key, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Artículos en o bajo su umbral de alerta
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        domain  query  string  false  "agriculture | livestock | commercial. Vacío = todos."
// @Success      200     {array}   dto.LowStockDTO
// @Router       /api/stock/alerts [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.query.ListLowStock(c.UserContext(), c.Query("domain"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parseDateParam acepta YYYY-MM-DD o RFC3339. Una fecha sin hora usada como límite
// superior cubre el día completo.
func parseDateParam(raw, field string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.NewValidationError(field, "formato de fecha inválido")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
