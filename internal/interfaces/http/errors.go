package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain"
)

// respondError traduce un error de dominio a la respuesta HTTP. Las fallas de
// almacenamiento responden con un mensaje genérico: la causa queda solo en el log.
func respondError(c *fiber.Ctx, err error) error {
	status, body := errorBody(err)
	return c.Status(status).JSON(body)
}

func errorBody(err error) (int, dto.ErrorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: ve.Error(),
			Details: map[string]any{"field": ve.Field, "reason": ve.Reason},
		}
	}
	var se *domain.StockError
	if errors.As(err, &se) {
		return fiber.StatusConflict, dto.ErrorResponse{
			Code:    stockCode(se.Err),
			Message: se.Error(),
			Details: stockDetails(se),
		}
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrInconsistentReservation):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INCONSISTENT_RESERVATION", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyFullyDelivered):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_FULLY_DELIVERED", Message: "la orden ya fue entregada por completo"}
	case errors.Is(err, domain.ErrOrderCancelled):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ORDER_CANCELLED", Message: "la orden está anulada"}
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrDuplicateOrderNumber):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"}
	case errors.Is(err, domain.ErrArticleNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"}
	case errors.Is(err, domain.ErrOrderNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"}
	case errors.Is(err, domain.ErrCounterpartyNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "tercero no encontrado"}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno, intente más tarde"}
}

func stockCode(err error) string {
	if errors.Is(err, domain.ErrInconsistentReservation) {
		return "INCONSISTENT_RESERVATION"
	}
	return "INSUFFICIENT_STOCK"
}

func stockDetails(se *domain.StockError) map[string]any {
	d := map[string]any{
		"article":   se.Article,
		"requested": se.Requested.String(),
		"available": se.Available.String(),
	}
	if se.Line >= 0 {
		d["line"] = se.Line
	}
	if se.LineID != "" {
		d["line_id"] = se.LineID
	}
	return d
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
