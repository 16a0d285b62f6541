package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumeArticleRequest body para POST /api/stock/consumptions
// (aplicación de insumos, siembra, ración de alimento).
type ConsumeArticleRequest struct {
	ArticleType string          `json:"article_type"`
	ArticleID   string          `json:"article_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"` // consumption (por defecto) o adjustment
	Reference   string          `json:"reference,omitempty"`
}

// ReceiveArticleRequest body para POST /api/stock/receipts.
type ReceiveArticleRequest struct {
	ArticleType string           `json:"article_type"`
	ArticleID   string           `json:"article_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	Unit        string           `json:"unit"`
	Location    string           `json:"location,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
	Reason      string           `json:"reason,omitempty"` // production (por defecto), purchase_receipt, adjustment
	Reference   string           `json:"reference,omitempty"`
}

// ReleaseReservationRequest body para POST /api/stock/:type/:id/release.
type ReleaseReservationRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// MovementResult respuesta de una operación que genera un movimiento.
type MovementResult struct {
	MovementID string             `json:"movement_id"`
	Stock      StockLevelResponse `json:"stock"`
}

// StockLevelResponse nivel de stock de un artículo.
type StockLevelResponse struct {
	ArticleType string           `json:"article_type"`
	ArticleID   string           `json:"article_id"`
	Available   decimal.Decimal  `json:"available"`
	Reserved    decimal.Decimal  `json:"reserved"`
	Sellable    decimal.Decimal  `json:"sellable"`
	Unit        string           `json:"unit,omitempty"`
	Location    string           `json:"location,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	ExpiryDate  *time.Time       `json:"expiry_date,omitempty"`
}

// MovementResponse un movimiento del libro.
type MovementResponse struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	Direction  string          `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	Reason     string          `json:"reason"`
	Reference  string          `json:"reference,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ReconciliationResponse resultado de conciliar el disponible contra el libro.
type ReconciliationResponse struct {
	ArticleType string          `json:"article_type"`
	ArticleID   string          `json:"article_id"`
	Available   decimal.Decimal `json:"available"`
	Inbound     decimal.Decimal `json:"inbound"`
	Outbound    decimal.Decimal `json:"outbound"`
	Balanced    bool            `json:"balanced"` // Available == Inbound - Outbound
}

// LowStockDTO artículo en o bajo su umbral de alerta.
type LowStockDTO struct {
	ArticleType string          `json:"article_type"`
	ArticleID   string          `json:"article_id"`
	Name        string          `json:"name"`
	Domain      string          `json:"domain"`
	Available   decimal.Decimal `json:"available"`
	Reserved    decimal.Decimal `json:"reserved"`
	AlertFloor  decimal.Decimal `json:"alert_floor"`
	Unit        string          `json:"unit"`
}
