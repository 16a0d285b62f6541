package orders

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/application/dto"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

// GetOrder devuelve la orden con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	o, err := uc.reads.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, uc.fail("get_order", err)
	}
	resp := toOrderResponse(o)
	return &resp, nil
}

// VerifyOrder contrasta el estado persistido con el derivado de las líneas.
func (uc *OrderUseCase) VerifyOrder(ctx context.Context, orderID string) (*dto.OrderVerificationResponse, error) {
	o, err := uc.reads.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, uc.fail("verify_order", err)
	}
	issues := inventory.VerifyOrder(o)
	if len(issues) > 0 {
		uc.log.Warn().Str("order_id", o.ID).Strs("issues", issues).Msg("orden inconsistente")
	}
	return &dto.OrderVerificationResponse{
		OrderID:    o.ID,
		Status:     o.Status,
		Consistent: len(issues) == 0,
		Issues:     issues,
	}, nil
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                    o.ID,
		Kind:                  string(o.Kind),
		Number:                o.Number,
		CounterpartyID:        o.CounterpartyID,
		Status:                o.Status,
		DeliveryTerms:         o.DeliveryTerms,
		RequestedDeliveryDate: o.RequestedDeliveryDate,
		Total:                 o.Total(),
		CreatedAt:             o.CreatedAt,
		Lines:                 make([]dto.OrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		lr := dto.OrderLineResponse{
			ID:                l.ID,
			LineNo:            l.LineNo,
			ArticleType:       string(l.ArticleType),
			QuantityOrdered:   l.QuantityOrdered,
			QuantityDelivered: l.QuantityDelivered,
			UnitPrice:         l.UnitPrice,
			Status:            l.Status,
		}
		if l.Article != nil {
			lr.ArticleID = l.Article.ID
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}
