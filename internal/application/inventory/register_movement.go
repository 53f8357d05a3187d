package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// RequestFromDTO adapta el body HTTP al Request del despachador.
// Usar desde handlers HTTP o desde otros casos de uso que tengan actorID y dto.MovementRequest.
func RequestFromDTO(actorID string, in dto.MovementRequest) Request {
	req := Request{
		ActorID: actorID,
		Ref: ItemRef{
			ID:           in.ItemID,
			Tag:          in.Tag,
			Code:         in.Code,
			Name:         in.Name,
			CategoryID:   in.CategoryID,
			CategoryName: in.CategoryName,
			Creation: CreationFields{
				Description: in.Description,
				Size:        in.Size,
				Color:       in.Color,
			},
		},
		Kind:           entity.MovementKind(strings.ToUpper(strings.TrimSpace(in.Type))),
		Quantity:       in.Quantity,
		Reason:         in.Reason,
		DeactivateItem: in.DeactivateItem,
	}
	if in.StockMinimum != nil {
		req.Ref.Creation.Minimum = *in.StockMinimum
	}
	return req
}

// DispatchFromRequest despacha un movimiento recibido por HTTP.
func (d *Dispatcher) DispatchFromRequest(ctx context.Context, actorID string, in dto.MovementRequest) (*dto.MovementResponse, error) {
	res, err := d.Dispatch(ctx, RequestFromDTO(actorID, in))
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(res), nil
}

// ToMovementResponse convierte el resultado del motor en la salida HTTP.
func ToMovementResponse(res *Result) *dto.MovementResponse {
	return &dto.MovementResponse{
		Movement: ToMovementDTO(res.Movement),
		Balance: dto.BalanceChangeDTO{
			ItemID:   res.ItemID,
			Previous: res.Previous,
			New:      res.New,
		},
		ItemCreated: res.ItemCreated,
		Activated:   res.Activated,
		Deactivated: res.Deactivated,
	}
}

// ToMovementDTO convierte un asiento del kardex.
func ToMovementDTO(m *entity.Movement) dto.MovementDTO {
	if m == nil {
		return dto.MovementDTO{}
	}
	return dto.MovementDTO{
		ID:          m.ID,
		ItemID:      m.ItemID,
		ActorID:     m.ActorID,
		Type:        string(m.Kind),
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		CreatedAt:   m.CreatedAt,
	}
}
