package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso AdjustStock.
func (uc *UseCase) RegisterMovementFromRequest(ctx context.Context, actor entity.Identity, in dto.RegisterMovementRequest) (*dto.RegisterMovementResponse, error) {
	return uc.AdjustStock(ctx, AdjustStockInput{
		ProductID:   in.ProductID,
		Type:        entity.MovementType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Quantity:    in.Quantity,
		ActingUser:  actor,
		CustomerID:  in.CustomerID,
		Description: in.Description,
	})
}
