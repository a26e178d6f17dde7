package inventory

import (
	"context"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// CreateAdjustmentFromRequest adapta el request HTTP al caso de uso CreateAdjustment.
func (uc *LedgerUseCase) CreateAdjustmentFromRequest(ctx context.Context, actor entity.Actor, in dto.CreateAdjustmentRequest) (*entity.Transaction, error) {
	return uc.CreateAdjustment(ctx, actor, AdjustmentInput{
		OrganizationID: in.OrganizationID,
		LiteratureID:   in.LiteratureID,
		QuantityChange: in.QuantityChange,
		Reason:         in.Reason,
		Notes:          in.Notes,
	})
}

// ReceiveStockFromRequest adapta el request HTTP al caso de uso ReceiveStock.
// Sin unit_price se usa el precio vigente del catálogo; unit_price 0 se respeta (donación).
func (uc *LedgerUseCase) ReceiveStockFromRequest(ctx context.Context, actor entity.Actor, in dto.ReceiveStockRequest) (*entity.Transaction, error) {
	input := IncomingInput{
		OrganizationID:     in.OrganizationID,
		LiteratureID:       in.LiteratureID,
		Quantity:           in.Quantity,
		UnitPrice:          in.UnitPrice,
		FromOrganizationID: in.FromOrganizationID,
		Notes:              in.Notes,
	}
	return uc.ReceiveStock(ctx, actor, input)
}
