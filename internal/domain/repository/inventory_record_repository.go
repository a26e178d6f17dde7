package repository

import (
	"context"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// InventoryRecordRepository define el puerto de stock por organización+literatura.
// Las escrituras solo las hace el libro de inventario, dentro de una transacción.
type InventoryRecordRepository interface {
	// Get devuelve el registro o uno en cero si no existe.
	Get(ctx context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila (creándola en cero si no existe) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, record *entity.InventoryRecord) error
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.InventoryRecord, int, error)
}
