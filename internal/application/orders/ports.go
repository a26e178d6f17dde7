package orders

import (
	"context"

	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/litpedidos-api/internal/domain/inventory"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// OrdersTxRunner ejecuta una función dentro de una transacción que incluye el pedido y el libro de inventario.
type OrdersTxRunner interface {
	RunOrders(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		recordRepo repository.InventoryRecordRepository,
		txnRepo repository.TransactionRepository,
	) error) error
}

// InventoryLedger interfaz para integrar el ciclo de vida del pedido con el inventario.
// Todas las operaciones usan los repositorios del caller (misma transacción); si retornan
// error (ej: ErrInsufficientInventory), el caller debe hacer rollback.
type InventoryLedger interface {
	ReserveInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, lines []domaininv.Line) error
	ReleaseInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, lines []domaininv.Line) error
	ReplaceReservationInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, released, reserved []domaininv.Line) error
	CommitInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository, in inventory.CommitInput) error
	ReceiveIncomingInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository, in inventory.IncomingInput) (*entity.Transaction, error)
}

var _ InventoryLedger = (*inventory.LedgerUseCase)(nil)
