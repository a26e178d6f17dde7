package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and orders.OrdersTxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ orders.OrdersTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout <= 0 desactiva el límite.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.InventoryRecordRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewInventoryRecordRepository(q), NewTransactionRepository(q))
	})
}

// RunOrders inicia una transacción con repos de pedidos e inventario (transiciones y edición de ítems).
func (r *TxRunner) RunOrders(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	recordRepo repository.InventoryRecordRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewOrderRepository(q), NewInventoryRecordRepository(q), NewTransactionRepository(q))
	})
}
