package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// TransactionFilter filtros sobre el libro de transacciones.
type TransactionFilter struct {
	OrganizationID string
	LiteratureID   string
	OrderID        string
	Types          []string
	From           *time.Time
	To             *time.Time
}

// TypeTotals agregados por tipo de transacción.
type TypeTotals struct {
	Type        string
	Count       int
	Quantity    int
	TotalAmount decimal.Decimal
}

// MovementRow resultado crudo del reporte de movimientos por organización y literatura.
type MovementRow struct {
	OrganizationID string
	LiteratureID   string
	Incoming       int
	Outgoing       int
	Adjustments    int // con signo
	IncomingAmount decimal.Decimal
	OutgoingAmount decimal.Decimal
}

// TransactionRepository libro de movimientos: solo se agrega, nunca se modifica.
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	List(ctx context.Context, filter TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error)
	// TotalsByType agrega cantidad y monto por tipo.
	TotalsByType(ctx context.Context, filter TransactionFilter) ([]TypeTotals, error)
	// Movements agrega por organización y literatura.
	Movements(ctx context.Context, filter TransactionFilter) ([]MovementRow, error)
}
