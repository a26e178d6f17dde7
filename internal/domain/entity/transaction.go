package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de inventario.
const (
	TransactionTypeIncoming   = "INCOMING"
	TransactionTypeOutgoing   = "OUTGOING"
	TransactionTypeAdjustment = "ADJUSTMENT"
)

// Transaction registro inmutable de un movimiento de stock.
// Quantity es positiva en INCOMING/OUTGOING y con signo en ADJUSTMENT.
type Transaction struct {
	ID                 string
	Type               string
	OrganizationID     string  // organización cuyo stock cambió
	FromOrganizationID *string // contraparte origen
	ToOrganizationID   *string // contraparte destino
	LiteratureID       string
	Quantity           int
	UnitPrice          decimal.Decimal
	TotalAmount        decimal.Decimal
	OrderID            *string
	Reason             string // solo ADJUSTMENT
	Notes              string
	CreatedBy          string
	CreatedAt          time.Time
}
