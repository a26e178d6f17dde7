package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateAdjustmentRequest body para POST /api/inventory/adjustments.
type CreateAdjustmentRequest struct {
	OrganizationID string `json:"organization_id" validate:"required"`
	LiteratureID   string `json:"literature_id" validate:"required"`
	QuantityChange int    `json:"quantity_change" validate:"ne=0"`
	Reason         string `json:"reason" validate:"required,max=255"`
	Notes          string `json:"notes,omitempty" validate:"max=2000"`
}

// ReceiveStockRequest body para POST /api/inventory/receipts.
type ReceiveStockRequest struct {
	OrganizationID     string           `json:"organization_id" validate:"required"`
	LiteratureID       string           `json:"literature_id" validate:"required"`
	Quantity           int              `json:"quantity" validate:"gt=0"`
	UnitPrice          *decimal.Decimal `json:"unit_price,omitempty"`
	FromOrganizationID *string          `json:"from_organization_id,omitempty"`
	Notes              string           `json:"notes,omitempty" validate:"max=2000"`
}

// InventoryRecordResponse stock de una literatura en una organización.
type InventoryRecordResponse struct {
	OrganizationID    string    `json:"organization_id"`
	LiteratureID      string    `json:"literature_id"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// InventoryListResponse listado paginado de stock.
type InventoryListResponse struct {
	Items []InventoryRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// TransactionResponse movimiento del libro de inventario.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	Type               string          `json:"type"`
	OrganizationID     string          `json:"organization_id"`
	FromOrganizationID *string         `json:"from_organization_id"`
	ToOrganizationID   *string         `json:"to_organization_id"`
	LiteratureID       string          `json:"literature_id"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	OrderID            *string         `json:"order_id"`
	Reason             string          `json:"reason,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedBy          string          `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TransactionListResponse listado paginado de movimientos.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
