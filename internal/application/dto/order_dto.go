package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea solicitada. El precio lo fija el catálogo.
type OrderItemRequest struct {
	LiteratureID string `json:"literature_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	ToOrganizationID   string             `json:"to_organization_id" validate:"required"`
	FromOrganizationID *string            `json:"from_organization_id,omitempty"`
	Notes              string             `json:"notes,omitempty" validate:"max=2000"`
	Items              []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SetOrderItemsRequest body para PUT /api/orders/:id/items (reemplaza todas las líneas).
type SetOrderItemsRequest struct {
	Items []OrderItemRequest `json:"items" validate:"dive"`
}

// UpdateItemQuantityRequest body para PATCH /api/orders/:id/items/:literatureId.
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// TransitionRequest body para POST /api/orders/:id/transitions.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderItemResponse línea del pedido.
type OrderItemResponse struct {
	ID           string          `json:"id"`
	LiteratureID string          `json:"literature_id"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// OrderResponse pedido con sus líneas y las transiciones disponibles.
type OrderResponse struct {
	ID                 string              `json:"id"`
	OrderNumber        string              `json:"order_number"`
	FromOrganizationID *string             `json:"from_organization_id"`
	ToOrganizationID   string              `json:"to_organization_id"`
	Status             string              `json:"status"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	Notes              string              `json:"notes,omitempty"`
	IsEditable         bool                `json:"is_editable"`
	LockedAt           *time.Time          `json:"locked_at"`
	LockedBy           *string             `json:"locked_by"`
	CreatedBy          string              `json:"created_by"`
	NextStatuses       []string            `json:"next_statuses"`
	Items              []OrderItemResponse `json:"items"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
