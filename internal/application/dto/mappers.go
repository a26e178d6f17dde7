package dto

import (
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/lifecycle"
)

// NewOrderResponse mapea el agregado a su respuesta HTTP.
func NewOrderResponse(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:           it.ID,
			LiteratureID: it.LiteratureID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TotalPrice:   it.TotalPrice,
		})
	}
	next := make([]string, 0, 2)
	for _, e := range lifecycle.Next(o.Status) {
		next = append(next, e.To.String())
	}
	return OrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		FromOrganizationID: o.FromOrganizationID,
		ToOrganizationID:   o.ToOrganizationID,
		Status:             o.Status.String(),
		TotalAmount:        o.TotalAmount,
		Notes:              o.Notes,
		IsEditable:         o.IsEditable(),
		LockedAt:           o.LockedAt,
		LockedBy:           o.LockedBy,
		CreatedBy:          o.CreatedBy,
		NextStatuses:       next,
		Items:              items,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// NewInventoryRecordResponse incluye el disponible derivado (quantity - reserved).
func NewInventoryRecordResponse(r *entity.InventoryRecord) InventoryRecordResponse {
	return InventoryRecordResponse{
		OrganizationID:    r.OrganizationID,
		LiteratureID:      r.LiteratureID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.AvailableQuantity(),
		UpdatedAt:         r.UpdatedAt,
	}
}

// NewTransactionResponse mapea un movimiento del libro.
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                 t.ID,
		Type:               t.Type,
		OrganizationID:     t.OrganizationID,
		FromOrganizationID: t.FromOrganizationID,
		ToOrganizationID:   t.ToOrganizationID,
		LiteratureID:       t.LiteratureID,
		Quantity:           t.Quantity,
		UnitPrice:          t.UnitPrice,
		TotalAmount:        t.TotalAmount,
		OrderID:            t.OrderID,
		Reason:             t.Reason,
		Notes:              t.Notes,
		CreatedBy:          t.CreatedBy,
		CreatedAt:          t.CreatedAt,
	}
}
