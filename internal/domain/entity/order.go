package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del pedido.
type OrderStatus string

// Estados del ciclo de vida. DRAFT es inicial; COMPLETED y REJECTED son terminales.
const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusApproved   OrderStatus = "APPROVED"
	OrderStatusInAssembly OrderStatus = "IN_ASSEMBLY"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusRejected   OrderStatus = "REJECTED"
)

// AllOrderStatuses en orden del flujo.
var AllOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusInAssembly,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusRejected,
}

func (s OrderStatus) String() string { return string(s) }

// Valid indica si el estado es conocido.
func (s OrderStatus) Valid() bool {
	for _, st := range AllOrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Terminal COMPLETED o REJECTED.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRejected
}

// editableStatus estados en los que se pueden modificar los ítems.
func (s OrderStatus) editableStatus() bool {
	return s == OrderStatusDraft || s == OrderStatusPending || s == OrderStatusApproved
}

// Order cabecera del pedido (raíz del agregado) con sus ítems.
type Order struct {
	ID                 string
	OrderNumber        string
	FromOrganizationID *string // nil para pedidos de abastecimiento de nivel superior
	ToOrganizationID   string  // organización que surte
	Status             OrderStatus
	TotalAmount        decimal.Decimal
	Notes              string
	LockedAt           *time.Time
	LockedBy           *string
	CreatedBy          string
	Items              []OrderItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OrderItem línea del pedido. UnitPrice se captura al crear la línea y no se relee.
type OrderItem struct {
	ID           string
	OrderID      string
	LiteratureID string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
}

// IsLocked hay un bloqueo explícito.
func (o *Order) IsLocked() bool {
	return o.LockedAt != nil
}

// IsEditable se calcula en lectura: sin bloqueo explícito y en DRAFT, PENDING o APPROVED.
func (o *Order) IsEditable() bool {
	return !o.IsLocked() && o.Status.editableStatus()
}

// RecalculateTotals recalcula TotalPrice de cada línea y TotalAmount del pedido.
func (o *Order) RecalculateTotals() {
	total := decimal.Zero
	for i := range o.Items {
		it := &o.Items[i]
		it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(it.TotalPrice)
	}
	o.TotalAmount = total
}

// FindItem devuelve la línea de una literatura o nil.
func (o *Order) FindItem(literatureID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].LiteratureID == literatureID {
			return &o.Items[i]
		}
	}
	return nil
}
