package entity

import "time"

// InventoryRecord stock de una literatura en una organización (clave única org+literatura).
// Se crea perezosamente en el primer movimiento y nunca se borra.
type InventoryRecord struct {
	OrganizationID   string
	LiteratureID     string
	Quantity         int // stock físico total, >= 0
	ReservedQuantity int // 0 <= reserved <= quantity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AvailableQuantity quantity - reserved.
func (r *InventoryRecord) AvailableQuantity() int {
	return r.Quantity - r.ReservedQuantity
}

// Valid verifica los invariantes del registro.
func (r *InventoryRecord) Valid() bool {
	return r.Quantity >= 0 && r.ReservedQuantity >= 0 && r.ReservedQuantity <= r.Quantity
}
