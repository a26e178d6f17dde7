package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// Line cantidad de una literatura dentro de un lote (reserva, liberación, salida).
type Line struct {
	LiteratureID string
	Quantity     int
}

// NormalizeLines agrupa por literatura, valida cantidades positivas y ordena por
// LiteratureID. El orden estable es el orden de bloqueo de filas.
func NormalizeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("lines", "se requiere al menos una línea")
	}
	byID := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.LiteratureID == "" {
			return nil, domain.NewValidationError("literature_id", "requerido")
		}
		if l.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
		}
		if byID[l.LiteratureID] > math.MaxInt-l.Quantity {
			return nil, domain.NewValidationError("quantity", "excede el máximo representable")
		}
		byID[l.LiteratureID] += l.Quantity
	}
	out := make([]Line, 0, len(byID))
	for id, qty := range byID {
		out = append(out, Line{LiteratureID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LiteratureID < out[j].LiteratureID })
	return out, nil
}

func shortage(r entity.InventoryRecord, requested, available int) error {
	return &domain.InsufficientInventoryError{
		OrganizationID: r.OrganizationID,
		LiteratureID:   r.LiteratureID,
		Requested:      requested,
		Available:      available,
	}
}

// ApplyReserve aumenta la reserva si alcanza lo disponible. No modifica r.
func ApplyReserve(r entity.InventoryRecord, qty int) (entity.InventoryRecord, error) {
	if r.AvailableQuantity() < qty {
		return r, shortage(r, qty, r.AvailableQuantity())
	}
	r.ReservedQuantity += qty
	return r, nil
}

// ApplyRelease disminuye la reserva con piso en cero. floored indica que la
// reserva era menor a lo liberado (uso incorrecto que el caller debe registrar).
func ApplyRelease(r entity.InventoryRecord, qty int) (next entity.InventoryRecord, floored bool) {
	if r.ReservedQuantity < qty {
		r.ReservedQuantity = 0
		return r, true
	}
	r.ReservedQuantity -= qty
	return r, false
}

// ApplyCommit descuenta stock físico y reserva. La reserva debe existir.
func ApplyCommit(r entity.InventoryRecord, qty int) (entity.InventoryRecord, error) {
	if r.ReservedQuantity < qty {
		return r, shortage(r, qty, r.ReservedQuantity)
	}
	if r.Quantity < qty {
		return r, shortage(r, qty, r.Quantity)
	}
	r.Quantity -= qty
	r.ReservedQuantity -= qty
	return r, nil
}

// ApplyIncoming suma stock físico (no reservado).
func ApplyIncoming(r entity.InventoryRecord, qty int) (entity.InventoryRecord, error) {
	if qty <= 0 {
		return r, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if r.Quantity > math.MaxInt-qty {
		return r, domain.NewValidationError("quantity", "excede el máximo representable")
	}
	r.Quantity += qty
	return r, nil
}

// ApplyAdjustment aplica un cambio con signo a quantity. Falla si el stock queda
// negativo o por debajo de lo reservado; nunca recorta.
func ApplyAdjustment(r entity.InventoryRecord, delta int) (entity.InventoryRecord, error) {
	if delta == 0 {
		return r, domain.NewValidationError("quantity_change", "no puede ser cero")
	}
	if (delta > 0 && r.Quantity > math.MaxInt-delta) || delta == math.MinInt {
		return r, domain.NewValidationError("quantity_change", "excede el máximo representable")
	}
	next := r.Quantity + delta
	if next < 0 {
		return r, shortage(r, -delta, r.Quantity)
	}
	if next < r.ReservedQuantity {
		return r, shortage(r, -delta, r.AvailableQuantity())
	}
	r.Quantity = next
	return r, nil
}
