package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Literature ítem del catálogo. El precio se congela en OrderItem al crear el pedido.
type Literature struct {
	ID          string
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal // no negativo
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
