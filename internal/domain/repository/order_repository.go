package repository

import (
	"context"
	"time"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
)

// OrderFilter filtros para listar pedidos. OrganizationID restringe a pedidos
// donde la organización es origen o destino; CreatedBy agrega los pedidos sin
// organización origen creados por ese usuario. Ambos se combinan con OR.
type OrderFilter struct {
	OrganizationID     string
	CreatedBy          string
	FromOrganizationID string
	ToOrganizationID   string
	Statuses           []entity.OrderStatus
	From               *time.Time
	To                 *time.Time
}

// OrderRepository define el puerto de persistencia del agregado Order (cabecera + ítems).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate bloquea la cabecera del pedido (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update guarda la cabecera (estado, totales, bloqueo, notas).
	Update(ctx context.Context, order *entity.Order) error
	// ReplaceItems reemplaza todas las líneas del pedido.
	ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter OrderFilter, limit, offset int) ([]*entity.Order, int, error)
	CountByStatus(ctx context.Context, filter OrderFilter) (map[entity.OrderStatus]int, error)
	// NextNumber siguiente valor de la secuencia de numeración.
	NextNumber(ctx context.Context) (int64, error)
}
