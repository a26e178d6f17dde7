package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo persistencia del agregado Order (cabecera + ítems) sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_number, from_organization_id, to_organization_id, status, total_amount,
	notes, locked_at, locked_by, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.FromOrganizationID, &o.ToOrganizationID, &o.Status, &o.TotalAmount,
		&o.Notes, &o.LockedAt, &o.LockedBy, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta cabecera e ítems. Debe llamarse dentro de una transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.FromOrganizationID, o.ToOrganizationID, o.Status, o.TotalAmount,
		o.Notes, o.LockedAt, o.LockedBy, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert order", err)
	}
	return r.insertItems(ctx, o.ID, o.Items)
}

func (r *OrderRepo) insertItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, position, literature_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, orderID, i, it.LiteratureID, it.Quantity, it.UnitPrice, it.TotalPrice); err != nil {
			return wrapErr("insert order item", err)
		}
	}
	return nil
}

func (r *OrderRepo) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, literature_id, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY position`, o.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	o.Items = make([]entity.OrderItem, 0)
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LiteratureID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *OrderRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get order", err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID obtiene el pedido con sus ítems; nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate igual que GetByID pero bloquea la cabecera hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, true)
}

// Update guarda la cabecera.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	query := `
		UPDATE orders SET status = $2, total_amount = $3, notes = $4, locked_at = $5, locked_by = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, o.ID, o.Status, o.TotalAmount, o.Notes, o.LockedAt, o.LockedBy, o.UpdatedAt)
	if err != nil {
		return wrapErr("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update order %s: sin filas", o.ID)
	}
	return nil
}

// ReplaceItems borra y vuelve a insertar las líneas.
func (r *OrderRepo) ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return wrapErr("delete order items", err)
	}
	return r.insertItems(ctx, orderID, items)
}

// Delete elimina el pedido (los ítems caen en cascada).
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete order", err)
	}
	return nil
}

// whereOrders construye el WHERE a partir del filtro. Los argumentos son posicionales desde $1.
func whereOrders(f repository.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	var scope []string
	if f.OrganizationID != "" {
		args = append(args, f.OrganizationID)
		n := len(args)
		scope = append(scope, fmt.Sprintf("from_organization_id = $%d OR to_organization_id = $%d", n, n))
	}
	if f.CreatedBy != "" {
		args = append(args, f.CreatedBy)
		scope = append(scope, fmt.Sprintf("(from_organization_id IS NULL AND created_by = $%d)", len(args)))
	}
	if len(scope) > 0 {
		conds = append(conds, "("+strings.Join(scope, " OR ")+")")
	}
	if f.FromOrganizationID != "" {
		add("from_organization_id = $%d", f.FromOrganizationID)
	}
	if f.ToOrganizationID != "" {
		add("to_organization_id = $%d", f.ToOrganizationID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = s.String()
		}
		add("status = ANY($%d)", statuses)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List pedidos más recientes primero, con total para paginación.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter, limit, offset int) ([]*entity.Order, int, error) {
	where, args := whereOrders(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, order_number DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	list := make([]*entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	// Los ítems se cargan después de cerrar rows: una tx no admite dos consultas abiertas.
	for _, o := range list {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// CountByStatus cantidad de pedidos por estado.
func (r *OrderRepo) CountByStatus(ctx context.Context, f repository.OrderFilter) (map[entity.OrderStatus]int, error) {
	where, args := whereOrders(f)
	rows, err := r.q.Query(ctx, `SELECT status, count(*) FROM orders`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.OrderStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan order count: %w", err)
		}
		out[entity.OrderStatus(status)] = n
	}
	return out, rows.Err()
}

// NextNumber siguiente valor de order_number_seq. Las secuencias no retroceden con un rollback.
func (r *OrderRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return 0, wrapErr("next order number", err)
	}
	return n, nil
}
