package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo libro de movimientos sobre PostgreSQL (solo INSERT y lecturas).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const txnColumns = `id, type, organization_id, from_organization_id, to_organization_id, literature_id,
	quantity, unit_price, total_amount, order_id, reason, notes, created_by, created_at`

// Create agrega un movimiento al libro.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (` + txnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Type, t.OrganizationID, t.FromOrganizationID, t.ToOrganizationID, t.LiteratureID,
		t.Quantity, t.UnitPrice, t.TotalAmount, t.OrderID, t.Reason, t.Notes, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert transaction", err)
	}
	return nil
}

func whereTransactions(f repository.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.OrganizationID != "" {
		add("organization_id = $%d", f.OrganizationID)
	}
	if f.LiteratureID != "" {
		add("literature_id = $%d", f.LiteratureID)
	}
	if f.OrderID != "" {
		add("order_id = $%d", f.OrderID)
	}
	if len(f.Types) > 0 {
		add("type = ANY($%d)", f.Types)
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

// List movimientos más recientes primero.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error) {
	where, args := whereTransactions(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM transactions%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		txnColumns, where, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.OrganizationID, &t.FromOrganizationID, &t.ToOrganizationID, &t.LiteratureID,
			&t.Quantity, &t.UnitPrice, &t.TotalAmount, &t.OrderID, &t.Reason, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, total, rows.Err()
}

// TotalsByType cantidad, unidades y monto por tipo de movimiento.
func (r *TransactionRepo) TotalsByType(ctx context.Context, f repository.TransactionFilter) ([]repository.TypeTotals, error) {
	where, args := whereTransactions(f)
	query := `
		SELECT type, count(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(total_amount), 0)
		FROM transactions` + where + `
		GROUP BY type ORDER BY type`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transaction totals: %w", err)
	}
	defer rows.Close()
	out := make([]repository.TypeTotals, 0, 3)
	for rows.Next() {
		var tt repository.TypeTotals
		if err := rows.Scan(&tt.Type, &tt.Count, &tt.Quantity, &tt.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan transaction totals: %w", err)
		}
		out = append(out, tt)
	}
	return out, rows.Err()
}

// Movements entradas, salidas y ajustes agrupados por organización y literatura.
func (r *TransactionRepo) Movements(ctx context.Context, f repository.TransactionFilter) ([]repository.MovementRow, error) {
	where, args := whereTransactions(f)
	query := `
		SELECT organization_id, literature_id,
			COALESCE(SUM(quantity) FILTER (WHERE type = 'INCOMING'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'OUTGOING'), 0),
			COALESCE(SUM(quantity) FILTER (WHERE type = 'ADJUSTMENT'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'INCOMING'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE type = 'OUTGOING'), 0)
		FROM transactions` + where + `
		GROUP BY organization_id, literature_id
		ORDER BY organization_id, literature_id`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("movement report: %w", err)
	}
	defer rows.Close()
	out := make([]repository.MovementRow, 0)
	for rows.Next() {
		var m repository.MovementRow
		if err := rows.Scan(&m.OrganizationID, &m.LiteratureID, &m.Incoming, &m.Outgoing, &m.Adjustments,
			&m.IncomingAmount, &m.OutgoingAmount); err != nil {
			return nil, fmt.Errorf("scan movement row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
