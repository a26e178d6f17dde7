package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

var (
	_ repository.OrganizationRepository    = (*OrganizationRepo)(nil)
	_ repository.LiteratureRepository      = (*LiteratureRepo)(nil)
	_ repository.OrderRepository           = (*OrderRepo)(nil)
	_ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)
	_ repository.TransactionRepository     = (*TransactionRepo)(nil)
)

// OrganizationRepo lectura de organizaciones.
type OrganizationRepo struct{ s *Store }

// GetByID devuelve nil si no existe.
func (r *OrganizationRepo) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	r.s.catalogMu.RLock()
	defer r.s.catalogMu.RUnlock()
	org, ok := r.s.organizations[id]
	if !ok {
		return nil, nil
	}
	return &org, nil
}

// LiteratureRepo lectura del catálogo.
type LiteratureRepo struct{ s *Store }

// GetByID devuelve nil si no existe.
func (r *LiteratureRepo) GetByID(_ context.Context, id string) (*entity.Literature, error) {
	r.s.catalogMu.RLock()
	defer r.s.catalogMu.RUnlock()
	lit, ok := r.s.literature[id]
	if !ok {
		return nil, nil
	}
	return &lit, nil
}

// OrderRepo pedidos en memoria. Devuelve copias: los cambios solo se ven tras Update.
type OrderRepo struct {
	s    *Store
	inTx bool
}

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.orders[order.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	defer r.s.lock(r.inTx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

// GetForUpdate dentro de una transacción el store ya está bloqueado completo.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(_ context.Context, order *entity.Order) error {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := cloneOrder(order)
	next.Items = cur.Items
	r.s.orders[order.ID] = next
	return nil
}

func (r *OrderRepo) ReplaceItems(_ context.Context, orderID string, items []entity.OrderItem) error {
	defer r.s.lock(r.inTx)()
	cur, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Items = append([]entity.OrderItem(nil), items...)
	return nil
}

func (r *OrderRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func matchOrder(o *entity.Order, f repository.OrderFilter) bool {
	from := ""
	if o.FromOrganizationID != nil {
		from = *o.FromOrganizationID
	}
	if f.OrganizationID != "" || f.CreatedBy != "" {
		byOrg := f.OrganizationID != "" && (from == f.OrganizationID || o.ToOrganizationID == f.OrganizationID)
		byCreator := f.CreatedBy != "" && o.FromOrganizationID == nil && o.CreatedBy == f.CreatedBy
		if !byOrg && !byCreator {
			return false
		}
	}
	if f.FromOrganizationID != "" && from != f.FromOrganizationID {
		return false
	}
	if f.ToOrganizationID != "" && o.ToOrganizationID != f.ToOrganizationID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
		return false
	}
	return inRange(o.CreatedAt, f.From, f.To)
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// List ordena por fecha de creación descendente, igual que la implementación SQL.
func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter, limit, offset int) ([]*entity.Order, int, error) {
	defer r.s.lock(r.inTx)()
	out := make([]*entity.Order, 0)
	for _, o := range r.s.orders {
		if matchOrder(o, f) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].OrderNumber > out[j].OrderNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, limit, offset), len(out), nil
}

func (r *OrderRepo) CountByStatus(_ context.Context, f repository.OrderFilter) (map[entity.OrderStatus]int, error) {
	defer r.s.lock(r.inTx)()
	counts := make(map[entity.OrderStatus]int)
	for _, o := range r.s.orders {
		if matchOrder(o, f) {
			counts[o.Status]++
		}
	}
	return counts, nil
}

func (r *OrderRepo) NextNumber(_ context.Context) (int64, error) {
	defer r.s.lock(r.inTx)()
	r.s.seq++
	return r.s.seq, nil
}

// InventoryRecordRepo stock por organización y literatura.
type InventoryRecordRepo struct {
	s    *Store
	inTx bool
}

func (r *InventoryRecordRepo) Get(_ context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error) {
	defer r.s.lock(r.inTx)()
	rec, ok := r.s.records[recordKey{organizationID, literatureID}]
	if !ok {
		return &entity.InventoryRecord{OrganizationID: organizationID, LiteratureID: literatureID}, nil
	}
	return &rec, nil
}

func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, organizationID, literatureID)
}

func (r *InventoryRecordRepo) Upsert(_ context.Context, record *entity.InventoryRecord) error {
	defer r.s.lock(r.inTx)()
	r.s.records[recordKey{record.OrganizationID, record.LiteratureID}] = *record
	return nil
}

func (r *InventoryRecordRepo) ListByOrganization(_ context.Context, organizationID string, limit, offset int) ([]*entity.InventoryRecord, int, error) {
	defer r.s.lock(r.inTx)()
	out := make([]*entity.InventoryRecord, 0)
	for k, rec := range r.s.records {
		if k.organizationID == organizationID {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LiteratureID < out[j].LiteratureID })
	return page(out, limit, offset), len(out), nil
}

// TransactionRepo libro de movimientos (solo se agrega).
type TransactionRepo struct {
	s    *Store
	inTx bool
}

func (r *TransactionRepo) Create(_ context.Context, txn *entity.Transaction) error {
	defer r.s.lock(r.inTx)()
	r.s.txns = append(r.s.txns, *txn)
	return nil
}

func matchTxn(t *entity.Transaction, f repository.TransactionFilter) bool {
	if f.OrganizationID != "" && t.OrganizationID != f.OrganizationID {
		return false
	}
	if f.LiteratureID != "" && t.LiteratureID != f.LiteratureID {
		return false
	}
	if f.OrderID != "" && (t.OrderID == nil || *t.OrderID != f.OrderID) {
		return false
	}
	if len(f.Types) > 0 && !slices.ContainsFunc(f.Types, func(s string) bool { return strings.EqualFold(s, t.Type) }) {
		return false
	}
	return inRange(t.CreatedAt, f.From, f.To)
}

func (r *TransactionRepo) filtered(f repository.TransactionFilter) []entity.Transaction {
	out := make([]entity.Transaction, 0)
	for i := range r.s.txns {
		if matchTxn(&r.s.txns[i], f) {
			out = append(out, r.s.txns[i])
		}
	}
	return out
}

// List más recientes primero.
func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error) {
	defer r.s.lock(r.inTx)()
	rows := r.filtered(f)
	out := make([]*entity.Transaction, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, &rows[i])
	}
	return page(out, limit, offset), len(out), nil
}

func (r *TransactionRepo) TotalsByType(_ context.Context, f repository.TransactionFilter) ([]repository.TypeTotals, error) {
	defer r.s.lock(r.inTx)()
	byType := make(map[string]*repository.TypeTotals)
	for _, t := range r.filtered(f) {
		tt, ok := byType[t.Type]
		if !ok {
			tt = &repository.TypeTotals{Type: t.Type, TotalAmount: decimal.Zero}
			byType[t.Type] = tt
		}
		tt.Count++
		tt.Quantity += t.Quantity
		tt.TotalAmount = tt.TotalAmount.Add(t.TotalAmount)
	}
	out := make([]repository.TypeTotals, 0, len(byType))
	for _, tt := range byType {
		out = append(out, *tt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (r *TransactionRepo) Movements(_ context.Context, f repository.TransactionFilter) ([]repository.MovementRow, error) {
	defer r.s.lock(r.inTx)()
	rows := make(map[recordKey]*repository.MovementRow)
	for _, t := range r.filtered(f) {
		k := recordKey{t.OrganizationID, t.LiteratureID}
		row, ok := rows[k]
		if !ok {
			row = &repository.MovementRow{
				OrganizationID: t.OrganizationID,
				LiteratureID:   t.LiteratureID,
				IncomingAmount: decimal.Zero,
				OutgoingAmount: decimal.Zero,
			}
			rows[k] = row
		}
		switch t.Type {
		case entity.TransactionTypeIncoming:
			row.Incoming += t.Quantity
			row.IncomingAmount = row.IncomingAmount.Add(t.TotalAmount)
		case entity.TransactionTypeOutgoing:
			row.Outgoing += t.Quantity
			row.OutgoingAmount = row.OutgoingAmount.Add(t.TotalAmount)
		case entity.TransactionTypeAdjustment:
			row.Adjustments += t.Quantity
		}
	}
	out := make([]repository.MovementRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrganizationID == out[j].OrganizationID {
			return out[i].LiteratureID < out[j].LiteratureID
		}
		return out[i].OrganizationID < out[j].OrganizationID
	})
	return out, nil
}
