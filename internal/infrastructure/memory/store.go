// Package memory implementa los repositorios sobre estructuras en memoria.
// Se usa en pruebas y con DB_DRIVER=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ orders.OrdersTxRunner = (*Store)(nil)

type recordKey struct {
	organizationID string
	literatureID   string
}

// Store estado compartido. mu serializa las transacciones (equivale a bloquear
// todas las filas tocadas); el catálogo tiene su propio lock de solo lectura
// para poder consultarse desde dentro de una transacción.
type Store struct {
	mu      sync.Mutex
	orders  map[string]*entity.Order
	records map[recordKey]entity.InventoryRecord
	txns    []entity.Transaction
	seq     int64

	catalogMu     sync.RWMutex
	organizations map[string]entity.Organization
	literature    map[string]entity.Literature
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		orders:        make(map[string]*entity.Order),
		records:       make(map[recordKey]entity.InventoryRecord),
		organizations: make(map[string]entity.Organization),
		literature:    make(map[string]entity.Literature),
	}
}

// AddOrganization registra una organización (seed).
func (s *Store) AddOrganization(org entity.Organization) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.organizations[org.ID] = org
}

// AddLiterature registra un título del catálogo (seed).
func (s *Store) AddLiterature(lit entity.Literature) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.literature[lit.ID] = lit
}

// Organizations repositorio de organizaciones.
func (s *Store) Organizations() *OrganizationRepo { return &OrganizationRepo{s: s} }

// Literature repositorio del catálogo.
func (s *Store) Literature() *LiteratureRepo { return &LiteratureRepo{s: s} }

// Orders repositorio de pedidos fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Records repositorio de stock fuera de transacción.
func (s *Store) Records() *InventoryRecordRepo { return &InventoryRecordRepo{s: s} }

// Transactions repositorio del libro fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// lock toma mu salvo que el repositorio ya esté dentro de una transacción.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	orders  map[string]*entity.Order
	records map[recordKey]entity.InventoryRecord
	txns    int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		orders:  make(map[string]*entity.Order, len(s.orders)),
		records: make(map[recordKey]entity.InventoryRecord, len(s.records)),
		txns:    len(s.txns),
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for k, r := range s.records {
		snap.records[k] = r
	}
	return snap
}

// restore deshace la transacción. El libro solo crece, basta con truncarlo.
// La secuencia de numeración no retrocede (igual que una secuencia de PostgreSQL).
func (s *Store) restore(snap snapshot) {
	s.orders = snap.orders
	s.records = snap.records
	s.txns = s.txns[:snap.txns]
}

func (s *Store) inTx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Run ejecuta fn con repos de inventario atados a la transacción.
func (s *Store) Run(ctx context.Context, fn func(
	recordRepo repository.InventoryRecordRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	return s.inTx(ctx, func() error {
		return fn(&InventoryRecordRepo{s: s, inTx: true}, &TransactionRepo{s: s, inTx: true})
	})
}

// RunOrders ejecuta fn con repos de pedidos e inventario atados a la transacción.
func (s *Store) RunOrders(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	recordRepo repository.InventoryRecordRepository,
	txnRepo repository.TransactionRepository,
) error) error {
	return s.inTx(ctx, func() error {
		return fn(
			&OrderRepo{s: s, inTx: true},
			&InventoryRecordRepo{s: s, inTx: true},
			&TransactionRepo{s: s, inTx: true},
		)
	})
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	if o.FromOrganizationID != nil {
		v := *o.FromOrganizationID
		c.FromOrganizationID = &v
	}
	if o.LockedAt != nil {
		v := *o.LockedAt
		c.LockedAt = &v
	}
	if o.LockedBy != nil {
		v := *o.LockedBy
		c.LockedBy = &v
	}
	return &c
}
