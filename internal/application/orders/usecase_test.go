package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
	"github.com/jhoicas/litpedidos-api/internal/infrastructure/memory"
)

const (
	region   = "org-region"
	locality = "org-locality"
	group    = "org-group"
	litA     = "lit-a"
	litB     = "lit-b"
)

var (
	groupUser    = entity.Actor{UserID: "u-group", Role: "member", OrganizationID: group}
	localityUser = entity.Actor{UserID: "u-locality", Role: "member", OrganizationID: locality}
	regionUser   = entity.Actor{UserID: "u-region", Role: "member", OrganizationID: region}
	admin        = entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
)

type fixture struct {
	store     *memory.Store
	ledger    *inventory.LedgerUseCase
	lifecycle *orders.LifecycleUseCase
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T, recordIncoming bool) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddOrganization(entity.Organization{ID: region, Name: "Región", Type: entity.OrgTypeRegion, IsActive: true})
	store.AddOrganization(entity.Organization{ID: locality, Name: "Localidad", Type: entity.OrgTypeLocality, ParentID: strPtr(region), IsActive: true})
	store.AddOrganization(entity.Organization{ID: group, Name: "Grupo", Type: entity.OrgTypeGroup, ParentID: strPtr(locality), IsActive: true})
	store.AddLiterature(entity.Literature{ID: litA, Title: "Texto básico", Price: decimal.RequireFromString("10.00"), IsActive: true})
	store.AddLiterature(entity.Literature{ID: litB, Title: "Folleto", Price: decimal.RequireFromString("2.50"), IsActive: true})

	log := zerolog.Nop()
	ledger := inventory.NewLedgerUseCase(store, store.Records(), store.Organizations(), store.Literature(), log)
	lc := orders.NewLifecycleUseCase(store, store.Orders(), store.Organizations(), store.Literature(), ledger,
		orders.Config{NumberPrefix: "ORD", RecordIncomingOnDelivery: recordIncoming}, log)
	return &fixture{store: store, ledger: ledger, lifecycle: lc}
}

func (f *fixture) stock(t *testing.T, org, lit string, qty int) {
	t.Helper()
	_, err := f.ledger.ReceiveStock(context.Background(), admin, inventory.IncomingInput{
		OrganizationID: org, LiteratureID: lit, Quantity: qty,
	})
	require.NoError(t, err)
}

func (f *fixture) record(t *testing.T, org, lit string) *entity.InventoryRecord {
	t.Helper()
	rec, err := f.store.Records().Get(context.Background(), org, lit)
	require.NoError(t, err)
	return rec
}

func (f *fixture) groupOrder(t *testing.T, items ...orders.ItemInput) *entity.Order {
	t.Helper()
	o, err := f.lifecycle.CreateOrder(context.Background(), groupUser, orders.CreateOrderInput{
		ToOrganizationID:   locality,
		FromOrganizationID: strPtr(group),
		Items:              items,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) move(t *testing.T, actor entity.Actor, id string, to entity.OrderStatus) *entity.Order {
	t.Helper()
	o, err := f.lifecycle.TransitionOrder(context.Background(), actor, id, to)
	require.NoError(t, err)
	require.Equal(t, to, o.Status)
	return o
}

func TestCreateOrder_CongelaPreciosYNumera(t *testing.T) {
	f := newFixture(t, true)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 3}, orders.ItemInput{LiteratureID: litB, Quantity: 4})

	assert.Equal(t, entity.OrderStatusDraft, o.Status)
	assert.Regexp(t, `^ORD-\d{4}-000001$`, o.OrderNumber)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("40.00")), o.TotalAmount.String())
	assert.True(t, o.IsEditable())
	assert.Equal(t, groupUser.UserID, o.CreatedBy)

	// cambiar el precio del catálogo no afecta al pedido
	f.store.AddLiterature(entity.Literature{ID: litA, Price: decimal.RequireFromString("99.00"), IsActive: true})
	got, err := f.lifecycle.GetOrder(context.Background(), groupUser, o.ID)
	require.NoError(t, err)
	assert.True(t, got.FindItem(litA).UnitPrice.Equal(decimal.RequireFromString("10.00")))

	second := f.groupOrder(t, orders.ItemInput{LiteratureID: litB, Quantity: 1})
	assert.Regexp(t, `-000002$`, second.OrderNumber)
}

func TestCreateOrder_Validacion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor entity.Actor
		in    orders.CreateOrderInput
		want  error
	}{
		{"sin destino", groupUser, orders.CreateOrderInput{Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}}}, domain.ErrValidation},
		{"sin ítems", groupUser, orders.CreateOrderInput{ToOrganizationID: locality}, domain.ErrValidation},
		{"cantidad cero", groupUser, orders.CreateOrderInput{ToOrganizationID: locality, Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 0}}}, domain.ErrValidation},
		{"literatura repetida", groupUser, orders.CreateOrderInput{ToOrganizationID: locality, Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}, {LiteratureID: litA, Quantity: 2}}}, domain.ErrValidation},
		{"literatura desconocida", groupUser, orders.CreateOrderInput{ToOrganizationID: locality, Items: []orders.ItemInput{{LiteratureID: "nope", Quantity: 1}}}, domain.ErrNotFound},
		{"destino desconocido", groupUser, orders.CreateOrderInput{ToOrganizationID: "nope", Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}}}, domain.ErrNotFound},
		{"origen ajeno", localityUser, orders.CreateOrderInput{ToOrganizationID: region, FromOrganizationID: strPtr(group), Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}}}, domain.ErrForbidden},
		{"origen igual a destino", groupUser, orders.CreateOrderInput{ToOrganizationID: group, FromOrganizationID: strPtr(group), Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}}}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.lifecycle.CreateOrder(ctx, tc.actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.lifecycle.CreateOrder(ctx, admin, orders.CreateOrderInput{
		ToOrganizationID: locality, FromOrganizationID: strPtr(group),
		Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}},
	})
	assert.NoError(t, err, "admin puede crear en nombre de cualquier organización")
}

// Flujo completo: reserva al aprobar, salida al enviar, entrada al entregar.
func TestTransition_FlujoCompleto(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 100)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 10})

	f.move(t, groupUser, o.ID, entity.OrderStatusPending)
	f.move(t, localityUser, o.ID, entity.OrderStatusApproved)
	rec := f.record(t, locality, litA)
	assert.Equal(t, 100, rec.Quantity)
	assert.Equal(t, 10, rec.ReservedQuantity)
	assert.Equal(t, 90, rec.AvailableQuantity())

	f.move(t, localityUser, o.ID, entity.OrderStatusInAssembly)
	f.move(t, localityUser, o.ID, entity.OrderStatusShipped)
	rec = f.record(t, locality, litA)
	assert.Equal(t, 90, rec.Quantity)
	assert.Equal(t, 0, rec.ReservedQuantity)

	out, total, err := f.store.Transactions().List(context.Background(), repository.TransactionFilter{OrderID: o.ID, Types: []string{entity.TransactionTypeOutgoing}}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, 10, out[0].Quantity)
	assert.Equal(t, locality, out[0].OrganizationID)
	assert.Equal(t, group, *out[0].ToOrganizationID)
	assert.True(t, out[0].TotalAmount.Equal(decimal.RequireFromString("100")))

	f.move(t, groupUser, o.ID, entity.OrderStatusDelivered)
	assert.Equal(t, 10, f.record(t, group, litA).Quantity)

	done := f.move(t, groupUser, o.ID, entity.OrderStatusCompleted)
	assert.True(t, done.Status.Terminal())
}

func TestTransition_EntregaSinEntrada(t *testing.T) {
	f := newFixture(t, false)
	f.stock(t, locality, litA, 5)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 5})
	for _, step := range []struct {
		actor entity.Actor
		to    entity.OrderStatus
	}{
		{groupUser, entity.OrderStatusPending},
		{localityUser, entity.OrderStatusApproved},
		{localityUser, entity.OrderStatusInAssembly},
		{localityUser, entity.OrderStatusShipped},
		{groupUser, entity.OrderStatusDelivered},
	} {
		f.move(t, step.actor, o.ID, step.to)
	}
	assert.Equal(t, 0, f.record(t, group, litA).Quantity)
}

// Aprobar sin stock suficiente falla completo y no reserva nada.
func TestTransition_InventarioInsuficiente(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 100)
	f.stock(t, locality, litB, 3)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 10}, orders.ItemInput{LiteratureID: litB, Quantity: 5})
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)

	_, err := f.lifecycle.TransitionOrder(context.Background(), localityUser, o.ID, entity.OrderStatusApproved)
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)
	var ie *domain.InsufficientInventoryError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, litB, ie.LiteratureID)
	assert.Equal(t, 2, ie.Shortfall())

	assert.Equal(t, 0, f.record(t, locality, litA).ReservedQuantity, "ninguna línea queda reservada")
	assert.Equal(t, 0, f.record(t, locality, litB).ReservedQuantity)
	got, err := f.lifecycle.GetOrder(context.Background(), groupUser, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Status)
}

func TestTransition_RechazoTrasAprobarLibera(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 20)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 8})
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)
	f.move(t, localityUser, o.ID, entity.OrderStatusApproved)
	f.move(t, localityUser, o.ID, entity.OrderStatusInAssembly)
	f.move(t, localityUser, o.ID, entity.OrderStatusApproved)
	assert.Equal(t, 8, f.record(t, locality, litA).ReservedQuantity, "volver a APPROVED no reserva de nuevo")

	f.move(t, localityUser, o.ID, entity.OrderStatusRejected)
	rec := f.record(t, locality, litA)
	assert.Equal(t, 20, rec.Quantity)
	assert.Equal(t, 0, rec.ReservedQuantity)

	_, err := f.lifecycle.TransitionOrder(context.Background(), admin, o.ID, entity.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "REJECTED es terminal")
}

func TestTransition_PermisosPorRelacion(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 10)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 1})
	ctx := context.Background()

	_, err := f.lifecycle.TransitionOrder(ctx, localityUser, o.ID, entity.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "solo el solicitante envía")

	f.move(t, groupUser, o.ID, entity.OrderStatusPending)
	_, err = f.lifecycle.TransitionOrder(ctx, groupUser, o.ID, entity.OrderStatusApproved)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "el solicitante no aprueba")
	_, err = f.lifecycle.TransitionOrder(ctx, regionUser, o.ID, entity.OrderStatusApproved)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un tercero no aprueba")

	_, err = f.lifecycle.TransitionOrder(ctx, admin, o.ID, entity.OrderStatusShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "admin no salta aristas")
	f.move(t, admin, o.ID, entity.OrderStatusApproved)

	_, err = f.lifecycle.TransitionOrder(ctx, admin, o.ID, entity.OrderStatus("ARCHIVED"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.lifecycle.TransitionOrder(ctx, admin, "missing", entity.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Un reintento de la misma transición ve el estado nuevo y no reserva dos veces.
func TestTransition_ReintentoNoReservaDosVeces(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 100)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 10})
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalid   int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.lifecycle.TransitionOrder(context.Background(), localityUser, o.ID, entity.OrderStatusApproved)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, domain.ErrInvalidTransition) {
				invalid++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, invalid)
	assert.Equal(t, 10, f.record(t, locality, litA).ReservedQuantity)
}

// Dos pedidos compiten por el mismo stock: uno aprueba, el otro ve el faltante.
func TestTransition_AprobacionesConcurrentesNoSobrevenden(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 10)
	var ids []string
	for i := 0; i < 4; i++ {
		o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 4})
		f.move(t, groupUser, o.ID, entity.OrderStatusPending)
		ids = append(ids, o.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.lifecycle.TransitionOrder(context.Background(), localityUser, id, entity.OrderStatusApproved)
		}(i, id)
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	}
	assert.Equal(t, 2, approved)
	rec := f.record(t, locality, litA)
	assert.Equal(t, 8, rec.ReservedQuantity)
	assert.True(t, rec.Valid())
}

func TestCreateOrder_AbastecimientoSinOrigen(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, region, litA, 50)
	ctx := context.Background()

	o, err := f.lifecycle.CreateOrder(ctx, regionUser, orders.CreateOrderInput{
		ToOrganizationID: region,
		Items:            []orders.ItemInput{{LiteratureID: litA, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Nil(t, o.FromOrganizationID)

	_, err = f.lifecycle.TransitionOrder(ctx, localityUser, o.ID, entity.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	f.move(t, regionUser, o.ID, entity.OrderStatusPending)
	f.move(t, regionUser, o.ID, entity.OrderStatusApproved)
	f.move(t, regionUser, o.ID, entity.OrderStatusInAssembly)
	f.move(t, regionUser, o.ID, entity.OrderStatusShipped)
	f.move(t, regionUser, o.ID, entity.OrderStatusDelivered)
	assert.Equal(t, 45, f.record(t, region, litA).Quantity, "sin origen no hay INCOMING")
}

func TestListOrders_PedidoDeAbastecimientoVisibleParaSuCreador(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	o, err := f.lifecycle.CreateOrder(ctx, groupUser, orders.CreateOrderInput{
		ToOrganizationID: region,
		Items:            []orders.ItemInput{{LiteratureID: litA, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Nil(t, o.FromOrganizationID)

	_, err = f.lifecycle.GetOrder(ctx, groupUser, o.ID)
	require.NoError(t, err)
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)

	list, total, err := f.lifecycle.ListOrders(ctx, groupUser, repository.OrderFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, o.ID, list[0].ID)

	// otro miembro del mismo grupo no es el solicitante
	peer := entity.Actor{UserID: "u-group-2", Role: "member", OrganizationID: group}
	_, total, err = f.lifecycle.ListOrders(ctx, peer, repository.OrderFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	_, err = f.lifecycle.GetOrder(ctx, peer, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, total, err = f.lifecycle.ListOrders(ctx, regionUser, repository.OrderFilter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "el receptor también lo ve")
}

func TestEditItems_AgregaActualizaQuita(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 2})

	o, err := f.lifecycle.AddItem(ctx, groupUser, o.ID, orders.ItemInput{LiteratureID: litB, Quantity: 4})
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("30")), o.TotalAmount.String())

	o, err = f.lifecycle.AddItem(ctx, groupUser, o.ID, orders.ItemInput{LiteratureID: litA, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, o.FindItem(litA).Quantity)

	o, err = f.lifecycle.UpdateItemQuantity(ctx, groupUser, o.ID, litB, 2)
	require.NoError(t, err)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("35")), o.TotalAmount.String())

	_, err = f.lifecycle.UpdateItemQuantity(ctx, groupUser, o.ID, litB, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.lifecycle.UpdateItemQuantity(ctx, groupUser, o.ID, "nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	o, err = f.lifecycle.RemoveItem(ctx, groupUser, o.ID, litB)
	require.NoError(t, err)
	assert.Len(t, o.Items, 1)

	_, err = f.lifecycle.UpdateOrderItems(ctx, regionUser, o.ID, []orders.ItemInput{{LiteratureID: litA, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// en DRAFT puede quedar vacío, pero no puede enviarse así
	o, err = f.lifecycle.RemoveItem(ctx, groupUser, o.ID, litA)
	require.NoError(t, err)
	assert.Empty(t, o.Items)
	assert.True(t, o.TotalAmount.IsZero())
	_, err = f.lifecycle.TransitionOrder(ctx, groupUser, o.ID, entity.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEditItems_EstadoNoEditable(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 10)
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 1})
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)

	_, err := f.lifecycle.RemoveItem(context.Background(), groupUser, o.ID, litA)
	assert.ErrorIs(t, err, domain.ErrValidation, "fuera de DRAFT debe quedar al menos un ítem")

	f.move(t, localityUser, o.ID, entity.OrderStatusApproved)
	f.move(t, localityUser, o.ID, entity.OrderStatusInAssembly)
	_, err = f.lifecycle.AddItem(context.Background(), localityUser, o.ID, orders.ItemInput{LiteratureID: litB, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrOrderLocked)
}

// Editar un pedido aprobado ajusta la reserva en la misma transacción.
func TestEditItems_AprobadoMueveReserva(t *testing.T) {
	f := newFixture(t, true)
	f.stock(t, locality, litA, 10)
	f.stock(t, locality, litB, 10)
	ctx := context.Background()
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 4})
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)
	f.move(t, localityUser, o.ID, entity.OrderStatusApproved)

	_, err := f.lifecycle.UpdateOrderItems(ctx, localityUser, o.ID, []orders.ItemInput{
		{LiteratureID: litA, Quantity: 6},
		{LiteratureID: litB, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, f.record(t, locality, litA).ReservedQuantity)
	assert.Equal(t, 3, f.record(t, locality, litB).ReservedQuantity)

	_, err = f.lifecycle.UpdateItemQuantity(ctx, localityUser, o.ID, litB, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.Equal(t, 6, f.record(t, locality, litA).ReservedQuantity, "la liberación se deshace junto con la reserva fallida")
	assert.Equal(t, 3, f.record(t, locality, litB).ReservedQuantity)
}

func TestLockOrder_BloqueaEdicion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 1})

	_, err := f.lifecycle.LockOrder(ctx, groupUser, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo el receptor bloquea")

	locked, err := f.lifecycle.LockOrder(ctx, localityUser, o.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked())
	assert.Equal(t, localityUser.UserID, *locked.LockedBy)
	assert.False(t, locked.IsEditable())

	_, err = f.lifecycle.LockOrder(ctx, localityUser, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderLocked)

	_, err = f.lifecycle.AddItem(ctx, groupUser, o.ID, orders.ItemInput{LiteratureID: litB, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrOrderLocked)

	// el bloqueo no impide transiciones
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)

	unlocked, err := f.lifecycle.UnlockOrder(ctx, localityUser, o.ID)
	require.NoError(t, err)
	assert.True(t, unlocked.IsEditable())
	_, err = f.lifecycle.UnlockOrder(ctx, localityUser, o.ID)
	assert.NoError(t, err)

	_, err = f.lifecycle.AddItem(ctx, groupUser, o.ID, orders.ItemInput{LiteratureID: litB, Quantity: 1})
	assert.NoError(t, err)
}

func TestGetAndListOrders_Visibilidad(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 1})
	_, err := f.lifecycle.CreateOrder(ctx, regionUser, orders.CreateOrderInput{
		ToOrganizationID: region, Items: []orders.ItemInput{{LiteratureID: litA, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.lifecycle.GetOrder(ctx, regionUser, o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.lifecycle.GetOrder(ctx, localityUser, o.ID)
	assert.NoError(t, err)

	list, total, err := f.lifecycle.ListOrders(ctx, localityUser, repository.OrderFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, o.ID, list[0].ID)

	_, total, err = f.lifecycle.ListOrders(ctx, admin, repository.OrderFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = f.lifecycle.ListOrders(ctx, admin, repository.OrderFilter{Statuses: []entity.OrderStatus{entity.OrderStatusPending}}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteOrder_SoloBorrador(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	o := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 1})

	assert.ErrorIs(t, f.lifecycle.DeleteOrder(ctx, localityUser, o.ID), domain.ErrForbidden)
	f.move(t, groupUser, o.ID, entity.OrderStatusPending)
	assert.ErrorIs(t, f.lifecycle.DeleteOrder(ctx, groupUser, o.ID), domain.ErrInvalidTransition)

	draft := f.groupOrder(t, orders.ItemInput{LiteratureID: litA, Quantity: 1})
	require.NoError(t, f.lifecycle.DeleteOrder(ctx, groupUser, draft.ID))
	_, err := f.lifecycle.GetOrder(ctx, groupUser, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
