package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/litpedidos-api/internal/domain/inventory"
	"github.com/jhoicas/litpedidos-api/internal/domain/lifecycle"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// Config parámetros del ciclo de vida.
type Config struct {
	NumberPrefix string
	// RecordIncomingOnDelivery registra un INCOMING en el solicitante al pasar a DELIVERED.
	RecordIncomingOnDelivery bool
}

// LifecycleUseCase dueño del agregado Order: creación, transiciones, edición de ítems y bloqueo.
// Toda operación que escribe corre en una transacción que bloquea la fila del pedido
// y, si mueve stock, las filas de inventario afectadas.
type LifecycleUseCase struct {
	txRunner  OrdersTxRunner
	orderRepo repository.OrderRepository
	orgRepo   repository.OrganizationRepository
	litRepo   repository.LiteratureRepository
	ledger    InventoryLedger
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	txRunner OrdersTxRunner,
	orderRepo repository.OrderRepository,
	orgRepo repository.OrganizationRepository,
	litRepo repository.LiteratureRepository,
	ledger InventoryLedger,
	cfg Config,
	log zerolog.Logger,
) *LifecycleUseCase {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "ORD"
	}
	return &LifecycleUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		orgRepo:   orgRepo,
		litRepo:   litRepo,
		ledger:    ledger,
		cfg:       cfg,
		log:       log.With().Str("component", "order_lifecycle").Logger(),
		now:       time.Now,
	}
}

// ItemInput línea solicitada (el precio nunca viene del cliente).
type ItemInput struct {
	LiteratureID string
	Quantity     int
}

// CreateOrderInput entrada para crear un pedido.
type CreateOrderInput struct {
	ToOrganizationID   string
	FromOrganizationID *string
	Notes              string
	Items              []ItemInput
}

func validateItems(items []ItemInput) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.LiteratureID == "" {
			return domain.NewValidationError("items.literature_id", "requerido")
		}
		if it.Quantity <= 0 {
			return domain.NewValidationError("items.quantity", "debe ser mayor que cero")
		}
		if _, dup := seen[it.LiteratureID]; dup {
			return domain.NewValidationError("items", "literatura repetida: "+it.LiteratureID)
		}
		seen[it.LiteratureID] = struct{}{}
	}
	return nil
}

func (uc *LifecycleUseCase) requireOrganization(ctx context.Context, id string) error {
	org, err := uc.orgRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if org == nil {
		return domain.ErrNotFound
	}
	if !org.IsActive {
		return domain.NewValidationError("organization_id", "organización inactiva: "+id)
	}
	return nil
}

// buildItems arma las líneas nuevas. Las literaturas que ya estaban en el pedido
// conservan su precio congelado; las nuevas capturan el precio actual del catálogo.
func (uc *LifecycleUseCase) buildItems(ctx context.Context, orderID string, current []entity.OrderItem, in []ItemInput) ([]entity.OrderItem, error) {
	frozen := make(map[string]entity.OrderItem, len(current))
	for _, it := range current {
		frozen[it.LiteratureID] = it
	}
	items := make([]entity.OrderItem, 0, len(in))
	for _, it := range in {
		if prev, ok := frozen[it.LiteratureID]; ok {
			prev.Quantity = it.Quantity
			items = append(items, prev)
			continue
		}
		lit, err := uc.litRepo.GetByID(ctx, it.LiteratureID)
		if err != nil {
			return nil, err
		}
		if lit == nil {
			return nil, domain.ErrNotFound
		}
		if !lit.IsActive {
			return nil, domain.NewValidationError("items.literature_id", "literatura inactiva: "+lit.ID)
		}
		items = append(items, entity.OrderItem{
			ID:           uuid.New().String(),
			OrderID:      orderID,
			LiteratureID: lit.ID,
			Quantity:     it.Quantity,
			UnitPrice:    lit.Price,
		})
	}
	return items, nil
}

// CreateOrder crea un pedido en DRAFT con precios congelados.
func (uc *LifecycleUseCase) CreateOrder(ctx context.Context, actor entity.Actor, in CreateOrderInput) (*entity.Order, error) {
	if in.ToOrganizationID == "" {
		return nil, domain.NewValidationError("to_organization_id", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.FromOrganizationID != nil && *in.FromOrganizationID == "" {
		in.FromOrganizationID = nil
	}
	if err := uc.requireOrganization(ctx, in.ToOrganizationID); err != nil {
		return nil, err
	}
	if in.FromOrganizationID != nil {
		from := *in.FromOrganizationID
		if from == in.ToOrganizationID {
			return nil, domain.NewValidationError("from_organization_id", "debe ser distinta de la organización destino")
		}
		if err := uc.requireOrganization(ctx, from); err != nil {
			return nil, err
		}
		if !actor.BelongsTo(from) {
			return nil, domain.ErrForbidden
		}
	}

	now := uc.now()
	order := &entity.Order{
		ID:                 uuid.New().String(),
		FromOrganizationID: in.FromOrganizationID,
		ToOrganizationID:   in.ToOrganizationID,
		Status:             entity.OrderStatusDraft,
		Notes:              strings.TrimSpace(in.Notes),
		CreatedBy:          actor.UserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	items, err := uc.buildItems(ctx, order.ID, nil, in.Items)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.RecalculateTotals()

	err = uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.InventoryRecordRepository,
		_ repository.TransactionRepository,
	) error {
		seq, err := orderRepo.NextNumber(ctx)
		if err != nil {
			return err
		}
		order.OrderNumber = fmt.Sprintf("%s-%d-%06d", uc.cfg.NumberPrefix, now.Year(), seq)
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("to_organization_id", order.ToOrganizationID).
		Str("user_id", actor.UserID).
		Msg("pedido creado")
	return order, nil
}

func canView(actor entity.Actor, order *entity.Order) bool {
	return actor.IsAdmin() || lifecycle.RelationOf(actor, order) != 0
}

// GetOrder obtiene un pedido visible para el actor.
func (uc *LifecycleUseCase) GetOrder(ctx context.Context, actor entity.Actor, id string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !canView(actor, order) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// ListOrders lista pedidos con la misma regla de visibilidad que GetOrder: fuera de
// admin, los de la organización del actor y los de abastecimiento que él creó.
func (uc *LifecycleUseCase) ListOrders(ctx context.Context, actor entity.Actor, filter repository.OrderFilter, limit, offset int) ([]*entity.Order, int, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, 0, domain.NewValidationError("status", "estado desconocido: "+st.String())
		}
	}
	if !actor.IsAdmin() {
		if actor.OrganizationID == "" {
			return nil, 0, domain.ErrForbidden
		}
		filter.OrganizationID = actor.OrganizationID
		filter.CreatedBy = actor.UserID
	}
	return uc.orderRepo.List(ctx, filter, limit, offset)
}

func stockLines(items []entity.OrderItem) []domaininv.Line {
	lines := make([]domaininv.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, domaininv.Line{LiteratureID: it.LiteratureID, Quantity: it.Quantity})
	}
	return lines
}

// loadForUpdate bloquea el pedido dentro de la transacción.
func loadForUpdate(ctx context.Context, orderRepo repository.OrderRepository, id string) (*entity.Order, error) {
	order, err := orderRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// TransitionOrder aplica exactamente una arista de la tabla de estados.
// El estado se verifica con la fila bloqueada: un reintento o una llamada concurrente
// ve el estado ya aplicado y falla con ErrInvalidTransition en lugar de reservar dos veces.
func (uc *LifecycleUseCase) TransitionOrder(ctx context.Context, actor entity.Actor, id string, target entity.OrderStatus) (*entity.Order, error) {
	if !target.Valid() {
		return nil, domain.NewValidationError("status", "estado desconocido: "+target.String())
	}
	var (
		order *entity.Order
		from  entity.OrderStatus
	)
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		recordRepo repository.InventoryRecordRepository,
		txnRepo repository.TransactionRepository,
	) error {
		var err error
		order, err = loadForUpdate(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		from = order.Status
		edge, err := lifecycle.Authorize(actor, order, target)
		if err != nil {
			return err
		}
		if from == entity.OrderStatusDraft && target == entity.OrderStatusPending && len(order.Items) == 0 {
			return domain.NewValidationError("items", "el pedido no tiene ítems")
		}
		if err := uc.applyEffect(ctx, recordRepo, txnRepo, actor, order, edge.Effect); err != nil {
			return err
		}
		order.Status = target
		order.UpdatedAt = uc.now()
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("from", from.String()).
		Str("to", target.String()).
		Str("user_id", actor.UserID).
		Msg("transición de pedido")
	return order, nil
}

func (uc *LifecycleUseCase) applyEffect(
	ctx context.Context,
	recordRepo repository.InventoryRecordRepository,
	txnRepo repository.TransactionRepository,
	actor entity.Actor,
	order *entity.Order,
	effect lifecycle.Effect,
) error {
	switch effect {
	case lifecycle.EffectReserve:
		return uc.ledger.ReserveInTx(ctx, recordRepo, order.ToOrganizationID, stockLines(order.Items))
	case lifecycle.EffectRelease:
		return uc.ledger.ReleaseInTx(ctx, recordRepo, order.ToOrganizationID, stockLines(order.Items))
	case lifecycle.EffectCommit:
		lines := make([]inventory.PricedLine, 0, len(order.Items))
		for _, it := range order.Items {
			lines = append(lines, inventory.PricedLine{LiteratureID: it.LiteratureID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
		}
		return uc.ledger.CommitInTx(ctx, recordRepo, txnRepo, inventory.CommitInput{
			OrganizationID:   order.ToOrganizationID,
			ToOrganizationID: order.FromOrganizationID,
			OrderID:          order.ID,
			UserID:           actor.UserID,
			Lines:            lines,
		})
	case lifecycle.EffectReceive:
		if !uc.cfg.RecordIncomingOnDelivery || order.FromOrganizationID == nil {
			return nil
		}
		shipper := order.ToOrganizationID
		orderID := order.ID
		for _, it := range order.Items {
			_, err := uc.ledger.ReceiveIncomingInTx(ctx, recordRepo, txnRepo, inventory.IncomingInput{
				OrganizationID:     *order.FromOrganizationID,
				LiteratureID:       it.LiteratureID,
				Quantity:           it.Quantity,
				UnitPrice:          &it.UnitPrice,
				FromOrganizationID: &shipper,
				OrderID:            &orderID,
				UserID:             actor.UserID,
				Notes:              "recepción del pedido " + order.OrderNumber,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// mutateItems corre fn con el pedido bloqueado y reemplaza sus ítems.
// En APPROVED la reserva se ajusta a las nuevas líneas en la misma transacción.
func (uc *LifecycleUseCase) mutateItems(ctx context.Context, actor entity.Actor, id string, fn func(current []entity.OrderItem) ([]ItemInput, error)) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		recordRepo repository.InventoryRecordRepository,
		_ repository.TransactionRepository,
	) error {
		var err error
		order, err = loadForUpdate(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if !canView(actor, order) {
			return domain.ErrForbidden
		}
		if !order.IsEditable() {
			return domain.ErrOrderLocked
		}
		in, err := fn(order.Items)
		if err != nil {
			return err
		}
		if err := validateItems(in); err != nil {
			return err
		}
		if len(in) == 0 && order.Status != entity.OrderStatusDraft {
			return domain.NewValidationError("items", "el pedido debe conservar al menos un ítem")
		}
		items, err := uc.buildItems(ctx, order.ID, order.Items, in)
		if err != nil {
			return err
		}
		if order.Status == entity.OrderStatusApproved {
			err := uc.ledger.ReplaceReservationInTx(ctx, recordRepo, order.ToOrganizationID, stockLines(order.Items), stockLines(items))
			if err != nil {
				return err
			}
		}
		order.Items = items
		order.RecalculateTotals()
		order.UpdatedAt = uc.now()
		if err := orderRepo.ReplaceItems(ctx, order.ID, order.Items); err != nil {
			return err
		}
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Int("items", len(order.Items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Str("user_id", actor.UserID).
		Msg("ítems del pedido actualizados")
	return order, nil
}

// UpdateOrderItems reemplaza todas las líneas (setItems).
func (uc *LifecycleUseCase) UpdateOrderItems(ctx context.Context, actor entity.Actor, id string, items []ItemInput) (*entity.Order, error) {
	return uc.mutateItems(ctx, actor, id, func([]entity.OrderItem) ([]ItemInput, error) {
		return items, nil
	})
}

func toInputs(current []entity.OrderItem) []ItemInput {
	out := make([]ItemInput, 0, len(current)+1)
	for _, it := range current {
		out = append(out, ItemInput{LiteratureID: it.LiteratureID, Quantity: it.Quantity})
	}
	return out
}

// AddItem agrega una línea; si la literatura ya está, suma la cantidad.
func (uc *LifecycleUseCase) AddItem(ctx context.Context, actor entity.Actor, id string, item ItemInput) (*entity.Order, error) {
	if item.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return uc.mutateItems(ctx, actor, id, func(current []entity.OrderItem) ([]ItemInput, error) {
		in := toInputs(current)
		for i := range in {
			if in[i].LiteratureID == item.LiteratureID {
				in[i].Quantity += item.Quantity
				return in, nil
			}
		}
		return append(in, item), nil
	})
}

// UpdateItemQuantity cambia la cantidad de una línea existente.
func (uc *LifecycleUseCase) UpdateItemQuantity(ctx context.Context, actor entity.Actor, id, literatureID string, quantity int) (*entity.Order, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return uc.mutateItems(ctx, actor, id, func(current []entity.OrderItem) ([]ItemInput, error) {
		in := toInputs(current)
		for i := range in {
			if in[i].LiteratureID == literatureID {
				in[i].Quantity = quantity
				return in, nil
			}
		}
		return nil, domain.ErrNotFound
	})
}

// RemoveItem quita una línea.
func (uc *LifecycleUseCase) RemoveItem(ctx context.Context, actor entity.Actor, id, literatureID string) (*entity.Order, error) {
	return uc.mutateItems(ctx, actor, id, func(current []entity.OrderItem) ([]ItemInput, error) {
		in := toInputs(current)
		for i := range in {
			if in[i].LiteratureID == literatureID {
				return append(in[:i], in[i+1:]...), nil
			}
		}
		return nil, domain.ErrNotFound
	})
}

// requireReceiver solo el receptor (o admin) puede bloquear y desbloquear.
func requireReceiver(actor entity.Actor, order *entity.Order) error {
	if actor.IsAdmin() || lifecycle.RelationOf(actor, order).Has(lifecycle.RelReceiver) {
		return nil
	}
	return domain.ErrForbidden
}

// LockOrder bloquea la edición de ítems independientemente del estado.
func (uc *LifecycleUseCase) LockOrder(ctx context.Context, actor entity.Actor, id string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.InventoryRecordRepository,
		_ repository.TransactionRepository,
	) error {
		var err error
		order, err = loadForUpdate(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if err := requireReceiver(actor, order); err != nil {
			return err
		}
		if order.IsLocked() {
			return domain.ErrOrderLocked
		}
		now := uc.now()
		by := actor.UserID
		order.LockedAt = &now
		order.LockedBy = &by
		order.UpdatedAt = now
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("user_id", actor.UserID).Msg("pedido bloqueado")
	return order, nil
}

// UnlockOrder libera el bloqueo explícito. Sin bloqueo es un no-op.
func (uc *LifecycleUseCase) UnlockOrder(ctx context.Context, actor entity.Actor, id string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.InventoryRecordRepository,
		_ repository.TransactionRepository,
	) error {
		var err error
		order, err = loadForUpdate(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if err := requireReceiver(actor, order); err != nil {
			return err
		}
		if !order.IsLocked() {
			return nil
		}
		order.LockedAt = nil
		order.LockedBy = nil
		order.UpdatedAt = uc.now()
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("user_id", actor.UserID).Msg("pedido desbloqueado")
	return order, nil
}

// DeleteOrder elimina un pedido en DRAFT (solicitante o admin).
func (uc *LifecycleUseCase) DeleteOrder(ctx context.Context, actor entity.Actor, id string) error {
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.InventoryRecordRepository,
		_ repository.TransactionRepository,
	) error {
		order, err := loadForUpdate(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !lifecycle.RelationOf(actor, order).Has(lifecycle.RelRequester) {
			return domain.ErrForbidden
		}
		if order.Status != entity.OrderStatusDraft {
			return &domain.TransitionError{From: order.Status.String(), To: "DELETED", Reason: "solo se eliminan borradores"}
		}
		return orderRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("order_id", id).Str("user_id", actor.UserID).Msg("pedido eliminado")
	return nil
}
