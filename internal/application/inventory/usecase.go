package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/litpedidos-api/internal/domain/inventory"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// LedgerUseCase libro de inventario: único componente que escribe quantity/reservedQuantity.
// Cada operación bloquea las filas afectadas (SELECT FOR UPDATE), valida todo el lote
// y recién entonces persiste, de modo que un lote falla completo o se aplica completo.
type LedgerUseCase struct {
	txRunner   TxRunner
	recordRepo repository.InventoryRecordRepository
	orgRepo    repository.OrganizationRepository
	litRepo    repository.LiteratureRepository
	log        zerolog.Logger
	now        func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	recordRepo repository.InventoryRecordRepository,
	orgRepo repository.OrganizationRepository,
	litRepo repository.LiteratureRepository,
	log zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:   txRunner,
		recordRepo: recordRepo,
		orgRepo:    orgRepo,
		litRepo:    litRepo,
		log:        log.With().Str("component", "inventory_ledger").Logger(),
		now:        time.Now,
	}
}

// PricedLine línea con precio congelado (para los movimientos que generan transacción).
type PricedLine struct {
	LiteratureID string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// CommitInput salida física de un pedido enviado.
type CommitInput struct {
	OrganizationID   string  // quien envía (dueño del stock)
	ToOrganizationID *string // destino, nil en pedidos de nivel superior
	OrderID          string
	UserID           string
	Lines            []PricedLine
}

// IncomingInput entrada de stock.
type IncomingInput struct {
	OrganizationID     string
	LiteratureID       string
	Quantity           int
	UnitPrice          *decimal.Decimal // nil: ReceiveStock usa el precio del catálogo; cero es válido
	FromOrganizationID *string
	OrderID            *string
	UserID             string
	Notes              string
}

// AdjustmentInput ajuste manual con signo.
type AdjustmentInput struct {
	OrganizationID string
	LiteratureID   string
	QuantityChange int
	Reason         string
	Notes          string
	UserID         string
	UnitPrice      decimal.Decimal
}

// lockLines bloquea las filas en orden de LiteratureID y devuelve copias de valor.
func lockLines(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, lines []domaininv.Line) ([]entity.InventoryRecord, error) {
	records := make([]entity.InventoryRecord, 0, len(lines))
	for _, l := range lines {
		rec, err := recordRepo.GetForUpdate(ctx, organizationID, l.LiteratureID)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (uc *LedgerUseCase) persist(ctx context.Context, recordRepo repository.InventoryRecordRepository, plan []entity.InventoryRecord) error {
	now := uc.now()
	for i := range plan {
		rec := plan[i]
		if !rec.Valid() {
			// No debería ocurrir: las funciones Apply* validan antes.
			return fmt.Errorf("registro inválido %s/%s: quantity=%d reserved=%d",
				rec.OrganizationID, rec.LiteratureID, rec.Quantity, rec.ReservedQuantity)
		}
		rec.UpdatedAt = now
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if err := recordRepo.Upsert(ctx, &rec); err != nil {
			return err
		}
	}
	return nil
}

// ReserveInTx aumenta reservedQuantity por cada línea usando los repositorios del caller (misma transacción).
// Si alguna línea no alcanza, no se modifica ninguna fila.
func (uc *LedgerUseCase) ReserveInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, lines []domaininv.Line) error {
	norm, err := domaininv.NormalizeLines(lines)
	if err != nil {
		return err
	}
	records, err := lockLines(ctx, recordRepo, organizationID, norm)
	if err != nil {
		return err
	}
	plan := make([]entity.InventoryRecord, len(norm))
	for i, l := range norm {
		next, err := domaininv.ApplyReserve(records[i], l.Quantity)
		if err != nil {
			return err
		}
		plan[i] = next
	}
	return uc.persist(ctx, recordRepo, plan)
}

// ReleaseInTx disminuye reservedQuantity con piso en cero. Un piso aplicado indica
// uso incorrecto y se registra como advertencia.
func (uc *LedgerUseCase) ReleaseInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, lines []domaininv.Line) error {
	norm, err := domaininv.NormalizeLines(lines)
	if err != nil {
		return err
	}
	records, err := lockLines(ctx, recordRepo, organizationID, norm)
	if err != nil {
		return err
	}
	plan := make([]entity.InventoryRecord, len(norm))
	for i, l := range norm {
		next, floored := domaininv.ApplyRelease(records[i], l.Quantity)
		if floored {
			uc.log.Warn().
				Str("organization_id", organizationID).
				Str("literature_id", l.LiteratureID).
				Int("reserved", records[i].ReservedQuantity).
				Int("release", l.Quantity).
				Msg("liberación mayor que la reserva, se deja en cero")
		}
		plan[i] = next
	}
	return uc.persist(ctx, recordRepo, plan)
}

// ReplaceReservationInTx mueve una reserva: libera released y reserva reserved en la
// misma organización. Bloquea la unión de literaturas una sola vez, en orden, y
// aplica todo en memoria antes de escribir; si la nueva reserva no alcanza, nada cambia.
func (uc *LedgerUseCase) ReplaceReservationInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, organizationID string, released, reserved []domaininv.Line) error {
	oldLines, err := domaininv.NormalizeLines(released)
	if err != nil {
		return err
	}
	newLines, err := domaininv.NormalizeLines(reserved)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(oldLines)+len(newLines))
	for _, l := range append(append([]domaininv.Line{}, oldLines...), newLines...) {
		if !slices.Contains(ids, l.LiteratureID) {
			ids = append(ids, l.LiteratureID)
		}
	}
	slices.Sort(ids)
	union := make([]domaininv.Line, len(ids))
	for i, id := range ids {
		union[i] = domaininv.Line{LiteratureID: id}
	}
	records, err := lockLines(ctx, recordRepo, organizationID, union)
	if err != nil {
		return err
	}
	byID := make(map[string]entity.InventoryRecord, len(records))
	for _, rec := range records {
		byID[rec.LiteratureID] = rec
	}
	for _, l := range oldLines {
		next, floored := domaininv.ApplyRelease(byID[l.LiteratureID], l.Quantity)
		if floored {
			uc.log.Warn().
				Str("organization_id", organizationID).
				Str("literature_id", l.LiteratureID).
				Int("release", l.Quantity).
				Msg("liberación mayor que la reserva, se deja en cero")
		}
		byID[l.LiteratureID] = next
	}
	for _, l := range newLines {
		next, err := domaininv.ApplyReserve(byID[l.LiteratureID], l.Quantity)
		if err != nil {
			return err
		}
		byID[l.LiteratureID] = next
	}
	plan := make([]entity.InventoryRecord, len(ids))
	for i, id := range ids {
		plan[i] = byID[id]
	}
	return uc.persist(ctx, recordRepo, plan)
}

// CommitInTx descuenta quantity y reservedQuantity y agrega un OUTGOING por línea.
// La reserva debe existir para cada línea.
func (uc *LedgerUseCase) CommitInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository, in CommitInput) error {
	prices := make(map[string]decimal.Decimal, len(in.Lines))
	raw := make([]domaininv.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		if _, ok := prices[l.LiteratureID]; !ok {
			prices[l.LiteratureID] = l.UnitPrice
		}
		raw = append(raw, domaininv.Line{LiteratureID: l.LiteratureID, Quantity: l.Quantity})
	}
	norm, err := domaininv.NormalizeLines(raw)
	if err != nil {
		return err
	}
	records, err := lockLines(ctx, recordRepo, in.OrganizationID, norm)
	if err != nil {
		return err
	}
	plan := make([]entity.InventoryRecord, len(norm))
	for i, l := range norm {
		next, err := domaininv.ApplyCommit(records[i], l.Quantity)
		if err != nil {
			return err
		}
		plan[i] = next
	}
	if err := uc.persist(ctx, recordRepo, plan); err != nil {
		return err
	}

	now := uc.now()
	orderID := in.OrderID
	from := in.OrganizationID
	for _, l := range norm {
		price := prices[l.LiteratureID]
		txn := &entity.Transaction{
			ID:                 uuid.New().String(),
			Type:               entity.TransactionTypeOutgoing,
			OrganizationID:     in.OrganizationID,
			FromOrganizationID: &from,
			ToOrganizationID:   in.ToOrganizationID,
			LiteratureID:       l.LiteratureID,
			Quantity:           l.Quantity,
			UnitPrice:          price,
			TotalAmount:        price.Mul(decimal.NewFromInt(int64(l.Quantity))),
			OrderID:            &orderID,
			CreatedBy:          in.UserID,
			CreatedAt:          now,
		}
		if err := txnRepo.Create(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveIncomingInTx suma quantity (no reservado) y agrega un INCOMING.
func (uc *LedgerUseCase) ReceiveIncomingInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository, in IncomingInput) (*entity.Transaction, error) {
	if in.OrganizationID == "" || in.LiteratureID == "" {
		return nil, domain.NewValidationError("organization_id", "organización y literatura requeridas")
	}
	price := decimal.Zero
	if in.UnitPrice != nil {
		price = *in.UnitPrice
	}
	if price.IsNegative() {
		return nil, domain.NewValidationError("unit_price", "no puede ser negativo")
	}
	rec, err := recordRepo.GetForUpdate(ctx, in.OrganizationID, in.LiteratureID)
	if err != nil {
		return nil, err
	}
	next, err := domaininv.ApplyIncoming(*rec, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := uc.persist(ctx, recordRepo, []entity.InventoryRecord{next}); err != nil {
		return nil, err
	}
	to := in.OrganizationID
	txn := &entity.Transaction{
		ID:                 uuid.New().String(),
		Type:               entity.TransactionTypeIncoming,
		OrganizationID:     in.OrganizationID,
		FromOrganizationID: in.FromOrganizationID,
		ToOrganizationID:   &to,
		LiteratureID:       in.LiteratureID,
		Quantity:           in.Quantity,
		UnitPrice:          price,
		TotalAmount:        price.Mul(decimal.NewFromInt(int64(in.Quantity))),
		OrderID:            in.OrderID,
		Notes:              in.Notes,
		CreatedBy:          in.UserID,
		CreatedAt:          uc.now(),
	}
	if err := txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// AdjustInTx aplica un ajuste con signo; falla sin tocar nada si el stock quedaría negativo.
func (uc *LedgerUseCase) AdjustInTx(ctx context.Context, recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository, in AdjustmentInput) (*entity.Transaction, error) {
	rec, err := recordRepo.GetForUpdate(ctx, in.OrganizationID, in.LiteratureID)
	if err != nil {
		return nil, err
	}
	next, err := domaininv.ApplyAdjustment(*rec, in.QuantityChange)
	if err != nil {
		return nil, err
	}
	if err := uc.persist(ctx, recordRepo, []entity.InventoryRecord{next}); err != nil {
		return nil, err
	}
	org := in.OrganizationID
	txn := &entity.Transaction{
		ID:               uuid.New().String(),
		Type:             entity.TransactionTypeAdjustment,
		OrganizationID:   in.OrganizationID,
		ToOrganizationID: &org,
		LiteratureID:     in.LiteratureID,
		Quantity:         in.QuantityChange,
		UnitPrice:        in.UnitPrice,
		TotalAmount:      in.UnitPrice.Mul(decimal.NewFromInt(int64(in.QuantityChange))),
		Reason:           in.Reason,
		Notes:            in.Notes,
		CreatedBy:        in.UserID,
		CreatedAt:        uc.now(),
	}
	if err := txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// resolveStockTarget valida que organización y literatura existan y que el actor pueda operar el stock.
func (uc *LedgerUseCase) resolveStockTarget(ctx context.Context, actor entity.Actor, organizationID, literatureID string) (*entity.Literature, error) {
	org, err := uc.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	lit, err := uc.litRepo.GetByID(ctx, literatureID)
	if err != nil {
		return nil, err
	}
	if lit == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.BelongsTo(organizationID) {
		return nil, domain.ErrForbidden
	}
	return lit, nil
}

// CreateAdjustment registra un ajuste manual en su propia transacción.
// Es el único camino que modifica stock sin pasar por la máquina de estados del pedido.
func (uc *LedgerUseCase) CreateAdjustment(ctx context.Context, actor entity.Actor, in AdjustmentInput) (*entity.Transaction, error) {
	if in.OrganizationID == "" {
		return nil, domain.NewValidationError("organization_id", "requerido")
	}
	if in.LiteratureID == "" {
		return nil, domain.NewValidationError("literature_id", "requerido")
	}
	if in.QuantityChange == 0 {
		return nil, domain.NewValidationError("quantity_change", "no puede ser cero")
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		return nil, domain.NewValidationError("reason", "requerido")
	}
	lit, err := uc.resolveStockTarget(ctx, actor, in.OrganizationID, in.LiteratureID)
	if err != nil {
		return nil, err
	}
	in.UserID = actor.UserID
	in.UnitPrice = lit.Price

	var txn *entity.Transaction
	err = uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository) error {
		var err error
		txn, err = uc.AdjustInTx(ctx, recordRepo, txnRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("organization_id", in.OrganizationID).
		Str("literature_id", in.LiteratureID).
		Int("quantity_change", in.QuantityChange).
		Str("reason", in.Reason).
		Str("user_id", actor.UserID).
		Msg("ajuste de inventario registrado")
	return txn, nil
}

// ReceiveStock registra una entrada manual (abastecimiento externo a la jerarquía).
func (uc *LedgerUseCase) ReceiveStock(ctx context.Context, actor entity.Actor, in IncomingInput) (*entity.Transaction, error) {
	if in.OrganizationID == "" {
		return nil, domain.NewValidationError("organization_id", "requerido")
	}
	if in.LiteratureID == "" {
		return nil, domain.NewValidationError("literature_id", "requerido")
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	lit, err := uc.resolveStockTarget(ctx, actor, in.OrganizationID, in.LiteratureID)
	if err != nil {
		return nil, err
	}
	if in.FromOrganizationID != nil && *in.FromOrganizationID == "" {
		in.FromOrganizationID = nil
	}
	if in.UnitPrice == nil {
		in.UnitPrice = &lit.Price
	}
	in.UserID = actor.UserID
	in.OrderID = nil

	var txn *entity.Transaction
	err = uc.txRunner.Run(ctx, func(recordRepo repository.InventoryRecordRepository, txnRepo repository.TransactionRepository) error {
		var err error
		txn, err = uc.ReceiveIncomingInTx(ctx, recordRepo, txnRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("organization_id", in.OrganizationID).
		Str("literature_id", in.LiteratureID).
		Int("quantity", in.Quantity).
		Msg("entrada de inventario registrada")
	return txn, nil
}

// GetInventory devuelve el registro de stock; en cero si aún no hubo movimientos.
func (uc *LedgerUseCase) GetInventory(ctx context.Context, organizationID, literatureID string) (*entity.InventoryRecord, error) {
	if organizationID == "" || literatureID == "" {
		return nil, domain.ErrValidation
	}
	org, err := uc.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	lit, err := uc.litRepo.GetByID(ctx, literatureID)
	if err != nil {
		return nil, err
	}
	if lit == nil {
		return nil, domain.ErrNotFound
	}
	return uc.recordRepo.Get(ctx, organizationID, literatureID)
}

// ListInventory lista el stock de una organización con paginación.
func (uc *LedgerUseCase) ListInventory(ctx context.Context, organizationID string, limit, offset int) ([]*entity.InventoryRecord, int, error) {
	if organizationID == "" {
		return nil, 0, domain.ErrValidation
	}
	org, err := uc.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, 0, err
	}
	if org == nil {
		return nil, 0, domain.ErrNotFound
	}
	return uc.recordRepo.ListByOrganization(ctx, organizationID, limit, offset)
}
