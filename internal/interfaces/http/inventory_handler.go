package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/domain"
)

// InventoryHandler maneja stock y movimientos manuales (protegido).
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste manual de inventario
// @Description  quantity_change con signo; el stock nunca queda por debajo de lo reservado.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "organization_id, literature_id, quantity_change, reason"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	txn, err := h.uc.CreateAdjustmentFromRequest(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(txn))
}

// ReceiveStock godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "organization_id, literature_id, quantity, unit_price opcional"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	txn, err := h.uc.ReceiveStockFromRequest(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(txn))
}

// List godoc
// @Summary      Stock de una organización
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        organizationId  path   string  true   "ID de la organización"
// @Param        limit           query  int     false  "Límite (default 20, máx 100)"
// @Param        offset          query  int     false  "Offset"
// @Success      200  {object}  dto.InventoryListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{organizationId} [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	orgID := c.Params("organizationId")
	if !GetActor(c).BelongsTo(orgID) {
		return writeError(c, domain.ErrForbidden)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, total, err := h.uc.ListInventory(c.Context(), orgID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.InventoryRecordResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.NewInventoryRecordResponse(r))
	}
	return c.JSON(dto.InventoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Get godoc
// @Summary      Stock de una literatura en una organización
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        organizationId  path  string  true  "ID de la organización"
// @Param        literatureId    path  string  true  "ID de la literatura"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{organizationId}/{literatureId} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	orgID := c.Params("organizationId")
	if !GetActor(c).BelongsTo(orgID) {
		return writeError(c, domain.ErrForbidden)
	}
	rec, err := h.uc.GetInventory(c.Context(), orgID, c.Params("literatureId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewInventoryRecordResponse(rec))
}
