package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// OrderHandler maneja las peticiones HTTP del ciclo de vida de pedidos (protegido).
type OrderHandler struct {
	uc *orders.LifecycleUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.LifecycleUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func toItemInputs(items []dto.OrderItemRequest) []orders.ItemInput {
	out := make([]orders.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, orders.ItemInput{LiteratureID: it.LiteratureID, Quantity: it.Quantity})
	}
	return out
}

func orderID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if id == "" {
		return "", domain.NewValidationError("id", "requerido")
	}
	return id, nil
}

// Create godoc
// @Summary      Crear pedido en DRAFT
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Organización destino, origen opcional e ítems"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	if in.FromOrganizationID != nil && strings.TrimSpace(*in.FromOrganizationID) == "" {
		in.FromOrganizationID = nil
	}
	order, err := h.uc.CreateOrder(c.Context(), GetActor(c), orders.CreateOrderInput{
		ToOrganizationID:   in.ToOrganizationID,
		FromOrganizationID: in.FromOrganizationID,
		Notes:              in.Notes,
		Items:              toItemInputs(in.Items),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// GetByID godoc
// @Summary      Obtener pedido por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.GetOrder(c.Context(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// parseDay interpreta YYYY-MM-DD. Con endOfDay devuelve el inicio del día siguiente (rango semiabierto).
func parseDay(field, value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, domain.NewValidationError(field, "formato esperado YYYY-MM-DD")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

// List godoc
// @Summary      Listar pedidos visibles para el usuario
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status                query  string  false  "Estados separados por coma (PENDING,APPROVED)"
// @Param        organization_id       query  string  false  "Origen o destino (solo admin)"
// @Param        from_organization_id  query  string  false  "Organización solicitante"
// @Param        to_organization_id    query  string  false  "Organización proveedora"
// @Param        start_date            query  string  false  "YYYY-MM-DD"
// @Param        end_date              query  string  false  "YYYY-MM-DD"
// @Param        limit                 query  int     false  "Límite (default 20, máx 100)"
// @Param        offset                query  int     false  "Offset"
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		OrganizationID:     c.Query("organization_id"),
		FromOrganizationID: c.Query("from_organization_id"),
		ToOrganizationID:   c.Query("to_organization_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				filter.Statuses = append(filter.Statuses, entity.OrderStatus(s))
			}
		}
	}
	var err error
	if filter.From, err = parseDay("start_date", c.Query("start_date"), false); err != nil {
		return writeError(c, err)
	}
	if filter.To, err = parseDay("end_date", c.Query("end_date"), true); err != nil {
		return writeError(c, err)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()

	list, total, err := h.uc.ListOrders(c.Context(), GetActor(c), filter, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, dto.NewOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Transition godoc
// @Summary      Cambiar el estado del pedido
// @Description  Aplica la transición con sus efectos de inventario en una sola transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del pedido"
// @Param        body  body  dto.TransitionRequest  true  "Estado destino"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/transitions [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.TransitionRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	target := entity.OrderStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	order, err := h.uc.TransitionOrder(c.Context(), GetActor(c), id, target)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// SetItems godoc
// @Summary      Reemplazar los ítems del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del pedido"
// @Param        body  body  dto.SetOrderItemsRequest  true  "Lista completa de ítems"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [put]
func (h *OrderHandler) SetItems(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetOrderItemsRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.UpdateOrderItems(c.Context(), GetActor(c), id, toItemInputs(in.Items))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// AddItem godoc
// @Summary      Agregar un ítem (suma si la literatura ya está)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del pedido"
// @Param        body  body  dto.OrderItemRequest  true  "Ítem"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.OrderItemRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.AddItem(c.Context(), GetActor(c), id, orders.ItemInput{LiteratureID: in.LiteratureID, Quantity: in.Quantity})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// UpdateItem godoc
// @Summary      Cambiar la cantidad de un ítem
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id            path  string                         true  "ID del pedido"
// @Param        literatureId  path  string                         true  "ID de la literatura"
// @Param        body          body  dto.UpdateItemQuantityRequest  true  "Nueva cantidad"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{literatureId} [patch]
func (h *OrderHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateItemQuantityRequest
	if err := bindBody(c, &in); err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.UpdateItemQuantity(c.Context(), GetActor(c), id, c.Params("literatureId"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// RemoveItem godoc
// @Summary      Quitar un ítem del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id            path  string  true  "ID del pedido"
// @Param        literatureId  path  string  true  "ID de la literatura"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{literatureId} [delete]
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.RemoveItem(c.Context(), GetActor(c), id, c.Params("literatureId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Lock godoc
// @Summary      Bloquear el pedido para edición
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lock [post]
func (h *OrderHandler) Lock(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.LockOrder(c.Context(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Unlock godoc
// @Summary      Desbloquear el pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/lock [delete]
func (h *OrderHandler) Unlock(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.uc.UnlockOrder(c.Context(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// Delete godoc
// @Summary      Eliminar un pedido en DRAFT
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.DeleteOrder(c.Context(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
