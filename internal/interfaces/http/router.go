package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litpedidos-api/internal/application/inventory"
	"github.com/jhoicas/litpedidos-api/internal/application/orders"
	"github.com/jhoicas/litpedidos-api/internal/application/reports"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orders    *orders.LifecycleUseCase
	Ledger    *inventory.LedgerUseCase
	Reports   *reports.UseCase
	OrgRepo   repository.OrganizationRepository
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token con un rol reconocido)
	protected := app.Group("/api",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin, entity.RoleMember),
		RequireActiveOrganization(deps.OrgRepo),
	)

	orderHandler := NewOrderHandler(deps.Orders)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Delete("/:id", orderHandler.Delete)
	ordersGroup.Post("/:id/transitions", orderHandler.Transition)
	ordersGroup.Put("/:id/items", orderHandler.SetItems)
	ordersGroup.Post("/:id/items", orderHandler.AddItem)
	ordersGroup.Patch("/:id/items/:literatureId", orderHandler.UpdateItem)
	ordersGroup.Delete("/:id/items/:literatureId", orderHandler.RemoveItem)
	ordersGroup.Post("/:id/lock", orderHandler.Lock)
	ordersGroup.Delete("/:id/lock", orderHandler.Unlock)

	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/adjustments", inventoryHandler.CreateAdjustment)
	invGroup.Post("/receipts", inventoryHandler.ReceiveStock)
	invGroup.Get("/:organizationId", inventoryHandler.List)
	invGroup.Get("/:organizationId/:literatureId", inventoryHandler.Get)

	reportHandler := NewReportHandler(deps.Reports)
	protected.Get("/transactions", reportHandler.ListTransactions)
	protected.Get("/reports/statistics", reportHandler.Statistics)
	protected.Get("/reports/movements", reportHandler.Movements)
}
