package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/application/reports"
)

// ReportHandler expone el libro de movimientos y los reportes agregados (protegido).
type ReportHandler struct {
	uc *reports.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// ListTransactions godoc
// @Summary      Listar movimientos de inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        organization_id  query  string  false  "Organización (solo admin puede consultar otras)"
// @Param        literature_id    query  string  false  "Literatura"
// @Param        order_id         query  string  false  "Pedido"
// @Param        type             query  string  false  "INCOMING, OUTGOING o ADJUSTMENT"
// @Param        start_date       query  string  false  "YYYY-MM-DD"
// @Param        end_date         query  string  false  "YYYY-MM-DD"
// @Param        limit            query  int     false  "Límite (default 20, máx 100)"
// @Param        offset           query  int     false  "Offset"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *ReportHandler) ListTransactions(c *fiber.Ctx) error {
	var f dto.ReportFilter
	if err := bindQuery(c, &f); err != nil {
		return writeError(c, err)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.ListTransactions(c.Context(), GetActor(c), f, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Estadísticas de movimientos y pedidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        organization_id  query  string  false  "Organización"
// @Param        start_date       query  string  false  "YYYY-MM-DD"
// @Param        end_date         query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.StatisticsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/statistics [get]
func (h *ReportHandler) Statistics(c *fiber.Ctx) error {
	var f dto.ReportFilter
	if err := bindQuery(c, &f); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetStatistics(c.Context(), GetActor(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Reporte de movimientos por organización y literatura
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        organization_id  query  string  false  "Organización"
// @Param        literature_id    query  string  false  "Literatura"
// @Param        start_date       query  string  false  "YYYY-MM-DD"
// @Param        end_date         query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.MovementReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	var f dto.ReportFilter
	if err := bindQuery(c, &f); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetMovementReport(c.Context(), GetActor(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
