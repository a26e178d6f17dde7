// Package reports contiene las consultas de solo lectura sobre el libro de
// transacciones y los pedidos: listado de movimientos, estadísticas y reporte
// de movimientos por organización y literatura.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// UseCase reportes. No escribe; delega todas las agregaciones en los repositorios.
type UseCase struct {
	orderRepo repository.OrderRepository
	txnRepo   repository.TransactionRepository
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(orderRepo repository.OrderRepository, txnRepo repository.TransactionRepository, log zerolog.Logger) *UseCase {
	return &UseCase{
		orderRepo: orderRepo,
		txnRepo:   txnRepo,
		log:       log.With().Str("component", "reports").Logger(),
	}
}

// scopeOrganization fuera de admin los reportes se limitan a la organización del actor.
func scopeOrganization(actor entity.Actor, requested string) (string, error) {
	if actor.IsAdmin() {
		return requested, nil
	}
	if actor.OrganizationID == "" {
		return "", domain.ErrForbidden
	}
	if requested != "" && requested != actor.OrganizationID {
		return "", domain.ErrForbidden
	}
	return actor.OrganizationID, nil
}

// parsePeriod convierte YYYY-MM-DD a un rango [start, end+1día). Vacío = sin límite.
func parsePeriod(startStr, endStr string) (start, end *time.Time, err error) {
	if startStr != "" {
		t, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return nil, nil, domain.NewValidationError("start_date", "formato esperado YYYY-MM-DD")
		}
		start = &t
	}
	if endStr != "" {
		t, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return nil, nil, domain.NewValidationError("end_date", "formato esperado YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1) // inclusive hasta el final del día
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, domain.NewValidationError("start_date", "no puede ser posterior a end_date")
	}
	return start, end, nil
}

func (uc *UseCase) transactionFilter(actor entity.Actor, f dto.ReportFilter) (repository.TransactionFilter, error) {
	org, err := scopeOrganization(actor, f.OrganizationID)
	if err != nil {
		return repository.TransactionFilter{}, err
	}
	start, end, err := parsePeriod(f.StartDate, f.EndDate)
	if err != nil {
		return repository.TransactionFilter{}, err
	}
	out := repository.TransactionFilter{
		OrganizationID: org,
		LiteratureID:   f.LiteratureID,
		OrderID:        f.OrderID,
		From:           start,
		To:             end,
	}
	if f.Type != "" {
		t := strings.ToUpper(f.Type)
		switch t {
		case entity.TransactionTypeIncoming, entity.TransactionTypeOutgoing, entity.TransactionTypeAdjustment:
			out.Types = []string{t}
		default:
			return repository.TransactionFilter{}, domain.NewValidationError("type", "tipo desconocido: "+f.Type)
		}
	}
	return out, nil
}

// ListTransactions lista movimientos del libro, más recientes primero.
func (uc *UseCase) ListTransactions(ctx context.Context, actor entity.Actor, f dto.ReportFilter, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	filter, err := uc.transactionFilter(actor, f)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	rows, total, err := uc.txnRepo.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("reportes: listar transacciones: %w", err)
	}
	items := make([]dto.TransactionResponse, 0, len(rows))
	for _, t := range rows {
		items = append(items, dto.NewTransactionResponse(t))
	}
	return &dto.TransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// GetStatistics totales por tipo de movimiento y conteo de pedidos por estado.
//
// Dos consultas independientes en paralelo:
//  1. TotalsByType   → Movements, IncomingAmount, OutgoingAmount
//  2. CountByStatus  → OrdersByStatus, TotalOrders
func (uc *UseCase) GetStatistics(ctx context.Context, actor entity.Actor, f dto.ReportFilter) (*dto.StatisticsDTO, error) {
	filter, err := uc.transactionFilter(actor, f)
	if err != nil {
		return nil, err
	}
	orderFilter := repository.OrderFilter{
		OrganizationID: filter.OrganizationID,
		From:           filter.From,
		To:             filter.To,
	}

	var (
		totals []repository.TypeTotals
		counts map[entity.OrderStatus]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = uc.txnRepo.TotalsByType(gctx, filter)
		if err != nil {
			return fmt.Errorf("estadísticas: totales por tipo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		counts, err = uc.orderRepo.CountByStatus(gctx, orderFilter)
		if err != nil {
			return fmt.Errorf("estadísticas: pedidos por estado: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		uc.log.Error().Err(err).Str("organization_id", filter.OrganizationID).Msg("fallo al calcular estadísticas")
		return nil, err
	}

	out := &dto.StatisticsDTO{
		OrganizationID: filter.OrganizationID,
		StartDate:      f.StartDate,
		EndDate:        f.EndDate,
		Movements:      make([]dto.TypeTotalsDTO, 0, len(totals)),
		OrdersByStatus: make(map[string]int, len(entity.AllOrderStatuses)),
		IncomingAmount: decimal.Zero,
		OutgoingAmount: decimal.Zero,
	}
	for _, t := range totals {
		out.Movements = append(out.Movements, dto.TypeTotalsDTO{
			Type:        t.Type,
			Count:       t.Count,
			Quantity:    t.Quantity,
			TotalAmount: t.TotalAmount.Round(2),
		})
		switch t.Type {
		case entity.TransactionTypeIncoming:
			out.IncomingAmount = t.TotalAmount.Round(2)
		case entity.TransactionTypeOutgoing:
			out.OutgoingAmount = t.TotalAmount.Round(2)
		}
	}
	for _, st := range entity.AllOrderStatuses {
		n := counts[st]
		out.OrdersByStatus[st.String()] = n
		out.TotalOrders += n
	}
	return out, nil
}

// GetMovementReport entradas, salidas y ajustes por organización y literatura.
func (uc *UseCase) GetMovementReport(ctx context.Context, actor entity.Actor, f dto.ReportFilter) (*dto.MovementReportDTO, error) {
	filter, err := uc.transactionFilter(actor, f)
	if err != nil {
		return nil, err
	}
	rows, err := uc.txnRepo.Movements(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reportes: movimientos: %w", err)
	}
	out := &dto.MovementReportDTO{
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Rows:      make([]dto.MovementRowDTO, 0, len(rows)),
	}
	for _, r := range rows {
		net := r.Incoming - r.Outgoing + r.Adjustments
		out.Rows = append(out.Rows, dto.MovementRowDTO{
			OrganizationID: r.OrganizationID,
			LiteratureID:   r.LiteratureID,
			Incoming:       r.Incoming,
			Outgoing:       r.Outgoing,
			Adjustments:    r.Adjustments,
			Net:            net,
			IncomingAmount: r.IncomingAmount.Round(2),
			OutgoingAmount: r.OutgoingAmount.Round(2),
		})
		out.TotalNet += net
	}
	return out, nil
}
