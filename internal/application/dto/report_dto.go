package dto

import "github.com/shopspring/decimal"

// ReportFilter filtros comunes de reportes (query string). Fechas en formato YYYY-MM-DD.
type ReportFilter struct {
	OrganizationID string `query:"organization_id"`
	LiteratureID   string `query:"literature_id"`
	OrderID        string `query:"order_id"`
	Type           string `query:"type" validate:"omitempty,oneof=INCOMING OUTGOING ADJUSTMENT"`
	StartDate      string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// TypeTotalsDTO agregados de un tipo de movimiento.
type TypeTotalsDTO struct {
	Type        string          `json:"type"`
	Count       int             `json:"count"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// StatisticsDTO respuesta de GET /api/reports/statistics.
type StatisticsDTO struct {
	OrganizationID string          `json:"organization_id,omitempty"`
	StartDate      string          `json:"start_date,omitempty"`
	EndDate        string          `json:"end_date,omitempty"`
	Movements      []TypeTotalsDTO `json:"movements"`
	OrdersByStatus map[string]int  `json:"orders_by_status"`
	TotalOrders    int             `json:"total_orders"`
	IncomingAmount decimal.Decimal `json:"incoming_amount"`
	OutgoingAmount decimal.Decimal `json:"outgoing_amount"`
}

// MovementRowDTO una fila del reporte de movimientos.
type MovementRowDTO struct {
	OrganizationID string          `json:"organization_id"`
	LiteratureID   string          `json:"literature_id"`
	Incoming       int             `json:"incoming"`
	Outgoing       int             `json:"outgoing"`
	Adjustments    int             `json:"adjustments"`
	Net            int             `json:"net"` // incoming - outgoing + adjustments
	IncomingAmount decimal.Decimal `json:"incoming_amount"`
	OutgoingAmount decimal.Decimal `json:"outgoing_amount"`
}

// MovementReportDTO respuesta de GET /api/reports/movements.
type MovementReportDTO struct {
	StartDate string           `json:"start_date,omitempty"`
	EndDate   string           `json:"end_date,omitempty"`
	Rows      []MovementRowDTO `json:"rows"`
	TotalNet  int              `json:"total_net"`
}
