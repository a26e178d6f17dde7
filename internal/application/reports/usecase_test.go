package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/litpedidos-api/internal/application/dto"
	"github.com/jhoicas/litpedidos-api/internal/application/reports"
	"github.com/jhoicas/litpedidos-api/internal/domain"
	"github.com/jhoicas/litpedidos-api/internal/domain/entity"
	"github.com/jhoicas/litpedidos-api/internal/domain/repository"
)

// MockTransactionRepository mock del libro de transacciones.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, f repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]*entity.Transaction), args.Int(1), args.Error(2)
}

func (m *MockTransactionRepository) TotalsByType(ctx context.Context, f repository.TransactionFilter) ([]repository.TypeTotals, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]repository.TypeTotals), args.Error(1)
}

func (m *MockTransactionRepository) Movements(ctx context.Context, f repository.TransactionFilter) ([]repository.MovementRow, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]repository.MovementRow), args.Error(1)
}

// MockOrderRepository solo CountByStatus es usado por los reportes.
type MockOrderRepository struct {
	mock.Mock
	repository.OrderRepository
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, f repository.OrderFilter) (map[entity.OrderStatus]int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(map[entity.OrderStatus]int), args.Error(1)
}

var (
	member = entity.Actor{UserID: "u-1", Role: "member", OrganizationID: "org-1"}
	admin  = entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
)

func TestGetStatistics_Totales(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	orderRepo := new(MockOrderRepository)

	byOrg := mock.MatchedBy(func(f repository.TransactionFilter) bool {
		return f.OrganizationID == "org-1" && f.From != nil && f.To != nil && f.To.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	})
	txnRepo.On("TotalsByType", mock.Anything, byOrg).Return([]repository.TypeTotals{
		{Type: entity.TransactionTypeIncoming, Count: 2, Quantity: 30, TotalAmount: decimal.RequireFromString("300.004")},
		{Type: entity.TransactionTypeOutgoing, Count: 1, Quantity: 10, TotalAmount: decimal.RequireFromString("100")},
	}, nil)
	orderRepo.On("CountByStatus", mock.Anything, mock.MatchedBy(func(f repository.OrderFilter) bool {
		return f.OrganizationID == "org-1"
	})).Return(map[entity.OrderStatus]int{entity.OrderStatusPending: 2, entity.OrderStatusCompleted: 1}, nil)

	uc := reports.NewUseCase(orderRepo, txnRepo, zerolog.Nop())
	out, err := uc.GetStatistics(context.Background(), member, dto.ReportFilter{StartDate: "2026-02-01", EndDate: "2026-02-28"})
	require.NoError(t, err)

	assert.Equal(t, "org-1", out.OrganizationID)
	assert.Len(t, out.Movements, 2)
	assert.True(t, out.IncomingAmount.Equal(decimal.RequireFromString("300")))
	assert.True(t, out.OutgoingAmount.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, 3, out.TotalOrders)
	assert.Equal(t, 2, out.OrdersByStatus["PENDING"])
	assert.Equal(t, 0, out.OrdersByStatus["DRAFT"], "todos los estados aparecen")
	assert.Len(t, out.OrdersByStatus, len(entity.AllOrderStatuses))
	txnRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestGetStatistics_PropagaErrores(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	orderRepo := new(MockOrderRepository)
	boom := errors.New("db caída")
	txnRepo.On("TotalsByType", mock.Anything, mock.Anything).Return([]repository.TypeTotals(nil), boom)
	orderRepo.On("CountByStatus", mock.Anything, mock.Anything).Return(map[entity.OrderStatus]int{}, nil)

	uc := reports.NewUseCase(orderRepo, txnRepo, zerolog.Nop())
	_, err := uc.GetStatistics(context.Background(), admin, dto.ReportFilter{})
	assert.ErrorIs(t, err, boom)
}

func TestReports_Alcance(t *testing.T) {
	uc := reports.NewUseCase(new(MockOrderRepository), new(MockTransactionRepository), zerolog.Nop())
	ctx := context.Background()

	_, err := uc.GetMovementReport(ctx, member, dto.ReportFilter{OrganizationID: "org-2"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.GetMovementReport(ctx, member, dto.ReportFilter{StartDate: "01/02/2026"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.GetMovementReport(ctx, member, dto.ReportFilter{StartDate: "2026-03-01", EndDate: "2026-02-01"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.ListTransactions(ctx, member, dto.ReportFilter{Type: "TRANSFER"}, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetMovementReport_Neto(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	txnRepo.On("Movements", mock.Anything, mock.MatchedBy(func(f repository.TransactionFilter) bool {
		return f.OrganizationID == "" && f.LiteratureID == "lit-1"
	})).Return([]repository.MovementRow{
		{OrganizationID: "org-1", LiteratureID: "lit-1", Incoming: 50, Outgoing: 20, Adjustments: -3,
			IncomingAmount: decimal.NewFromInt(500), OutgoingAmount: decimal.NewFromInt(200)},
		{OrganizationID: "org-2", LiteratureID: "lit-1", Incoming: 20, Adjustments: 1,
			IncomingAmount: decimal.NewFromInt(200), OutgoingAmount: decimal.Zero},
	}, nil)

	uc := reports.NewUseCase(new(MockOrderRepository), txnRepo, zerolog.Nop())
	out, err := uc.GetMovementReport(context.Background(), admin, dto.ReportFilter{LiteratureID: "lit-1"})
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, 27, out.Rows[0].Net)
	assert.Equal(t, 21, out.Rows[1].Net)
	assert.Equal(t, 48, out.TotalNet)
}

func TestListTransactions_Paginacion(t *testing.T) {
	txnRepo := new(MockTransactionRepository)
	orderID := "o-1"
	txnRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.TransactionFilter) bool {
		return len(f.Types) == 1 && f.Types[0] == entity.TransactionTypeOutgoing && f.OrganizationID == "org-1"
	}), 20, 0).Return([]*entity.Transaction{
		{ID: "t-1", Type: entity.TransactionTypeOutgoing, OrganizationID: "org-1", LiteratureID: "lit-1", Quantity: 4, OrderID: &orderID},
	}, 1, nil)

	uc := reports.NewUseCase(new(MockOrderRepository), txnRepo, zerolog.Nop())
	out, err := uc.ListTransactions(context.Background(), member, dto.ReportFilter{Type: "outgoing"}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "t-1", out.Items[0].ID)
	assert.Equal(t, 1, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)
	txnRepo.AssertExpectations(t)
}
