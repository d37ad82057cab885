package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// MockReportQuerier is a mock implementation of ReportQuerier
type MockReportQuerier struct {
	mock.Mock
}

func (m *MockReportQuerier) GetInventorySummary(ctx context.Context) (queries.GetInventorySummaryRow, error) {
	args := m.Called(ctx)
	return args.Get(0).(queries.GetInventorySummaryRow), args.Error(1)
}

func (m *MockReportQuerier) GetFineTotalsByStatus(ctx context.Context) ([]queries.GetFineTotalsByStatusRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]queries.GetFineTotalsByStatusRow), args.Error(1)
}

func (m *MockReportQuerier) ListOverdueIssuesReport(ctx context.Context, cutoff pgtype.Timestamp) ([]queries.ListOverdueIssuesReportRow, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]queries.ListOverdueIssuesReportRow), args.Error(1)
}

func newTestReportService(querier ReportQuerier, now time.Time) *ReportService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewReportService(querier, FixedClock{Time: now}, logger)
}

func TestReportService_GetInventoryReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	querier := new(MockReportQuerier)
	service := newTestReportService(querier, now)

	querier.On("GetInventorySummary", mock.Anything).Return(queries.GetInventorySummaryRow{
		TotalBooks:      12,
		TotalCopies:     48,
		AvailableCopies: 31,
	}, nil)

	report, err := service.GetInventoryReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), report.TotalBooks)
	assert.Equal(t, int64(17), report.CopiesOnLoan)
	assert.Equal(t, now, report.GeneratedAt)
}

func TestReportService_GetFineReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	numeric := func(amount string) pgtype.Numeric {
		return numericFromDecimal(decimal.RequireFromString(amount))
	}

	t.Run("groups counts and amounts by status", func(t *testing.T) {
		querier := new(MockReportQuerier)
		service := newTestReportService(querier, now)

		querier.On("GetFineTotalsByStatus", mock.Anything).Return([]queries.GetFineTotalsByStatusRow{
			{Status: models.FineStatusPending, Count: 3, Total: numeric("34.50")},
			{Status: models.FineStatusPaid, Count: 5, Total: numeric("12.00")},
			{Status: models.FineStatusWaived, Count: 1, Total: numeric("0.50")},
		}, nil)

		report, err := service.GetFineReport(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), report.PendingCount)
		assert.True(t, report.PendingAmount.Equal(decimal.RequireFromString("34.50")))
		assert.Equal(t, int64(5), report.PaidCount)
		assert.True(t, report.PaidAmount.Equal(decimal.RequireFromString("12.00")))
		assert.True(t, report.WaivedAmount.Equal(decimal.RequireFromString("0.50")))
	})

	t.Run("an unknown status is skipped, not fatal", func(t *testing.T) {
		querier := new(MockReportQuerier)
		service := newTestReportService(querier, now)

		querier.On("GetFineTotalsByStatus", mock.Anything).Return([]queries.GetFineTotalsByStatusRow{
			{Status: "disputed", Count: 2, Total: numeric("9.00")},
			{Status: models.FineStatusPending, Count: 1, Total: numeric("11.50")},
		}, nil)

		report, err := service.GetFineReport(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), report.PendingCount)
		assert.True(t, report.PendingAmount.Equal(decimal.RequireFromString("11.50")))
	})
}

func TestReportService_GetOverdueReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	querier := new(MockReportQuerier)
	service := newTestReportService(querier, now)

	dueDate := time.Date(2025, 3, 5, 17, 0, 0, 0, time.UTC)
	querier.On("ListOverdueIssuesReport", mock.Anything, mock.MatchedBy(func(cutoff pgtype.Timestamp) bool {
		return cutoff.Valid && cutoff.Time.Equal(now)
	})).Return([]queries.ListOverdueIssuesReportRow{
		{
			IssueID:  9,
			BookID:   3,
			Title:    "The Go Programming Language",
			UserID:   7,
			Username: "jomo",
			DueDate:  pgtype.Timestamp{Time: dueDate, Valid: true},
		},
	}, nil)

	report, err := service.GetOverdueReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Total)
	entry := report.Entries[0]
	assert.Equal(t, "jomo", entry.BorrowerName)
	assert.Equal(t, 5, entry.DaysOverdue)
}
