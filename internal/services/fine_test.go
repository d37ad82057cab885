package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// MockFineQuerier is a mock implementation of FineQuerier
type MockFineQuerier struct {
	mock.Mock
}

func (m *MockFineQuerier) GetFineByID(ctx context.Context, id int32) (queries.Fine, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Fine), args.Error(1)
}

func (m *MockFineQuerier) GetFineWithOwner(ctx context.Context, id int32) (queries.GetFineWithOwnerRow, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.GetFineWithOwnerRow), args.Error(1)
}

func (m *MockFineQuerier) ResolveFine(ctx context.Context, arg queries.ResolveFineParams) (queries.Fine, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Fine), args.Error(1)
}

func (m *MockFineQuerier) ListFines(ctx context.Context, arg queries.ListFinesParams) ([]queries.Fine, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.Fine), args.Error(1)
}

func (m *MockFineQuerier) ListFinesByUser(ctx context.Context, arg queries.ListFinesByUserParams) ([]queries.Fine, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.Fine), args.Error(1)
}

func (m *MockFineQuerier) CountFines(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func newTestFineService(querier *MockFineQuerier) *FineService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	return NewFineService(querier, FixedClock{Time: now}, logger, 10)
}

func pendingFine() queries.Fine {
	return queries.Fine{
		ID:      9,
		IssueID: 5,
		Amount:  numericFromDecimal(decimal.NewFromFloat(11.50)),
		Status:  models.FineStatusPending,
	}
}

func TestFineService_PayFine(t *testing.T) {
	t.Run("pays a pending fine", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		paid := pendingFine()
		paid.Status = models.FineStatusPaid
		querier.On("ResolveFine", mock.Anything, mock.MatchedBy(func(arg queries.ResolveFineParams) bool {
			return arg.ID == 9 &&
				arg.Status == models.FineStatusPaid &&
				arg.Method.String == models.PaymentMethodCash
		})).Return(paid, nil)

		fine, err := service.PayFine(context.Background(), 9, models.PaymentMethodCash)
		require.NoError(t, err)
		assert.Equal(t, models.FineStatusPaid, fine.Status)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		service := newTestFineService(new(MockFineQuerier))

		_, err := service.PayFine(context.Background(), 9, "barter")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("paying a resolved fine fails", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		waived := pendingFine()
		waived.Status = models.FineStatusWaived
		querier.On("ResolveFine", mock.Anything, mock.Anything).Return(queries.Fine{}, pgx.ErrNoRows)
		querier.On("GetFineByID", mock.Anything, int32(9)).Return(waived, nil)

		_, err := service.PayFine(context.Background(), 9, models.PaymentMethodCash)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("paying an unknown fine fails", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		querier.On("ResolveFine", mock.Anything, mock.Anything).Return(queries.Fine{}, pgx.ErrNoRows)
		querier.On("GetFineByID", mock.Anything, int32(9)).Return(queries.Fine{}, pgx.ErrNoRows)

		_, err := service.PayFine(context.Background(), 9, models.PaymentMethodCash)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFineService_WaiveFine(t *testing.T) {
	t.Run("waives with a substantive reason", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		waived := pendingFine()
		waived.Status = models.FineStatusWaived
		querier.On("ResolveFine", mock.Anything, mock.MatchedBy(func(arg queries.ResolveFineParams) bool {
			return arg.ID == 9 &&
				arg.Status == models.FineStatusWaived &&
				arg.WaiveReason.String == "book was damaged before loan" &&
				arg.ResolvedBy.Int32 == 99
		})).Return(waived, nil)

		fine, err := service.WaiveFine(context.Background(), 9, "book was damaged before loan", 99)
		require.NoError(t, err)
		assert.Equal(t, models.FineStatusWaived, fine.Status)
	})

	t.Run("rejects a reason below the minimum length", func(t *testing.T) {
		service := newTestFineService(new(MockFineQuerier))

		_, err := service.WaiveFine(context.Background(), 9, "ok", 99)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("whitespace does not count toward the minimum", func(t *testing.T) {
		service := newTestFineService(new(MockFineQuerier))

		_, err := service.WaiveFine(context.Background(), 9, "   ok        ", 99)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("waiving a paid fine fails", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		paid := pendingFine()
		paid.Status = models.FineStatusPaid
		querier.On("ResolveFine", mock.Anything, mock.Anything).Return(queries.Fine{}, pgx.ErrNoRows)
		querier.On("GetFineByID", mock.Anything, int32(9)).Return(paid, nil)

		_, err := service.WaiveFine(context.Background(), 9, "book was damaged before loan", 99)
		assert.ErrorIs(t, err, ErrAlreadyResolved)
	})
}

func TestFineService_GetFineByID(t *testing.T) {
	t.Run("carries the borrower who owes the fine", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		querier.On("GetFineWithOwner", mock.Anything, int32(9)).Return(queries.GetFineWithOwnerRow{
			Fine:   pendingFine(),
			UserID: 42,
		}, nil)

		fine, err := service.GetFineByID(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, int32(42), fine.UserID)
		assert.Equal(t, "11.50", fine.Amount.StringFixed(2))
	})

	t.Run("unknown fine maps to not found", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		querier.On("GetFineWithOwner", mock.Anything, int32(77)).
			Return(queries.GetFineWithOwnerRow{}, pgx.ErrNoRows)

		_, err := service.GetFineByID(context.Background(), 77)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestFineService_GetAllFines(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		querier := new(MockFineQuerier)
		service := newTestFineService(querier)

		querier.On("ListFines", mock.Anything, queries.ListFinesParams{
			Status: models.FineStatusPending, Limit: 20, Offset: 0,
		}).Return([]queries.Fine{pendingFine()}, nil)
		querier.On("CountFines", mock.Anything, models.FineStatusPending).Return(int64(1), nil)

		fines, total, err := service.GetAllFines(context.Background(), models.FineStatusPending, 20, 0)
		require.NoError(t, err)
		assert.Len(t, fines, 1)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "11.50", fines[0].Amount.StringFixed(2))
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		service := newTestFineService(new(MockFineQuerier))

		_, _, err := service.GetAllFines(context.Background(), "overdue", 20, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
