package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// MockBookQuerier is a mock implementation of BookQuerier
type MockBookQuerier struct {
	mock.Mock
}

func (m *MockBookQuerier) CreateBook(ctx context.Context, arg queries.CreateBookParams) (queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) GetBookByID(ctx context.Context, id int32) (queries.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) GetBookByCode(ctx context.Context, bookCode string) (queries.Book, error) {
	args := m.Called(ctx, bookCode)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) UpdateBook(ctx context.Context, arg queries.UpdateBookParams) (queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(queries.Book), args.Error(1)
}

func (m *MockBookQuerier) SoftDeleteBook(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookQuerier) ListBooks(ctx context.Context, arg queries.ListBooksParams) ([]queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.Book), args.Error(1)
}

func (m *MockBookQuerier) SearchBooks(ctx context.Context, arg queries.SearchBooksParams) ([]queries.Book, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).([]queries.Book), args.Error(1)
}

func (m *MockBookQuerier) CountSearchBooks(ctx context.Context, arg queries.CountSearchBooksParams) (int64, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookQuerier) CountBooks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookQuerier) GetInventorySummary(ctx context.Context) (queries.GetInventorySummaryRow, error) {
	args := m.Called(ctx)
	return args.Get(0).(queries.GetInventorySummaryRow), args.Error(1)
}

func catalogBook() queries.Book {
	return queries.Book{
		ID:              3,
		BookCode:        "BK003",
		Title:           "The Go Programming Language",
		Author:          "Donovan",
		Category:        models.BookCategoryGeneral,
		TotalCopies:     pgtype.Int4{Int32: 4, Valid: true},
		AvailableCopies: pgtype.Int4{Int32: 2, Valid: true},
		IsActive:        pgtype.Bool{Bool: true, Valid: true},
	}
}

func TestBookService_CreateBook(t *testing.T) {
	validRequest := models.CreateBookRequest{
		BookCode:    "BK003",
		Title:       "The Go Programming Language",
		Author:      "Donovan",
		Category:    models.BookCategoryGeneral,
		TotalCopies: 4,
	}

	t.Run("creates a book with all copies available", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("GetBookByCode", mock.Anything, "BK003").Return(queries.Book{}, pgx.ErrNoRows)
		querier.On("CreateBook", mock.Anything, mock.MatchedBy(func(arg queries.CreateBookParams) bool {
			return arg.BookCode == "BK003" && arg.TotalCopies == 4
		})).Return(catalogBook(), nil)

		book, err := service.CreateBook(context.Background(), validRequest)
		require.NoError(t, err)
		assert.Equal(t, "BK003", book.BookCode)
		assert.Equal(t, models.BookStatusAvailable, book.Status)
	})

	t.Run("rejects a duplicate book code", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("GetBookByCode", mock.Anything, "BK003").Return(catalogBook(), nil)

		_, err := service.CreateBook(context.Background(), validRequest)
		assert.ErrorIs(t, err, ErrAlreadyExists)
		querier.AssertNotCalled(t, "CreateBook", mock.Anything, mock.Anything)
	})

	t.Run("rejects an invalid category", func(t *testing.T) {
		service := NewBookService(new(MockBookQuerier))

		invalid := validRequest
		invalid.Category = "encyclopedia"
		_, err := service.CreateBook(context.Background(), invalid)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBookService_UpdateBook(t *testing.T) {
	updateRequest := models.UpdateBookRequest{
		Title:       "The Go Programming Language",
		Author:      "Donovan",
		Category:    models.BookCategoryGeneral,
		TotalCopies: 6,
	}

	t.Run("raising total copies moves available by the same delta", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("GetBookByID", mock.Anything, int32(3)).Return(catalogBook(), nil)
		querier.On("UpdateBook", mock.Anything, mock.MatchedBy(func(arg queries.UpdateBookParams) bool {
			return arg.ID == 3 && arg.TotalCopies == 6 && arg.CopiesDelta == 2
		})).Return(queries.Book{
			ID:              3,
			BookCode:        "BK003",
			Title:           updateRequest.Title,
			Author:          updateRequest.Author,
			Category:        updateRequest.Category,
			TotalCopies:     pgtype.Int4{Int32: 6, Valid: true},
			AvailableCopies: pgtype.Int4{Int32: 4, Valid: true},
			IsActive:        pgtype.Bool{Bool: true, Valid: true},
		}, nil)

		book, err := service.UpdateBook(context.Background(), 3, updateRequest)
		require.NoError(t, err)
		assert.Equal(t, int32(6), book.TotalCopies)
		assert.Equal(t, int32(4), book.AvailableCopies)
	})

	t.Run("cannot cut total copies below those on loan", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		// 2 of 4 copies are on loan; reducing to 1 must fail
		reduced := updateRequest
		reduced.TotalCopies = 1
		querier.On("GetBookByID", mock.Anything, int32(3)).Return(catalogBook(), nil)
		querier.On("UpdateBook", mock.Anything, mock.Anything).Return(queries.Book{}, pgx.ErrNoRows)

		_, err := service.UpdateBook(context.Background(), 3, reduced)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "on loan")
	})

	t.Run("updating an unknown book fails", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("GetBookByID", mock.Anything, int32(3)).Return(queries.Book{}, pgx.ErrNoRows)

		_, err := service.UpdateBook(context.Background(), 3, updateRequest)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBookService_DeleteBook(t *testing.T) {
	t.Run("soft deletes an existing book", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("GetBookByID", mock.Anything, int32(3)).Return(catalogBook(), nil)
		querier.On("SoftDeleteBook", mock.Anything, int32(3)).Return(nil)

		require.NoError(t, service.DeleteBook(context.Background(), 3))
		querier.AssertExpectations(t)
	})

	t.Run("deleting an unknown book fails", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("GetBookByID", mock.Anything, int32(3)).Return(queries.Book{}, pgx.ErrNoRows)

		err := service.DeleteBook(context.Background(), 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBookService_SearchBooks(t *testing.T) {
	t.Run("totals reflect all matches, not just the returned page", func(t *testing.T) {
		querier := new(MockBookQuerier)
		service := NewBookService(querier)

		querier.On("SearchBooks", mock.Anything, queries.SearchBooksParams{
			Query: "go", Category: "", Limit: 2, Offset: 2,
		}).Return([]queries.Book{catalogBook()}, nil)
		querier.On("CountSearchBooks", mock.Anything, queries.CountSearchBooksParams{
			Query: "go", Category: "",
		}).Return(int64(5), nil)

		result, err := service.SearchBooks(context.Background(), models.BookSearchRequest{
			Query: "go", Page: 2, Limit: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), result.Total)
		assert.Equal(t, 3, result.TotalPages)
		assert.Len(t, result.Books, 1)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		service := NewBookService(new(MockBookQuerier))

		_, err := service.SearchBooks(context.Background(), models.BookSearchRequest{
			Query: "go", Category: "cookbooks",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestBookService_GetBookStats(t *testing.T) {
	querier := new(MockBookQuerier)
	service := NewBookService(querier)

	querier.On("GetInventorySummary", mock.Anything).Return(queries.GetInventorySummaryRow{
		TotalBooks:      10,
		TotalCopies:     40,
		AvailableCopies: 25,
	}, nil)

	stats, err := service.GetBookStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), stats.CopiesOnLoan)
}

func TestConvertToBookResponse_Status(t *testing.T) {
	tests := []struct {
		name      string
		available int32
		active    bool
		want      string
	}{
		{"copies available", 2, true, models.BookStatusAvailable},
		{"all copies out", 0, true, models.BookStatusUnavailable},
		{"inactive wins over availability", 2, false, models.BookStatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := catalogBook()
			book.AvailableCopies = pgtype.Int4{Int32: tt.available, Valid: true}
			book.IsActive = pgtype.Bool{Bool: tt.active, Valid: true}
			assert.Equal(t, tt.want, convertToBookResponse(book).Status)
		})
	}
}
