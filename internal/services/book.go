package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// BookQuerier defines the interface for book catalog database operations
type BookQuerier interface {
	CreateBook(ctx context.Context, arg queries.CreateBookParams) (queries.Book, error)
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
	GetBookByCode(ctx context.Context, bookCode string) (queries.Book, error)
	UpdateBook(ctx context.Context, arg queries.UpdateBookParams) (queries.Book, error)
	SoftDeleteBook(ctx context.Context, id int32) error
	ListBooks(ctx context.Context, arg queries.ListBooksParams) ([]queries.Book, error)
	SearchBooks(ctx context.Context, arg queries.SearchBooksParams) ([]queries.Book, error)
	CountSearchBooks(ctx context.Context, arg queries.CountSearchBooksParams) (int64, error)
	CountBooks(ctx context.Context) (int64, error)
	GetInventorySummary(ctx context.Context) (queries.GetInventorySummaryRow, error)
}

// BookService handles catalog CRUD. It never mutates available_copies
// directly except through the total-copies delta on edit, which keeps copies
// on loan accounted for; lending mutations go through the inventory ledger.
type BookService struct {
	querier BookQuerier
}

// NewBookService creates a new book service
func NewBookService(querier BookQuerier) *BookService {
	return &BookService{
		querier: querier,
	}
}

// CreateBook adds a book to the catalog with all copies available
func (s *BookService) CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.BookResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	// Reject duplicate book codes up front for a clearer error
	if _, err := s.querier.GetBookByCode(ctx, req.BookCode); err == nil {
		return nil, fmt.Errorf("book with code %s already exists: %w", req.BookCode, ErrAlreadyExists)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check book code: %w", err)
	}

	var isbn pgtype.Text
	if req.ISBN != nil && *req.ISBN != "" {
		isbn = pgtype.Text{String: *req.ISBN, Valid: true}
	}

	book, err := s.querier.CreateBook(ctx, queries.CreateBookParams{
		BookCode:    req.BookCode,
		Title:       req.Title,
		Author:      req.Author,
		Isbn:        isbn,
		Category:    req.Category,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	response := convertToBookResponse(book)
	return &response, nil
}

// GetBookByID retrieves a book by its numeric ID
func (s *BookService) GetBookByID(ctx context.Context, id int32) (*models.BookResponse, error) {
	book, err := s.querier.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	response := convertToBookResponse(book)
	return &response, nil
}

// GetBookByCode retrieves a book by its catalog code
func (s *BookService) GetBookByCode(ctx context.Context, bookCode string) (*models.BookResponse, error) {
	book, err := s.querier.GetBookByCode(ctx, bookCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %s: %w", bookCode, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	response := convertToBookResponse(book)
	return &response, nil
}

// UpdateBook updates catalog details. A change to total_copies moves
// available_copies by the same delta; the update fails when that would strand
// more copies on loan than the new total allows.
func (s *BookService) UpdateBook(ctx context.Context, id int32, req models.UpdateBookRequest) (*models.BookResponse, error) {
	if !models.IsValidBookCategory(req.Category) {
		return nil, fmt.Errorf("invalid category %q: %w", req.Category, ErrValidation)
	}

	current, err := s.querier.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	var isbn pgtype.Text
	if req.ISBN != nil && *req.ISBN != "" {
		isbn = pgtype.Text{String: *req.ISBN, Valid: true}
	}

	delta := req.TotalCopies - current.TotalCopies.Int32
	book, err := s.querier.UpdateBook(ctx, queries.UpdateBookParams{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		Isbn:        isbn,
		Category:    req.Category,
		TotalCopies: req.TotalCopies,
		CopiesDelta: delta,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			onLoan := current.TotalCopies.Int32 - current.AvailableCopies.Int32
			return nil, fmt.Errorf("cannot reduce total_copies below the %d copies currently on loan: %w", onLoan, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	response := convertToBookResponse(book)
	return &response, nil
}

// DeleteBook soft-deletes a book from the catalog
func (s *BookService) DeleteBook(ctx context.Context, id int32) error {
	if _, err := s.querier.GetBookByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("book %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to get book: %w", err)
	}

	if err := s.querier.SoftDeleteBook(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// ListBooks retrieves the catalog with pagination
func (s *BookService) ListBooks(ctx context.Context, page, limit int) (*models.BookListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	books, err := s.querier.ListBooks(ctx, queries.ListBooksParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	total, err := s.querier.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	return buildBookListResponse(books, total, page, limit), nil
}

// SearchBooks searches the catalog by title, author or ISBN, optionally
// filtered by category
func (s *BookService) SearchBooks(ctx context.Context, req models.BookSearchRequest) (*models.BookListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Category != "" && !models.IsValidBookCategory(req.Category) {
		return nil, fmt.Errorf("invalid category %q: %w", req.Category, ErrValidation)
	}
	offset := (req.Page - 1) * req.Limit

	books, err := s.querier.SearchBooks(ctx, queries.SearchBooksParams{
		Query:    req.Query,
		Category: req.Category,
		Limit:    int32(req.Limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	total, err := s.querier.CountSearchBooks(ctx, queries.CountSearchBooksParams{
		Query:    req.Query,
		Category: req.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	return buildBookListResponse(books, total, req.Page, req.Limit), nil
}

// GetBookStats returns catalog-wide inventory statistics
func (s *BookService) GetBookStats(ctx context.Context) (*models.BookStats, error) {
	summary, err := s.querier.GetInventorySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory summary: %w", err)
	}

	return &models.BookStats{
		TotalBooks:      summary.TotalBooks,
		TotalCopies:     summary.TotalCopies,
		AvailableCopies: summary.AvailableCopies,
		CopiesOnLoan:    summary.TotalCopies - summary.AvailableCopies,
	}, nil
}

func buildBookListResponse(books []queries.Book, total int64, page, limit int) *models.BookListResponse {
	responses := make([]models.BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, convertToBookResponse(book))
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &models.BookListResponse{
		Books:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// convertToBookResponse converts a queries.Book to BookResponse
func convertToBookResponse(book queries.Book) models.BookResponse {
	response := models.BookResponse{
		ID:        book.ID,
		BookCode:  book.BookCode,
		Title:     book.Title,
		Author:    book.Author,
		Category:  book.Category,
		CreatedAt: book.CreatedAt.Time,
		UpdatedAt: book.UpdatedAt.Time,
	}

	if book.Isbn.Valid {
		response.ISBN = &book.Isbn.String
	}
	if book.TotalCopies.Valid {
		response.TotalCopies = book.TotalCopies.Int32
	}
	if book.AvailableCopies.Valid {
		response.AvailableCopies = book.AvailableCopies.Int32
	}
	if book.IsActive.Valid {
		response.IsActive = book.IsActive.Bool
	}

	switch {
	case !response.IsActive:
		response.Status = models.BookStatusInactive
	case response.AvailableCopies > 0:
		response.Status = models.BookStatusAvailable
	default:
		response.Status = models.BookStatusUnavailable
	}

	return response
}
