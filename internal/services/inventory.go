package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/kibetdev/ulms/internal/database/queries"
)

// InventoryQuerier defines the interface for inventory database operations
type InventoryQuerier interface {
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
	ReserveBookCopy(ctx context.Context, id int32) (queries.Book, error)
	ReleaseBookCopy(ctx context.Context, id int32) (queries.Book, error)
}

// InventoryLedger is the copy-count contract consumed by the issue engine
type InventoryLedger interface {
	ReserveCopy(ctx context.Context, bookID int32) error
	ReleaseCopy(ctx context.Context, bookID int32) error
}

// InventoryService owns the available_copies ledger. Copy counts move only
// through ReserveCopy and ReleaseCopy; book CRUD never touches them directly.
type InventoryService struct {
	querier InventoryQuerier
	logger  *slog.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(querier InventoryQuerier, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		querier: querier,
		logger:  logger,
	}
}

// ReserveCopy hands one copy out. The decrement is a single conditional
// UPDATE guarded by available_copies > 0, so two concurrent reservations of
// the last copy resolve to one success and one ErrOutOfStock.
func (s *InventoryService) ReserveCopy(ctx context.Context, bookID int32) error {
	_, err := s.querier.ReserveBookCopy(ctx, bookID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to reserve copy: %w", err)
	}

	// The guarded update matched nothing: either the book is gone or the
	// last copy is already out.
	if _, lookupErr := s.querier.GetBookByID(ctx, bookID); lookupErr != nil {
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return fmt.Errorf("failed to look up book: %w", lookupErr)
	}

	return fmt.Errorf("book %d: %w", bookID, ErrOutOfStock)
}

// ReleaseCopy puts one copy back. A release that would push available above
// total means the ledger and the issue records have diverged; that is
// reported as ErrInvariantViolation and logged loudly, never swallowed.
func (s *InventoryService) ReleaseCopy(ctx context.Context, bookID int32) error {
	_, err := s.querier.ReleaseBookCopy(ctx, bookID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to release copy: %w", err)
	}

	book, lookupErr := s.querier.GetBookByID(ctx, bookID)
	if lookupErr != nil {
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
		}
		return fmt.Errorf("failed to look up book: %w", lookupErr)
	}

	s.logger.Error("Copy release would exceed total copies",
		"book_id", bookID,
		"available_copies", book.AvailableCopies.Int32,
		"total_copies", book.TotalCopies.Int32,
	)
	return fmt.Errorf("book %d: %w", bookID, ErrInvariantViolation)
}
