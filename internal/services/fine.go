package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// FineQuerier defines the interface for fine database operations
type FineQuerier interface {
	GetFineByID(ctx context.Context, id int32) (queries.Fine, error)
	GetFineWithOwner(ctx context.Context, id int32) (queries.GetFineWithOwnerRow, error)
	ResolveFine(ctx context.Context, arg queries.ResolveFineParams) (queries.Fine, error)
	ListFines(ctx context.Context, arg queries.ListFinesParams) ([]queries.Fine, error)
	ListFinesByUser(ctx context.Context, arg queries.ListFinesByUserParams) ([]queries.Fine, error)
	CountFines(ctx context.Context, status string) (int64, error)
}

// FineService resolves fines: payment by the borrower, waiver by a librarian
type FineService struct {
	querier         FineQuerier
	clock           Clock
	logger          *slog.Logger
	minWaiverReason int
}

// NewFineService creates a new fine service
func NewFineService(querier FineQuerier, clock Clock, logger *slog.Logger, minWaiverReason int) *FineService {
	return &FineService{
		querier:         querier,
		clock:           clock,
		logger:          logger,
		minWaiverReason: minWaiverReason,
	}
}

// PayFine marks a pending fine as paid with the given payment method
func (s *FineService) PayFine(ctx context.Context, fineID int32, method string) (*models.FineResponse, error) {
	if !models.ValidatePaymentMethod(method) {
		return nil, fmt.Errorf("invalid payment method %q: %w", method, ErrValidation)
	}

	fine, err := s.resolve(ctx, queries.ResolveFineParams{
		ID:         fineID,
		Status:     models.FineStatusPaid,
		Method:     pgtype.Text{String: method, Valid: true},
		ResolvedAt: pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fine paid", "fine_id", fineID, "method", method)
	response := convertToFineResponse(fine)
	return &response, nil
}

// WaiveFine marks a pending fine as waived. The reason is recorded and must
// meet the configured minimum length.
func (s *FineService) WaiveFine(ctx context.Context, fineID int32, reason string, librarianID int32) (*models.FineResponse, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < s.minWaiverReason {
		return nil, fmt.Errorf("waiver reason must be at least %d characters: %w", s.minWaiverReason, ErrValidation)
	}

	fine, err := s.resolve(ctx, queries.ResolveFineParams{
		ID:          fineID,
		Status:      models.FineStatusWaived,
		WaiveReason: pgtype.Text{String: reason, Valid: true},
		ResolvedBy:  pgtype.Int4{Int32: librarianID, Valid: true},
		ResolvedAt:  pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fine waived", "fine_id", fineID, "librarian_id", librarianID)
	response := convertToFineResponse(fine)
	return &response, nil
}

// GetFineByID retrieves a fine by ID with the borrower who owes it
func (s *FineService) GetFineByID(ctx context.Context, id int32) (*models.FineResponse, error) {
	row, err := s.querier.GetFineWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("fine %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get fine: %w", err)
	}
	response := convertToFineResponse(row.Fine)
	response.UserID = row.UserID
	return &response, nil
}

// GetAllFines retrieves fines with an optional status filter
func (s *FineService) GetAllFines(ctx context.Context, status string, limit, offset int32) ([]models.FineResponse, int64, error) {
	if status != "" && !models.ValidateFineStatus(status) {
		return nil, 0, fmt.Errorf("invalid status filter %q: %w", status, ErrValidation)
	}

	fines, err := s.querier.ListFines(ctx, queries.ListFinesParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get fines: %w", err)
	}

	total, err := s.querier.CountFines(ctx, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count fines: %w", err)
	}

	responses := make([]models.FineResponse, 0, len(fines))
	for _, fine := range fines {
		responses = append(responses, convertToFineResponse(fine))
	}
	return responses, total, nil
}

// GetUserFines retrieves all fines for a user's issues
func (s *FineService) GetUserFines(ctx context.Context, userID int32, limit, offset int32) ([]models.FineResponse, error) {
	fines, err := s.querier.ListFinesByUser(ctx, queries.ListFinesByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user fines: %w", err)
	}

	responses := make([]models.FineResponse, 0, len(fines))
	for _, fine := range fines {
		responses = append(responses, convertToFineResponse(fine))
	}
	return responses, nil
}

// resolve runs the guarded pending-only update and maps a miss to
// ErrAlreadyResolved or ErrNotFound.
func (s *FineService) resolve(ctx context.Context, arg queries.ResolveFineParams) (queries.Fine, error) {
	fine, err := s.querier.ResolveFine(ctx, arg)
	if err == nil {
		return fine, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return queries.Fine{}, fmt.Errorf("failed to resolve fine: %w", err)
	}

	current, getErr := s.querier.GetFineByID(ctx, arg.ID)
	if getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return queries.Fine{}, fmt.Errorf("fine %d: %w", arg.ID, ErrNotFound)
		}
		return queries.Fine{}, fmt.Errorf("failed to get fine: %w", getErr)
	}
	if models.IsResolvedFineStatus(current.Status) {
		return queries.Fine{}, fmt.Errorf("fine %d is already %s: %w", arg.ID, current.Status, ErrAlreadyResolved)
	}
	return queries.Fine{}, fmt.Errorf("fine %d changed concurrently, retry: %w", arg.ID, ErrAlreadyResolved)
}

// convertToFineResponse converts a queries.Fine to FineResponse
func convertToFineResponse(fine queries.Fine) models.FineResponse {
	response := models.FineResponse{
		ID:        fine.ID,
		IssueID:   fine.IssueID,
		Amount:    decimalFromNumeric(fine.Amount),
		Status:    fine.Status,
		CreatedAt: fine.CreatedAt.Time,
		UpdatedAt: fine.UpdatedAt.Time,
	}

	if fine.Method.Valid {
		response.Method = fine.Method.String
	}
	if fine.WaiveReason.Valid {
		response.WaiveReason = fine.WaiveReason.String
	}
	if fine.ResolvedBy.Valid {
		response.ResolvedBy = &fine.ResolvedBy.Int32
	}
	if fine.ResolvedAt.Valid {
		response.ResolvedAt = &fine.ResolvedAt.Time
	}

	return response
}
