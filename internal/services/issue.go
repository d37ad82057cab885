package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// IssueQuerier defines the interface for book issue database operations
type IssueQuerier interface {
	CreateIssue(ctx context.Context, arg queries.CreateIssueParams) (queries.BookIssue, error)
	GetIssueByID(ctx context.Context, id int32) (queries.BookIssue, error)
	ReturnIssue(ctx context.Context, arg queries.ReturnIssueParams) (queries.BookIssue, error)
	MarkIssueOverdue(ctx context.Context, id int32) (queries.BookIssue, error)
	ListIssues(ctx context.Context, arg queries.ListIssuesParams) ([]queries.ListIssuesRow, error)
	ListIssuesByUser(ctx context.Context, arg queries.ListIssuesByUserParams) ([]queries.ListIssuesByUserRow, error)
	ListOpenIssuesPastDue(ctx context.Context, cutoff pgtype.Timestamp) ([]queries.BookIssue, error)
	CountIssues(ctx context.Context, status string) (int64, error)
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
	GetPendingFineByIssue(ctx context.Context, issueID int32) (queries.Fine, error)
	CreateFine(ctx context.Context, arg queries.CreateFineParams) (queries.Fine, error)
	UpdatePendingFineAmount(ctx context.Context, arg queries.UpdatePendingFineAmountParams) (queries.Fine, error)
}

// RequestFulfiller is the slice of the request lifecycle the issue engine
// depends on: reading a request, marking it fulfilled at issue time, and
// rolling it back when issue creation fails after the fact.
type RequestFulfiller interface {
	GetRequestByID(ctx context.Context, id int32) (*models.RequestResponse, error)
	Fulfill(ctx context.Context, requestID int32) (*models.RequestResponse, error)
	Unfulfill(ctx context.Context, requestID int32) (*models.RequestResponse, error)
}

// FinePolicy carries the configured fine parameters. Rates vary by book
// category: reference material accrues at the higher reference rate.
type FinePolicy struct {
	DefaultLoanDays    int
	GracePeriodDays    int
	DailyRate          decimal.Decimal
	ReferenceDailyRate decimal.Decimal
	MaxFineAmount      decimal.Decimal
}

// IssueService creates BookIssue records from approved requests, computes
// due dates, and derives fine amounts from elapsed overdue days
type IssueService struct {
	querier   IssueQuerier
	inventory InventoryLedger
	requests  RequestFulfiller
	notifier  LifecycleNotifier
	clock     Clock
	logger    *slog.Logger
	policy    FinePolicy
}

// NewIssueService creates a new issue service
func NewIssueService(querier IssueQuerier, inventory InventoryLedger, requests RequestFulfiller, notifier LifecycleNotifier, clock Clock, logger *slog.Logger, policy FinePolicy) *IssueService {
	return &IssueService{
		querier:   querier,
		inventory: inventory,
		requests:  requests,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
		policy:    policy,
	}
}

// IssueBook hands a copy out against an approved request. The copy is
// reserved first; if anything after the reservation fails the copy is
// released again, so a failed issue leaves the ledger unchanged. On
// ErrOutOfStock the request stays approved and the issue is retryable.
func (s *IssueService) IssueBook(ctx context.Context, requestID, librarianID int32) (*models.IssueResponse, error) {
	request, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !models.IsValidRequestTransition(request.Status, models.RequestStatusFulfilled) {
		return nil, fmt.Errorf("request %d is %s, not approved: %w", requestID, request.Status, ErrInvalidTransition)
	}

	if err := s.inventory.ReserveCopy(ctx, request.BookID); err != nil {
		return nil, err
	}

	if _, err := s.requests.Fulfill(ctx, requestID); err != nil {
		s.releaseReserved(ctx, request.BookID)
		return nil, err
	}

	loanDays := int(request.RequestedDays)
	if loanDays <= 0 {
		loanDays = s.policy.DefaultLoanDays
	}
	issueDate := s.clock.Now()
	dueDate := issueDate.AddDate(0, 0, loanDays)

	issue, err := s.querier.CreateIssue(ctx, queries.CreateIssueParams{
		RequestID: pgtype.Int4{Int32: requestID, Valid: true},
		UserID:    request.UserID,
		BookID:    request.BookID,
		IssueDate: pgtype.Timestamp{Time: issueDate, Valid: true},
		DueDate:   pgtype.Timestamp{Time: dueDate, Valid: true},
		IssuedBy:  pgtype.Int4{Int32: librarianID, Valid: true},
	})
	if err != nil {
		s.releaseReserved(ctx, request.BookID)
		if _, revertErr := s.requests.Unfulfill(ctx, requestID); revertErr != nil {
			s.logger.Error("Failed to revert fulfilled request after issue failure",
				"request_id", requestID, "error", revertErr)
		}
		s.logger.Error("Issue creation failed after request was fulfilled",
			"request_id", requestID, "error", err)
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	s.notifier.NotifyEvent(ctx, request.UserID, models.NotificationBookIssued,
		"Book issued",
		fmt.Sprintf("Your book has been issued. It is due back on %s.", dueDate.Format("2006-01-02")))

	return convertToIssueResponse(issue), nil
}

// ReturnBook closes an open issue, releases the copy back to inventory, and
// when the return is late settles the final fine amount on the issue's
// pending fine.
func (s *IssueService) ReturnBook(ctx context.Context, issueID int32) (*models.ReturnBookResponse, error) {
	returnDate := s.clock.Now()

	issue, err := s.querier.ReturnIssue(ctx, queries.ReturnIssueParams{
		ID:         issueID,
		ReturnDate: pgtype.Timestamp{Time: returnDate, Valid: true},
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to return issue: %w", err)
		}
		current, getErr := s.querier.GetIssueByID(ctx, issueID)
		if getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, fmt.Errorf("issue %d: %w", issueID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get issue: %w", getErr)
		}
		if models.IsOpenIssueStatus(current.Status) {
			// The guarded update missed while the issue is still open, so a
			// concurrent return won the race.
			return nil, fmt.Errorf("issue %d changed during return, retry: %w", issueID, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("issue %d is already %s: %w", issueID, current.Status, ErrInvalidTransition)
	}

	if err := s.inventory.ReleaseCopy(ctx, issue.BookID); err != nil {
		return nil, err
	}

	response := &models.ReturnBookResponse{Issue: *convertToIssueResponse(issue)}

	if returnDate.After(issue.DueDate.Time) {
		book, err := s.querier.GetBookByID(ctx, issue.BookID)
		if err != nil {
			return nil, fmt.Errorf("failed to get book for fine calculation: %w", err)
		}

		amount := s.CalculateFine(issue.DueDate.Time, returnDate, book.Category)
		if amount.GreaterThan(decimal.Zero) {
			fine, err := s.upsertPendingFine(ctx, issueID, amount)
			if err != nil {
				return nil, fmt.Errorf("failed to record fine: %w", err)
			}
			fineResponse := convertToFineResponse(fine)
			response.Fine = &fineResponse

			s.notifier.NotifyEvent(ctx, issue.UserID, models.NotificationFineNotice,
				"Late return fine",
				fmt.Sprintf("Your late return has accrued a fine of %s.", amount.StringFixed(2)))
		}
	}

	s.notifier.NotifyEvent(ctx, issue.UserID, models.NotificationBookReturned,
		"Book returned", "Thank you for returning your book.")

	return response, nil
}

// CalculateFine derives the fine amount for an issue overdue as of the given
// date. Accrual starts after the configured grace period and is capped at
// the configured maximum. Repeated calls with the same asOf yield the same
// amount.
func (s *IssueService) CalculateFine(dueDate, asOf time.Time, category string) decimal.Decimal {
	daysOverdue := daysBetween(dueDate, asOf)
	if daysOverdue <= 0 {
		return decimal.Zero
	}

	billableDays := daysOverdue - s.policy.GracePeriodDays
	if billableDays <= 0 {
		return decimal.Zero
	}

	rate := s.policy.DailyRate
	if category == models.BookCategoryReference {
		rate = s.policy.ReferenceDailyRate
	}

	amount := rate.Mul(decimal.NewFromInt(int64(billableDays)))
	if amount.GreaterThan(s.policy.MaxFineAmount) {
		return s.policy.MaxFineAmount
	}
	return amount
}

// RecalculateOverdueFines is the periodic sweep: every open issue past its
// due date is marked overdue and has its pending fine brought up to date.
// The sweep is idempotent and never touches returned issues. Per-issue
// failures are logged and skipped so one bad row cannot stall the sweep.
func (s *IssueService) RecalculateOverdueFines(ctx context.Context) (*models.SweepResult, error) {
	now := s.clock.Now()

	issues, err := s.querier.ListOpenIssuesPastDue(ctx, pgtype.Timestamp{Time: now, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue issues: %w", err)
	}

	result := &models.SweepResult{TotalAccrued: decimal.Zero}
	for _, issue := range issues {
		if models.IsValidIssueTransition(issue.Status, models.IssueStatusOverdue) {
			if _, err := s.querier.MarkIssueOverdue(ctx, issue.ID); err != nil {
				// No row means the issue was returned or already marked
				// between the listing and the update.
				if !errors.Is(err, pgx.ErrNoRows) {
					s.logger.Error("Failed to mark issue overdue", "issue_id", issue.ID, "error", err)
					continue
				}
			} else {
				result.IssuesMarkedOverdue++
			}
		}

		book, err := s.querier.GetBookByID(ctx, issue.BookID)
		if err != nil {
			s.logger.Error("Failed to get book during fine sweep", "issue_id", issue.ID, "book_id", issue.BookID, "error", err)
			continue
		}

		amount := s.CalculateFine(issue.DueDate.Time, now, book.Category)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		if _, err := s.upsertPendingFine(ctx, issue.ID, amount); err != nil {
			s.logger.Error("Failed to upsert fine during sweep", "issue_id", issue.ID, "error", err)
			continue
		}
		result.FinesUpserted++
		result.TotalAccrued = result.TotalAccrued.Add(amount)

		s.notifier.NotifyEvent(ctx, issue.UserID, models.NotificationOverdueNotice,
			"Book overdue",
			fmt.Sprintf("Your book is overdue. The fine currently stands at %s.", amount.StringFixed(2)))
	}

	s.logger.Info("Overdue fine sweep completed",
		"issues_checked", len(issues),
		"marked_overdue", result.IssuesMarkedOverdue,
		"fines_upserted", result.FinesUpserted)

	return result, nil
}

// GetIssueByID retrieves an issue by ID
func (s *IssueService) GetIssueByID(ctx context.Context, id int32) (*models.IssueResponse, error) {
	issue, err := s.querier.GetIssueByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return convertToIssueResponse(issue), nil
}

// GetUserIssues retrieves a user's issues with pagination
func (s *IssueService) GetUserIssues(ctx context.Context, userID int32, limit, offset int32) ([]models.IssueResponse, error) {
	rows, err := s.querier.ListIssuesByUser(ctx, queries.ListIssuesByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user issues: %w", err)
	}

	responses := make([]models.IssueResponse, 0, len(rows))
	for _, row := range rows {
		response := *convertToIssueResponse(row.BookIssue)
		response.BookTitle = row.Title
		response.BookAuthor = row.Author
		responses = append(responses, response)
	}
	return responses, nil
}

// GetAllIssues retrieves issues with an optional status filter
func (s *IssueService) GetAllIssues(ctx context.Context, status string, limit, offset int32) ([]models.IssueResponse, int64, error) {
	if status != "" && !models.ValidateIssueStatus(status) {
		return nil, 0, fmt.Errorf("invalid status filter %q: %w", status, ErrValidation)
	}

	rows, err := s.querier.ListIssues(ctx, queries.ListIssuesParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get issues: %w", err)
	}

	total, err := s.querier.CountIssues(ctx, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	responses := make([]models.IssueResponse, 0, len(rows))
	for _, row := range rows {
		response := *convertToIssueResponse(row.BookIssue)
		response.BookTitle = row.Title
		response.BookAuthor = row.Author
		response.BorrowerName = row.Username
		responses = append(responses, response)
	}
	return responses, total, nil
}

// releaseReserved undoes a reservation after a later step failed. Failures
// here indicate a defect and are logged, not returned: the caller already
// has the original error.
func (s *IssueService) releaseReserved(ctx context.Context, bookID int32) {
	if err := s.inventory.ReleaseCopy(ctx, bookID); err != nil {
		s.logger.Error("Failed to release reserved copy after issue failure",
			"book_id", bookID, "error", err)
	}
}

// upsertPendingFine updates the issue's pending fine to the given amount,
// creating it when none exists. At most one pending fine per issue.
func (s *IssueService) upsertPendingFine(ctx context.Context, issueID int32, amount decimal.Decimal) (queries.Fine, error) {
	existing, err := s.querier.GetPendingFineByIssue(ctx, issueID)
	if err == nil {
		return s.querier.UpdatePendingFineAmount(ctx, queries.UpdatePendingFineAmountParams{
			ID:     existing.ID,
			Amount: numericFromDecimal(amount),
		})
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return queries.Fine{}, err
	}

	return s.querier.CreateFine(ctx, queries.CreateFineParams{
		IssueID: issueID,
		Amount:  numericFromDecimal(amount),
	})
}

// daysBetween returns whole calendar days from a to b, truncating both to
// midnight first.
func daysBetween(a, b time.Time) int {
	aMidnight := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bMidnight := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(bMidnight.Sub(aMidnight).Hours() / 24)
}

// numericFromDecimal converts a decimal amount to pgtype.Numeric with two
// decimal places.
func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	scaled := d.Shift(2)
	return pgtype.Numeric{
		Int:   scaled.BigInt(),
		Exp:   -2,
		Valid: true,
	}
}

// decimalFromNumeric converts a pgtype.Numeric back to a decimal amount
func decimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// convertToIssueResponse converts a queries.BookIssue to IssueResponse
func convertToIssueResponse(issue queries.BookIssue) *models.IssueResponse {
	response := &models.IssueResponse{
		ID:        issue.ID,
		UserID:    issue.UserID,
		BookID:    issue.BookID,
		Status:    issue.Status,
		IssueDate: issue.IssueDate.Time,
		DueDate:   issue.DueDate.Time,
		CreatedAt: issue.CreatedAt.Time,
		UpdatedAt: issue.UpdatedAt.Time,
	}

	if issue.RequestID.Valid {
		response.RequestID = &issue.RequestID.Int32
	}
	if issue.ReturnDate.Valid {
		response.ReturnDate = &issue.ReturnDate.Time
	}
	if issue.IssuedBy.Valid {
		response.IssuedBy = &issue.IssuedBy.Int32
	}

	return response
}
