package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// RequestQuerier defines the interface for book request database operations
type RequestQuerier interface {
	CreateRequest(ctx context.Context, arg queries.CreateRequestParams) (queries.BookRequest, error)
	GetRequestByID(ctx context.Context, id int32) (queries.BookRequest, error)
	GetOpenRequestForUserBook(ctx context.Context, arg queries.GetOpenRequestForUserBookParams) (queries.BookRequest, error)
	CountOpenRequestsByUser(ctx context.Context, userID int32) (int64, error)
	TransitionRequestStatus(ctx context.Context, arg queries.TransitionRequestStatusParams) (queries.BookRequest, error)
	ListRequests(ctx context.Context, arg queries.ListRequestsParams) ([]queries.ListRequestsRow, error)
	ListRequestsByUser(ctx context.Context, arg queries.ListRequestsByUserParams) ([]queries.ListRequestsByUserRow, error)
	CountRequests(ctx context.Context, status string) (int64, error)
	GetBookByID(ctx context.Context, id int32) (queries.Book, error)
}

// LifecycleNotifier hands lifecycle events to the notification dispatch.
// Dispatch is fire-and-forget: failures are logged by the implementation and
// never roll back the transition that triggered them.
type LifecycleNotifier interface {
	NotifyEvent(ctx context.Context, recipientID int32, eventType models.NotificationType, title, message string)
}

// RequestService owns BookRequest records and their status transitions
type RequestService struct {
	querier         RequestQuerier
	notifier        LifecycleNotifier
	clock           Clock
	logger          *slog.Logger
	maxOpenRequests int
}

// NewRequestService creates a new request service
func NewRequestService(querier RequestQuerier, notifier LifecycleNotifier, clock Clock, logger *slog.Logger, maxOpenRequests int) *RequestService {
	return &RequestService{
		querier:         querier,
		notifier:        notifier,
		clock:           clock,
		logger:          logger,
		maxOpenRequests: maxOpenRequests,
	}
}

// Submit creates a pending request for a book on behalf of a user. A user can
// hold at most one open (pending or approved) request per book.
func (s *RequestService) Submit(ctx context.Context, userID int32, req *models.SubmitRequestRequest) (*models.RequestResponse, error) {
	priority := req.Priority
	if priority == "" {
		priority = models.RequestPriorityNormal
	}
	if !models.ValidateRequestPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q: %w", priority, ErrValidation)
	}

	book, err := s.querier.GetBookByID(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %d: %w", req.BookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	if !book.IsActive.Bool {
		return nil, fmt.Errorf("book %d is not active: %w", req.BookID, ErrNotFound)
	}

	_, err = s.querier.GetOpenRequestForUserBook(ctx, queries.GetOpenRequestForUserBookParams{
		UserID: userID,
		BookID: req.BookID,
	})
	if err == nil {
		return nil, fmt.Errorf("user %d already has an open request for book %d: %w", userID, req.BookID, ErrDuplicateRequest)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing requests: %w", err)
	}

	openCount, err := s.querier.CountOpenRequestsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count open requests: %w", err)
	}
	if openCount >= int64(s.maxOpenRequests) {
		return nil, fmt.Errorf("user has reached the maximum of %d open requests: %w", s.maxOpenRequests, ErrValidation)
	}

	request, err := s.querier.CreateRequest(ctx, queries.CreateRequestParams{
		UserID:        userID,
		BookID:        req.BookID,
		Priority:      priority,
		RequestedDays: pgtype.Int4{Int32: req.RequestedDays, Valid: req.RequestedDays > 0},
		Notes:         pgtype.Text{String: req.Notes, Valid: req.Notes != ""},
		RequestDate:   pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.notifier.NotifyEvent(ctx, userID, models.NotificationRequestSubmitted,
		"Request received",
		fmt.Sprintf("Your request for %q has been received and is awaiting review.", book.Title))

	return convertToRequestResponse(request), nil
}

// Cancel cancels a pending request. Only the owning user may cancel, and only
// while the request is still pending.
func (s *RequestService) Cancel(ctx context.Context, requestID, userID int32) (*models.RequestResponse, error) {
	request, err := s.querier.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if request.UserID != userID {
		return nil, fmt.Errorf("request %d belongs to another user: %w", requestID, ErrForbidden)
	}

	if !models.IsValidRequestTransition(request.Status, models.RequestStatusCancelled) {
		return nil, fmt.Errorf("request %d is %s, not pending: %w", requestID, request.Status, ErrInvalidTransition)
	}

	updated, err := s.querier.TransitionRequestStatus(ctx, queries.TransitionRequestStatusParams{
		ID:             requestID,
		ExpectedStatus: models.RequestStatusPending,
		NewStatus:      models.RequestStatusCancelled,
		ProcessedDate:  pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request %d is %s, not pending: %w", requestID, request.Status, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("failed to cancel request: %w", err)
	}

	return convertToRequestResponse(updated), nil
}

// Process approves or rejects a pending request on behalf of a librarian.
// Approval does not reserve inventory; the copy is reserved at issue time.
func (s *RequestService) Process(ctx context.Context, requestID int32, newStatus, adminNotes string, librarianID int32) (*models.RequestResponse, error) {
	if newStatus != models.RequestStatusApproved && newStatus != models.RequestStatusRejected {
		return nil, fmt.Errorf("status must be approved or rejected, got %q: %w", newStatus, ErrValidation)
	}

	updated, err := s.querier.TransitionRequestStatus(ctx, queries.TransitionRequestStatusParams{
		ID:             requestID,
		ExpectedStatus: models.RequestStatusPending,
		NewStatus:      newStatus,
		AdminNotes:     pgtype.Text{String: adminNotes, Valid: adminNotes != ""},
		ProcessedBy:    pgtype.Int4{Int32: librarianID, Valid: true},
		ProcessedDate:  pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to process request: %w", err)
		}
		current, getErr := s.querier.GetRequestByID(ctx, requestID)
		if getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get request: %w", getErr)
		}
		if models.IsTerminalRequestStatus(current.Status) {
			return nil, fmt.Errorf("request %d is already %s: %w", requestID, current.Status, ErrInvalidTransition)
		}
		return nil, fmt.Errorf("request %d is %s, not pending: %w", requestID, current.Status, ErrInvalidTransition)
	}

	eventType := models.NotificationRequestApproved
	title := "Request approved"
	message := "Your book request has been approved. The book will be issued at pickup."
	if newStatus == models.RequestStatusRejected {
		eventType = models.NotificationRequestRejected
		title = "Request rejected"
		message = "Your book request has been rejected."
	}
	s.notifier.NotifyEvent(ctx, updated.UserID, eventType, title, message)

	return convertToRequestResponse(updated), nil
}

// Fulfill marks an approved request fulfilled. It is invoked by issue
// creation, never directly by a user action.
func (s *RequestService) Fulfill(ctx context.Context, requestID int32) (*models.RequestResponse, error) {
	updated, err := s.querier.TransitionRequestStatus(ctx, queries.TransitionRequestStatusParams{
		ID:             requestID,
		ExpectedStatus: models.RequestStatusApproved,
		NewStatus:      models.RequestStatusFulfilled,
		ProcessedDate:  pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to fulfill request: %w", err)
		}
		current, getErr := s.querier.GetRequestByID(ctx, requestID)
		if getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get request: %w", getErr)
		}
		return nil, fmt.Errorf("request %d is %s, not approved: %w", requestID, current.Status, ErrInvalidTransition)
	}

	return convertToRequestResponse(updated), nil
}

// Unfulfill moves a fulfilled request back to approved. It compensates a
// failed issue creation so the request stays retryable.
func (s *RequestService) Unfulfill(ctx context.Context, requestID int32) (*models.RequestResponse, error) {
	updated, err := s.querier.TransitionRequestStatus(ctx, queries.TransitionRequestStatusParams{
		ID:             requestID,
		ExpectedStatus: models.RequestStatusFulfilled,
		NewStatus:      models.RequestStatusApproved,
		ProcessedDate:  pgtype.Timestamp{Time: s.clock.Now(), Valid: true},
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to unfulfill request: %w", err)
		}
		current, getErr := s.querier.GetRequestByID(ctx, requestID)
		if getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, fmt.Errorf("request %d: %w", requestID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get request: %w", getErr)
		}
		return nil, fmt.Errorf("request %d is %s, not fulfilled: %w", requestID, current.Status, ErrInvalidTransition)
	}

	return convertToRequestResponse(updated), nil
}

// GetRequestByID retrieves a request by ID
func (s *RequestService) GetRequestByID(ctx context.Context, id int32) (*models.RequestResponse, error) {
	request, err := s.querier.GetRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return convertToRequestResponse(request), nil
}

// GetUserRequests retrieves a user's requests with pagination
func (s *RequestService) GetUserRequests(ctx context.Context, userID int32, limit, offset int32) ([]models.RequestResponse, error) {
	rows, err := s.querier.ListRequestsByUser(ctx, queries.ListRequestsByUserParams{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user requests: %w", err)
	}

	responses := make([]models.RequestResponse, 0, len(rows))
	for _, row := range rows {
		response := *convertToRequestResponse(row.BookRequest)
		response.BookTitle = row.Title
		response.BookAuthor = row.Author
		responses = append(responses, response)
	}
	return responses, nil
}

// GetAllRequests retrieves requests with an optional status filter
func (s *RequestService) GetAllRequests(ctx context.Context, status string, limit, offset int32) ([]models.RequestResponse, int64, error) {
	if status != "" && !models.ValidateRequestStatus(status) {
		return nil, 0, fmt.Errorf("invalid status filter %q: %w", status, ErrValidation)
	}

	rows, err := s.querier.ListRequests(ctx, queries.ListRequestsParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get requests: %w", err)
	}

	total, err := s.querier.CountRequests(ctx, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	responses := make([]models.RequestResponse, 0, len(rows))
	for _, row := range rows {
		response := *convertToRequestResponse(row.BookRequest)
		response.BookTitle = row.Title
		response.BookAuthor = row.Author
		response.RequesterName = row.Username
		responses = append(responses, response)
	}
	return responses, total, nil
}

// convertToRequestResponse converts a queries.BookRequest to RequestResponse
func convertToRequestResponse(request queries.BookRequest) *models.RequestResponse {
	response := &models.RequestResponse{
		ID:          request.ID,
		UserID:      request.UserID,
		BookID:      request.BookID,
		Status:      request.Status,
		Priority:    request.Priority,
		RequestDate: request.RequestDate.Time,
		CreatedAt:   request.CreatedAt.Time,
		UpdatedAt:   request.UpdatedAt.Time,
	}

	if request.RequestedDays.Valid {
		response.RequestedDays = request.RequestedDays.Int32
	}
	if request.Notes.Valid {
		response.Notes = request.Notes.String
	}
	if request.AdminNotes.Valid {
		response.AdminNotes = request.AdminNotes.String
	}
	if request.ProcessedDate.Valid {
		response.ProcessedDate = &request.ProcessedDate.Time
	}

	return response
}
