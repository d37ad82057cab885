package models

import (
	"time"
)

// BookRequest represents a student's request for a book
type BookRequest struct {
	ID            int32      `json:"id"`
	UserID        int32      `json:"user_id"`
	BookID        int32      `json:"book_id"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	RequestedDays int32      `json:"requested_days"`
	Notes         string     `json:"notes,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	RequestDate   time.Time  `json:"request_date"`
	ProcessedDate *time.Time `json:"processed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SubmitRequestRequest represents a student submitting a book request
type SubmitRequestRequest struct {
	BookID        int32  `json:"book_id" binding:"required,min=1"`
	Priority      string `json:"priority"`
	RequestedDays int32  `json:"requested_days" binding:"omitempty,min=1,max=90"`
	Notes         string `json:"notes"`
}

// ProcessRequestRequest represents a librarian approving or rejecting a request
type ProcessRequestRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

// RequestResponse represents a book request response
type RequestResponse struct {
	ID            int32      `json:"id"`
	UserID        int32      `json:"user_id"`
	BookID        int32      `json:"book_id"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	RequestedDays int32      `json:"requested_days"`
	Notes         string     `json:"notes,omitempty"`
	AdminNotes    string     `json:"admin_notes,omitempty"`
	RequestDate   time.Time  `json:"request_date"`
	ProcessedDate *time.Time `json:"processed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	// Optional joined fields for librarian listings
	BookTitle     string `json:"book_title,omitempty"`
	BookAuthor    string `json:"book_author,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
}

// RequestListResponse represents a paginated list of requests
type RequestListResponse struct {
	Requests   []RequestResponse `json:"requests"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// RequestStatus constants for book request statuses
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCancelled = "cancelled"
	RequestStatusFulfilled = "fulfilled"
)

// RequestPriority constants for book request priorities
const (
	RequestPriorityLow    = "low"
	RequestPriorityNormal = "normal"
	RequestPriorityHigh   = "high"
)

// ValidateRequestStatus validates if a request status is valid
func ValidateRequestStatus(status string) bool {
	switch status {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected,
		RequestStatusCancelled, RequestStatusFulfilled:
		return true
	default:
		return false
	}
}

// ValidateRequestPriority validates if a request priority is valid
func ValidateRequestPriority(priority string) bool {
	switch priority {
	case RequestPriorityLow, RequestPriorityNormal, RequestPriorityHigh:
		return true
	default:
		return false
	}
}

// IsValidRequestTransition checks if a request status transition is valid.
// Rejected, cancelled and fulfilled are terminal; fulfilled is reachable
// only from approved.
func IsValidRequestTransition(from, to string) bool {
	validTransitions := map[string][]string{
		RequestStatusPending:   {RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled},
		RequestStatusApproved:  {RequestStatusFulfilled},
		RequestStatusRejected:  {},
		RequestStatusCancelled: {},
		RequestStatusFulfilled: {},
	}

	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, next := range allowed {
		if next == to {
			return true
		}
	}

	return false
}

// IsTerminalRequestStatus reports whether no further transitions are allowed
func IsTerminalRequestStatus(status string) bool {
	switch status {
	case RequestStatusRejected, RequestStatusCancelled, RequestStatusFulfilled:
		return true
	default:
		return false
	}
}
