package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookIssue represents a single physical-copy loan linking a user and a book
type BookIssue struct {
	ID         int32      `json:"id"`
	RequestID  *int32     `json:"request_id,omitempty"`
	UserID     int32      `json:"user_id"`
	BookID     int32      `json:"book_id"`
	Status     string     `json:"status"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	IssuedBy   *int32     `json:"issued_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IssueBookRequest represents a librarian issuing a book from an approved request
type IssueBookRequest struct {
	RequestID int32 `json:"request_id" binding:"required,min=1"`
}

// IssueResponse represents a book issue response
type IssueResponse struct {
	ID         int32      `json:"id"`
	RequestID  *int32     `json:"request_id,omitempty"`
	UserID     int32      `json:"user_id"`
	BookID     int32      `json:"book_id"`
	Status     string     `json:"status"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	IssuedBy   *int32     `json:"issued_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	// Optional joined fields for listings
	BookTitle    string `json:"book_title,omitempty"`
	BookAuthor   string `json:"book_author,omitempty"`
	BorrowerName string `json:"borrower_name,omitempty"`
}

// ReturnBookResponse represents the outcome of returning an issue,
// including the final fine when the return was late
type ReturnBookResponse struct {
	Issue IssueResponse `json:"issue"`
	Fine  *FineResponse `json:"fine,omitempty"`
}

// IssueListResponse represents a paginated list of issues
type IssueListResponse struct {
	Issues     []IssueResponse `json:"issues"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// SweepResult summarizes one run of the overdue fine sweep
type SweepResult struct {
	IssuesMarkedOverdue int             `json:"issues_marked_overdue"`
	FinesUpserted       int             `json:"fines_upserted"`
	TotalAccrued        decimal.Decimal `json:"total_accrued"`
}

// IssueStatus constants for book issue statuses
const (
	IssueStatusIssued   = "issued"
	IssueStatusOverdue  = "overdue"
	IssueStatusReturned = "returned"
)

// ValidateIssueStatus validates if an issue status is valid
func ValidateIssueStatus(status string) bool {
	switch status {
	case IssueStatusIssued, IssueStatusOverdue, IssueStatusReturned:
		return true
	default:
		return false
	}
}

// IsValidIssueTransition checks if an issue status transition is valid.
// Returned is terminal; an issue may be returned while merely issued or
// after it has been marked overdue.
func IsValidIssueTransition(from, to string) bool {
	validTransitions := map[string][]string{
		IssueStatusIssued:   {IssueStatusOverdue, IssueStatusReturned},
		IssueStatusOverdue:  {IssueStatusReturned},
		IssueStatusReturned: {},
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

// IsOpenIssueStatus reports whether the copy is still out with the borrower
func IsOpenIssueStatus(status string) bool {
	return status == IssueStatusIssued || status == IssueStatusOverdue
}
