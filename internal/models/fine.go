package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fine represents a monetary penalty tied to one overdue or late-returned issue
type Fine struct {
	ID          int32           `json:"id"`
	IssueID     int32           `json:"issue_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Method      string          `json:"method,omitempty"`
	WaiveReason string          `json:"waive_reason,omitempty"`
	ResolvedBy  *int32          `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PayFineRequest represents a fine payment
type PayFineRequest struct {
	Method string `json:"method" binding:"required"`
}

// WaiveFineRequest represents a librarian waiving a fine
type WaiveFineRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FineResponse represents a fine response
type FineResponse struct {
	ID          int32           `json:"id"`
	IssueID     int32           `json:"issue_id"`
	UserID      int32           `json:"user_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Method      string          `json:"method,omitempty"`
	WaiveReason string          `json:"waive_reason,omitempty"`
	ResolvedBy  *int32          `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FineListResponse represents a paginated list of fines
type FineListResponse struct {
	Fines      []FineResponse `json:"fines"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// FineStatus constants for fine statuses
const (
	FineStatusPending = "pending"
	FineStatusPaid    = "paid"
	FineStatusWaived  = "waived"
)

// PaymentMethod constants for fine payments
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
)

// ValidateFineStatus validates if a fine status is valid
func ValidateFineStatus(status string) bool {
	switch status {
	case FineStatusPending, FineStatusPaid, FineStatusWaived:
		return true
	default:
		return false
	}
}

// ValidatePaymentMethod validates a fine payment method
func ValidatePaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile:
		return true
	default:
		return false
	}
}

// IsResolvedFineStatus reports whether a fine has reached a terminal state
func IsResolvedFineStatus(status string) bool {
	return status == FineStatusPaid || status == FineStatusWaived
}
