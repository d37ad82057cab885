package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryReport summarizes catalog stock levels
type InventoryReport struct {
	TotalBooks      int64     `json:"total_books"`
	TotalCopies     int64     `json:"total_copies"`
	AvailableCopies int64     `json:"available_copies"`
	CopiesOnLoan    int64     `json:"copies_on_loan"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// FineReport summarizes fine totals by status
type FineReport struct {
	PendingCount  int64           `json:"pending_count"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PaidCount     int64           `json:"paid_count"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	WaivedCount   int64           `json:"waived_count"`
	WaivedAmount  decimal.Decimal `json:"waived_amount"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// OverdueReportEntry is one row of the overdue issues report
type OverdueReportEntry struct {
	IssueID      int32     `json:"issue_id"`
	BookID       int32     `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	UserID       int32     `json:"user_id"`
	BorrowerName string    `json:"borrower_name"`
	DueDate      time.Time `json:"due_date"`
	DaysOverdue  int       `json:"days_overdue"`
}

// OverdueReport lists all open issues past their due date
type OverdueReport struct {
	Entries     []OverdueReportEntry `json:"entries"`
	Total       int                  `json:"total"`
	GeneratedAt time.Time            `json:"generated_at"`
}
