package queries

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Book is a row in the books table
type Book struct {
	ID              int32
	BookCode        string
	Title           string
	Author          string
	Isbn            pgtype.Text
	Category        string
	TotalCopies     pgtype.Int4
	AvailableCopies pgtype.Int4
	IsActive        pgtype.Bool
	CreatedAt       pgtype.Timestamp
	UpdatedAt       pgtype.Timestamp
}

// User is a row in the users table
type User struct {
	ID           int32
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     pgtype.Bool
	LastLogin    pgtype.Timestamp
	CreatedAt    pgtype.Timestamp
	UpdatedAt    pgtype.Timestamp
}

// BookRequest is a row in the book_requests table
type BookRequest struct {
	ID            int32
	UserID        int32
	BookID        int32
	Status        string
	Priority      string
	RequestedDays pgtype.Int4
	Notes         pgtype.Text
	AdminNotes    pgtype.Text
	ProcessedBy   pgtype.Int4
	RequestDate   pgtype.Timestamp
	ProcessedDate pgtype.Timestamp
	CreatedAt     pgtype.Timestamp
	UpdatedAt     pgtype.Timestamp
}

// BookIssue is a row in the book_issues table
type BookIssue struct {
	ID         int32
	RequestID  pgtype.Int4
	UserID     int32
	BookID     int32
	Status     string
	IssueDate  pgtype.Timestamp
	DueDate    pgtype.Timestamp
	ReturnDate pgtype.Timestamp
	IssuedBy   pgtype.Int4
	CreatedAt  pgtype.Timestamp
	UpdatedAt  pgtype.Timestamp
}

// Fine is a row in the fines table
type Fine struct {
	ID          int32
	IssueID     int32
	Amount      pgtype.Numeric
	Status      string
	Method      pgtype.Text
	WaiveReason pgtype.Text
	ResolvedBy  pgtype.Int4
	ResolvedAt  pgtype.Timestamp
	CreatedAt   pgtype.Timestamp
	UpdatedAt   pgtype.Timestamp
}

// Notification is a row in the notifications table
type Notification struct {
	ID          int32
	RecipientID int32
	Type        string
	Title       string
	Message     string
	IsSent      pgtype.Bool
	SentAt      pgtype.Timestamp
	CreatedAt   pgtype.Timestamp
}
