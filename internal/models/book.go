package models

import (
	"fmt"
	"strings"
	"time"
)

// Book represents a book in the library catalog
type Book struct {
	ID              int32     `json:"id"`
	BookCode        string    `json:"book_code"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Category        string    `json:"category"`
	TotalCopies     int32     `json:"total_copies"`
	AvailableCopies int32     `json:"available_copies"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateBookRequest represents a request to add a book to the catalog
type CreateBookRequest struct {
	BookCode    string  `json:"book_code" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	ISBN        *string `json:"isbn"`
	Category    string  `json:"category" binding:"required"`
	TotalCopies int32   `json:"total_copies" binding:"required,min=1"`
}

// UpdateBookRequest represents a request to update catalog details of a book
type UpdateBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	ISBN        *string `json:"isbn"`
	Category    string  `json:"category" binding:"required"`
	TotalCopies int32   `json:"total_copies" binding:"required,min=1"`
}

// BookResponse represents a book response
type BookResponse struct {
	ID              int32     `json:"id"`
	BookCode        string    `json:"book_code"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Category        string    `json:"category"`
	TotalCopies     int32     `json:"total_copies"`
	AvailableCopies int32     `json:"available_copies"`
	IsActive        bool      `json:"is_active"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookListResponse represents a paginated list of books
type BookListResponse struct {
	Books      []BookResponse `json:"books"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// BookSearchRequest represents search criteria for books
type BookSearchRequest struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
}

// BookStats represents catalog-wide inventory statistics
type BookStats struct {
	TotalBooks      int64 `json:"total_books"`
	TotalCopies     int64 `json:"total_copies"`
	AvailableCopies int64 `json:"available_copies"`
	CopiesOnLoan    int64 `json:"copies_on_loan"`
}

// Book availability status for responses
const (
	BookStatusAvailable   = "available"
	BookStatusUnavailable = "unavailable"
	BookStatusInactive    = "inactive"
)

// Book categories; the category drives the daily fine rate
const (
	BookCategoryGeneral   = "general"
	BookCategoryReference = "reference"
	BookCategoryFiction   = "fiction"
	BookCategoryJournal   = "journal"
)

// ValidBookCategories lists the categories accepted at creation time
var ValidBookCategories = []string{
	BookCategoryGeneral,
	BookCategoryReference,
	BookCategoryFiction,
	BookCategoryJournal,
}

// Validate performs validation on the create book request
func (r *CreateBookRequest) Validate() error {
	if strings.TrimSpace(r.BookCode) == "" {
		return fmt.Errorf("book_code is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.Author) == "" {
		return fmt.Errorf("author is required")
	}
	if !IsValidBookCategory(r.Category) {
		return fmt.Errorf("invalid category: %s", r.Category)
	}
	if r.TotalCopies < 1 {
		return fmt.Errorf("total_copies must be at least 1")
	}
	return nil
}

// IsValidBookCategory validates a book category value
func IsValidBookCategory(category string) bool {
	for _, c := range ValidBookCategories {
		if c == category {
			return true
		}
	}
	return false
}
