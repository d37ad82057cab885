package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/models"
)

// BookServiceInterface defines the catalog operations the handler needs
type BookServiceInterface interface {
	CreateBook(ctx context.Context, req models.CreateBookRequest) (*models.BookResponse, error)
	GetBookByID(ctx context.Context, id int32) (*models.BookResponse, error)
	UpdateBook(ctx context.Context, id int32, req models.UpdateBookRequest) (*models.BookResponse, error)
	DeleteBook(ctx context.Context, id int32) error
	ListBooks(ctx context.Context, page, limit int) (*models.BookListResponse, error)
	SearchBooks(ctx context.Context, req models.BookSearchRequest) (*models.BookListResponse, error)
	GetBookStats(ctx context.Context) (*models.BookStats, error)
}

// BookHandler handles book-related HTTP requests
type BookHandler struct {
	bookService BookServiceInterface
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService BookServiceInterface) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// CreateBook adds a new book to the catalog
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req models.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to create book")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    book,
		Message: "Book created successfully",
	})
}

// GetBook retrieves a book by ID
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := h.bookService.GetBookByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to get book")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    book,
	})
}

// UpdateBook updates a book's details and copy counts
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "Failed to update book")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    book,
		Message: "Book updated successfully",
	})
}

// DeleteBook soft-deletes a book from the catalog
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete book")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Book deleted successfully",
	})
}

// ListBooks returns a paginated list of active books
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, limit := parsePagination(c)

	books, err := h.bookService.ListBooks(c.Request.Context(), page, limit)
	if err != nil {
		respondServiceError(c, err, "Failed to list books")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    books,
	})
}

// SearchBooks searches the catalog by title, author or category
func (h *BookHandler) SearchBooks(c *gin.Context) {
	page, limit := parsePagination(c)

	req := models.BookSearchRequest{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}

	books, err := h.bookService.SearchBooks(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to search books")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    books,
	})
}

// GetBookStats returns catalog-wide statistics
func (h *BookHandler) GetBookStats(c *gin.Context) {
	stats, err := h.bookService.GetBookStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to get book statistics")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    stats,
	})
}

// parseIDParam parses a positive int32 path parameter, responding with a
// validation error on failure.
func parseIDParam(c *gin.Context, name string) (int32, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil || id < 1 {
		badRequest(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return int32(id), true
}

// parsePagination reads page and limit query parameters with sane bounds
func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// paginationOffset converts page-based pagination to limit and offset
func paginationOffset(c *gin.Context) (int32, int32) {
	page, limit := parsePagination(c)
	return int32(limit), int32((page - 1) * limit)
}
