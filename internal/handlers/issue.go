package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/middleware"
	"github.com/kibetdev/ulms/internal/models"
	"github.com/kibetdev/ulms/internal/services"
)

// IssueHandler handles book issue and return HTTP requests
type IssueHandler struct {
	issueService *services.IssueService
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(issueService *services.IssueService) *IssueHandler {
	return &IssueHandler{
		issueService: issueService,
	}
}

// IssueBook issues a book against an approved request
func (h *IssueHandler) IssueBook(c *gin.Context) {
	librarianID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req models.IssueBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	issue, err := h.issueService.IssueBook(c.Request.Context(), req.RequestID, librarianID)
	if err != nil {
		respondServiceError(c, err, "Failed to issue book")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    issue,
		Message: "Book issued successfully",
	})
}

// ReturnBook records the return of an issued book, finalizing any late fine
func (h *IssueHandler) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.issueService.ReturnBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to return book")
		return
	}

	message := "Book returned successfully"
	if result.Fine != nil {
		message = "Book returned with an outstanding fine"
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    result,
		Message: message,
	})
}

// GetIssue retrieves an issue by ID. Students may only read their own.
func (h *IssueHandler) GetIssue(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	issue, err := h.issueService.GetIssueByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to get issue")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if !role.CanProcessRequests() && issue.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Code:    "FORBIDDEN",
				Message: "You may only view your own issues",
			},
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    issue,
	})
}

// GetMyIssues lists the authenticated user's issues
func (h *IssueHandler) GetMyIssues(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	limit, offset := paginationOffset(c)

	issues, err := h.issueService.GetUserIssues(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list issues")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    issues,
	})
}

// ListIssues lists all issues, optionally filtered by status
func (h *IssueHandler) ListIssues(c *gin.Context) {
	limit, offset := paginationOffset(c)
	status := c.Query("status")

	issues, total, err := h.issueService.GetAllIssues(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list issues")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    issues,
		Meta:    ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// RunOverdueSweep triggers the overdue fine recalculation on demand
func (h *IssueHandler) RunOverdueSweep(c *gin.Context) {
	result, err := h.issueService.RecalculateOverdueFines(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to run overdue sweep")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    result,
		Message: "Overdue sweep completed",
	})
}
