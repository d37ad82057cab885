package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/middleware"
	"github.com/kibetdev/ulms/internal/models"
	"github.com/kibetdev/ulms/internal/services"
)

// RequestHandler handles book request HTTP requests
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// SubmitRequest submits a new book request for the authenticated user
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req models.SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	request, err := h.requestService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		respondServiceError(c, err, "Failed to submit request")
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    request,
		Message: "Request submitted successfully",
	})
}

// CancelRequest cancels the authenticated user's own pending request
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel request")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    request,
		Message: "Request cancelled successfully",
	})
}

// ProcessRequest approves or rejects a pending request
func (h *RequestHandler) ProcessRequest(c *gin.Context) {
	librarianID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ProcessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	request, err := h.requestService.Process(c.Request.Context(), id, req.Status, req.AdminNotes, librarianID)
	if err != nil {
		respondServiceError(c, err, "Failed to process request")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    request,
		Message: "Request processed successfully",
	})
}

// GetRequest retrieves a request by ID. Students may only read their own.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.GetRequestByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to get request")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if !role.CanProcessRequests() && request.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Code:    "FORBIDDEN",
				Message: "You may only view your own requests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    request,
	})
}

// GetMyRequests lists the authenticated user's requests
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	limit, offset := paginationOffset(c)

	requests, err := h.requestService.GetUserRequests(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list requests")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    requests,
	})
}

// ListRequests lists all requests, optionally filtered by status
func (h *RequestHandler) ListRequests(c *gin.Context) {
	limit, offset := paginationOffset(c)
	status := c.Query("status")

	requests, total, err := h.requestService.GetAllRequests(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list requests")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    requests,
		Meta:    ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    "UNAUTHENTICATED",
			Message: "Authentication required",
		},
	})
}
