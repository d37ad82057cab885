package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/middleware"
	"github.com/kibetdev/ulms/internal/models"
)

// FineServiceInterface defines the fine service operations used by handlers
type FineServiceInterface interface {
	PayFine(ctx context.Context, fineID int32, method string) (*models.FineResponse, error)
	WaiveFine(ctx context.Context, fineID int32, reason string, librarianID int32) (*models.FineResponse, error)
	GetFineByID(ctx context.Context, id int32) (*models.FineResponse, error)
	GetUserFines(ctx context.Context, userID int32, limit, offset int32) ([]models.FineResponse, error)
	GetAllFines(ctx context.Context, status string, limit, offset int32) ([]models.FineResponse, int64, error)
}

// FineHandler handles fine HTTP requests
type FineHandler struct {
	fineService FineServiceInterface
}

// NewFineHandler creates a new fine handler
func NewFineHandler(fineService FineServiceInterface) *FineHandler {
	return &FineHandler{
		fineService: fineService,
	}
}

// PayFine marks a pending fine as paid. Students may only pay their own.
func (h *FineHandler) PayFine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.PayFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	existing, err := h.fineService.GetFineByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to pay fine")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if !role.CanProcessRequests() && existing.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Code:    "FORBIDDEN",
				Message: "You may only pay your own fines",
			},
		})
		return
	}

	fine, err := h.fineService.PayFine(c.Request.Context(), id, req.Method)
	if err != nil {
		respondServiceError(c, err, "Failed to pay fine")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    fine,
		Message: "Fine paid successfully",
	})
}

// WaiveFine marks a pending fine as waived with a recorded reason
func (h *FineHandler) WaiveFine(c *gin.Context) {
	librarianID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.WaiveFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	fine, err := h.fineService.WaiveFine(c.Request.Context(), id, req.Reason, librarianID)
	if err != nil {
		respondServiceError(c, err, "Failed to waive fine")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    fine,
		Message: "Fine waived successfully",
	})
}

// GetFine retrieves a fine by ID. Students may only read their own.
func (h *FineHandler) GetFine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fine, err := h.fineService.GetFineByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to get fine")
		return
	}

	role, _ := middleware.GetUserRole(c)
	if !role.CanProcessRequests() && fine.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Success: false,
			Error: ErrorDetail{
				Code:    "FORBIDDEN",
				Message: "You may only view your own fines",
			},
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    fine,
	})
}

// GetMyFines lists the authenticated user's fines
func (h *FineHandler) GetMyFines(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	limit, offset := paginationOffset(c)

	fines, err := h.fineService.GetUserFines(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list fines")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    fines,
	})
}

// ListFines lists all fines, optionally filtered by status
func (h *FineHandler) ListFines(c *gin.Context) {
	limit, offset := paginationOffset(c)
	status := c.Query("status")

	fines, total, err := h.fineService.GetAllFines(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list fines")
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Success: true,
		Data:    fines,
		Meta:    ListMeta{Total: total, Limit: limit, Offset: offset},
	})
}
