package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse represents a paginated list response
type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ListMeta carries pagination info alongside list data
type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func badRequest(c *gin.Context, message string, details interface{}) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Details: details,
		},
	})
}

// respondServiceError translates service errors into HTTP responses.
// Unrecognized errors become a generic 500 with internalMessage so that
// database details never leak to clients.
func respondServiceError(c *gin.Context, err error, internalMessage string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "NOT_FOUND", Message: err.Error()},
		})
	case errors.Is(err, services.ErrOutOfStock):
		c.JSON(http.StatusConflict, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "OUT_OF_STOCK", Message: err.Error()},
		})
	case errors.Is(err, services.ErrAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "CONFLICT_ERROR", Message: err.Error()},
		})
	case errors.Is(err, services.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "DUPLICATE_REQUEST", Message: err.Error()},
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "INVALID_TRANSITION", Message: err.Error()},
		})
	case errors.Is(err, services.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "ALREADY_RESOLVED", Message: err.Error()},
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "FORBIDDEN", Message: err.Error()},
		})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   ErrorDetail{Code: "INTERNAL_ERROR", Message: internalMessage},
		})
	}
}
