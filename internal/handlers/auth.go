package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/models"
	"github.com/kibetdev/ulms/internal/services"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login authenticates a user and returns an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data", err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error: ErrorDetail{
					Code:    "INVALID_CREDENTIALS",
					Message: "Invalid username or password",
				},
			})
		case errors.Is(err, services.ErrUserInactive):
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error: ErrorDetail{
					Code:    "ACCOUNT_INACTIVE",
					Message: "Account is inactive",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Success: false,
				Error: ErrorDetail{
					Code:    "INTERNAL_ERROR",
					Message: "Failed to authenticate",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    result,
		Message: "Login successful",
	})
}
