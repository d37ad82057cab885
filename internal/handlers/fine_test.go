package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kibetdev/ulms/internal/models"
	"github.com/kibetdev/ulms/internal/services"
)

// MockFineService is a mock implementation of FineServiceInterface
type MockFineService struct {
	mock.Mock
}

func (m *MockFineService) PayFine(ctx context.Context, fineID int32, method string) (*models.FineResponse, error) {
	args := m.Called(ctx, fineID, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FineResponse), args.Error(1)
}

func (m *MockFineService) WaiveFine(ctx context.Context, fineID int32, reason string, librarianID int32) (*models.FineResponse, error) {
	args := m.Called(ctx, fineID, reason, librarianID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FineResponse), args.Error(1)
}

func (m *MockFineService) GetFineByID(ctx context.Context, id int32) (*models.FineResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FineResponse), args.Error(1)
}

func (m *MockFineService) GetUserFines(ctx context.Context, userID int32, limit, offset int32) ([]models.FineResponse, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FineResponse), args.Error(1)
}

func (m *MockFineService) GetAllFines(ctx context.Context, status string, limit, offset int32) ([]models.FineResponse, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.FineResponse), args.Get(1).(int64), args.Error(2)
}

// setupFineTestRouter seeds the auth context the way the JWT middleware
// would, so ownership checks see a caller.
func setupFineTestRouter(mockService *MockFineService, userID int32, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	})
	handler := NewFineHandler(mockService)

	v1 := router.Group("/api/v1")
	{
		fines := v1.Group("/fines")
		{
			fines.GET("/mine", handler.GetMyFines)
			fines.GET("/:id", handler.GetFine)
			fines.POST("/:id/pay", handler.PayFine)
		}
	}

	return router
}

func sampleFineResponse(userID int32) *models.FineResponse {
	return &models.FineResponse{
		ID:      9,
		IssueID: 5,
		UserID:  userID,
		Amount:  decimal.NewFromFloat(11.50),
		Status:  models.FineStatusPending,
	}
}

func TestFineHandler_GetFine(t *testing.T) {
	t.Run("borrower reads their own fine", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(sampleFineResponse(42), nil)
		router := setupFineTestRouter(mockService, 42, models.RoleStudent)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/fines/9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("student cannot read another user's fine", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(sampleFineResponse(7), nil)
		router := setupFineTestRouter(mockService, 42, models.RoleStudent)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/fines/9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "FORBIDDEN", response.Error.Code)
	})

	t.Run("librarian reads any fine", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(sampleFineResponse(7), nil)
		router := setupFineTestRouter(mockService, 42, models.RoleLibrarian)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/fines/9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown fine maps to 404", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(nil, services.ErrNotFound)
		router := setupFineTestRouter(mockService, 42, models.RoleStudent)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/fines/9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFineHandler_PayFine(t *testing.T) {
	payBody := func() *bytes.Buffer {
		body, _ := json.Marshal(models.PayFineRequest{Method: models.PaymentMethodCash})
		return bytes.NewBuffer(body)
	}

	t.Run("borrower pays their own fine", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(sampleFineResponse(42), nil)
		paid := sampleFineResponse(42)
		paid.Status = models.FineStatusPaid
		mockService.On("PayFine", mock.Anything, int32(9), models.PaymentMethodCash).Return(paid, nil)
		router := setupFineTestRouter(mockService, 42, models.RoleStudent)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/fines/9/pay", payBody())
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("student cannot pay another user's fine", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(sampleFineResponse(7), nil)
		router := setupFineTestRouter(mockService, 42, models.RoleStudent)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/fines/9/pay", payBody())
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "PayFine", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("librarian pays on behalf of any borrower", func(t *testing.T) {
		mockService := new(MockFineService)
		mockService.On("GetFineByID", mock.Anything, int32(9)).Return(sampleFineResponse(7), nil)
		paid := sampleFineResponse(7)
		paid.Status = models.FineStatusPaid
		mockService.On("PayFine", mock.Anything, int32(9), models.PaymentMethodCash).Return(paid, nil)
		router := setupFineTestRouter(mockService, 42, models.RoleLibrarian)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/fines/9/pay", payBody())
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing method fails binding", func(t *testing.T) {
		mockService := new(MockFineService)
		router := setupFineTestRouter(mockService, 42, models.RoleStudent)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/fines/9/pay", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "VALIDATION_ERROR", response.Error.Code)
	})
}
