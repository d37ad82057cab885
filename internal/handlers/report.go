package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibetdev/ulms/internal/services"
)

// ReportHandler handles report HTTP requests
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetInventoryReport returns catalog stock totals
func (h *ReportHandler) GetInventoryReport(c *gin.Context) {
	report, err := h.reportService.GetInventoryReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to generate inventory report")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    report,
	})
}

// GetFineReport returns fine totals grouped by status
func (h *ReportHandler) GetFineReport(c *gin.Context) {
	report, err := h.reportService.GetFineReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to generate fine report")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    report,
	})
}

// GetOverdueReport lists open issues past their due date
func (h *ReportHandler) GetOverdueReport(c *gin.Context) {
	report, err := h.reportService.GetOverdueReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to generate overdue report")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    report,
	})
}
