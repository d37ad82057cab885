package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kibetdev/ulms/internal/database/queries"
	"github.com/kibetdev/ulms/internal/models"
)

// ReportQuerier defines the interface for report database operations
type ReportQuerier interface {
	GetInventorySummary(ctx context.Context) (queries.GetInventorySummaryRow, error)
	GetFineTotalsByStatus(ctx context.Context) ([]queries.GetFineTotalsByStatusRow, error)
	ListOverdueIssuesReport(ctx context.Context, cutoff pgtype.Timestamp) ([]queries.ListOverdueIssuesReportRow, error)
}

// ReportService produces read-only summaries for the staff dashboard
type ReportService struct {
	querier ReportQuerier
	clock   Clock
	logger  *slog.Logger
}

func NewReportService(querier ReportQuerier, clock Clock, logger *slog.Logger) *ReportService {
	return &ReportService{
		querier: querier,
		clock:   clock,
		logger:  logger,
	}
}

// GetInventoryReport returns catalog-wide stock totals
func (s *ReportService) GetInventoryReport(ctx context.Context) (*models.InventoryReport, error) {
	row, err := s.querier.GetInventorySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory summary: %w", err)
	}

	return &models.InventoryReport{
		TotalBooks:      row.TotalBooks,
		TotalCopies:     row.TotalCopies,
		AvailableCopies: row.AvailableCopies,
		CopiesOnLoan:    row.TotalCopies - row.AvailableCopies,
		GeneratedAt:     s.clock.Now(),
	}, nil
}

// GetFineReport returns fine counts and amounts grouped by status
func (s *ReportService) GetFineReport(ctx context.Context) (*models.FineReport, error) {
	rows, err := s.querier.GetFineTotalsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fine totals: %w", err)
	}

	report := &models.FineReport{GeneratedAt: s.clock.Now()}
	for _, row := range rows {
		amount := decimalFromNumeric(row.Total)
		switch row.Status {
		case models.FineStatusPending:
			report.PendingCount = row.Count
			report.PendingAmount = amount
		case models.FineStatusPaid:
			report.PaidCount = row.Count
			report.PaidAmount = amount
		case models.FineStatusWaived:
			report.WaivedCount = row.Count
			report.WaivedAmount = amount
		default:
			s.logger.Warn("Unknown fine status in report", "status", row.Status)
		}
	}

	return report, nil
}

// GetOverdueReport lists every open issue past its due date as of now
func (s *ReportService) GetOverdueReport(ctx context.Context) (*models.OverdueReport, error) {
	now := s.clock.Now()

	rows, err := s.querier.ListOverdueIssuesReport(ctx, pgtype.Timestamp{Time: now, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue issues: %w", err)
	}

	entries := make([]models.OverdueReportEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.OverdueReportEntry{
			IssueID:      row.IssueID,
			BookID:       row.BookID,
			BookTitle:    row.Title,
			UserID:       row.UserID,
			BorrowerName: row.Username,
			DueDate:      row.DueDate.Time,
			DaysOverdue:  daysBetween(row.DueDate.Time, now),
		})
	}

	return &models.OverdueReport{
		Entries:     entries,
		Total:       len(entries),
		GeneratedAt: now,
	}, nil
}
