package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/kibetdev/ulms/internal/models"
)

// OverdueRecalculator is the slice of the issue service the sweeper needs
type OverdueRecalculator interface {
	RecalculateOverdueFines(ctx context.Context) (*models.SweepResult, error)
}

// OverdueSweeper periodically marks open issues past their due date as
// overdue and recalculates their pending fines.
type OverdueSweeper struct {
	issueService OverdueRecalculator
	interval     time.Duration
	logger       *slog.Logger
}

func NewOverdueSweeper(issueService OverdueRecalculator, interval time.Duration, logger *slog.Logger) *OverdueSweeper {
	return &OverdueSweeper{
		issueService: issueService,
		interval:     interval,
		logger:       logger,
	}
}

// Start runs the sweep loop until ctx is cancelled. It sweeps once
// immediately, then on every tick.
func (w *OverdueSweeper) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *OverdueSweeper) run(ctx context.Context) {
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Overdue sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *OverdueSweeper) sweep(ctx context.Context) {
	result, err := w.issueService.RecalculateOverdueFines(ctx)
	if err != nil {
		w.logger.Error("Overdue sweep failed", "error", err)
		return
	}

	w.logger.Info("Overdue sweep completed",
		"marked_overdue", result.IssuesMarkedOverdue,
		"fines_upserted", result.FinesUpserted,
		"total_accrued", result.TotalAccrued.String(),
	)
}
