package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/reporting"
)

// DashboardWarmupJob precomputes the dashboard summary and revenue
// series so the first morning request hits a warm cache.
type DashboardWarmupJob struct {
	Reporting *reporting.Service
	Logger    *slog.Logger
}

// NewDashboardWarmupJob constructs the job handler.
func NewDashboardWarmupJob(reportingSvc *reporting.Service, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{Reporting: reportingSvc, Logger: logger}
}

// Handle processes a dashboard warmup task.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	days := payload.Days
	if days <= 0 {
		days = 7
	}

	if err := j.Reporting.Warmup(ctx); err != nil {
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	if days != 7 {
		if _, err := j.Reporting.RevenueSeries(ctx, days); err != nil {
			return fmt.Errorf("dashboard warmup series: %w", err)
		}
	}
	j.Logger.InfoContext(ctx, "dashboard warmup done",
		slog.String("task", TaskDashboardWarmup),
		slog.Int("days", days),
	)
	return nil
}
