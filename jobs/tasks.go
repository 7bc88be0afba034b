package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan walks the catalog for products at or below their
	// reorder threshold.
	TaskLowStockScan = "pos:lowstock:scan"
	// TaskDashboardWarmup precomputes reporting caches before opening time.
	TaskDashboardWarmup = "pos:dashboard:warmup"
)

// LowStockScanPayload configures a low stock scan run.
type LowStockScanPayload struct {
	// Note is carried into the audit trail for the restock list.
	Note string `json:"note"`
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// DashboardWarmupPayload configures a warmup run.
type DashboardWarmupPayload struct {
	Days int `json:"days"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
