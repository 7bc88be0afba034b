package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/shared"
)

// LowStockScanJob walks the catalog and records products at or below
// their reorder threshold so the shop owner knows what to restock.
type LowStockScanJob struct {
	Catalog *catalog.Service
	Audit   *shared.AuditLogger
	Logger  *slog.Logger

	clock func() time.Time
}

// NewLowStockScanJob constructs the job handler.
func NewLowStockScanJob(catalogSvc *catalog.Service, audit *shared.AuditLogger, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{
		Catalog: catalogSvc,
		Audit:   audit,
		Logger:  logger,
		clock:   time.Now,
	}
}

// Handle processes a low stock scan task.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("lowstock scan payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	started := j.clock()
	products, err := j.Catalog.ListLowStock(ctx)
	if err != nil {
		return fmt.Errorf("lowstock scan: %w", err)
	}

	logger := j.Logger.With(
		slog.String("task", TaskLowStockScan),
		slog.Int("count", len(products)),
		slog.Duration("took", j.clock().Sub(started)),
	)
	if len(products) == 0 {
		logger.InfoContext(ctx, "low stock scan clean")
		return nil
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
		logger.WarnContext(ctx, "product below reorder threshold",
			slog.Int64("product_id", p.ID),
			slog.String("name", p.Name),
			slog.Int64("stock", p.Stock),
			slog.Int64("reorder_threshold", p.ReorderThreshold),
		)
	}

	if j.Audit != nil {
		_ = j.Audit.Record(ctx, shared.AuditLog{
			ActorID:  "worker",
			Action:   "catalog:lowstock-scan",
			Entity:   "catalog",
			EntityID: "lowstock",
			Meta:     map[string]any{"products": names, "note": payload.Note},
		})
	}
	return nil
}
