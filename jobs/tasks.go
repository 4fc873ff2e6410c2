package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bodega-pos/bodega/internal/catalog"
	"github.com/bodega-pos/bodega/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExpiryScan walks the catalog for products expiring soon.
	TaskExpiryScan = "catalog:expiry_scan"
	// TaskLowStockScan reports products at or under their alert threshold.
	TaskLowStockScan = "catalog:low_stock_scan"
	// TaskIdempotencyCleanup prunes old idempotency keys.
	TaskIdempotencyCleanup = "shared:idempotency_cleanup"
)

// idempotencyRetention is how long processed keys stay around before cleanup.
const idempotencyRetention = 48 * time.Hour

// CatalogReader is the slice of the catalog repository the scans need. Jobs
// read through the repository directly; they run with no operator session.
type CatalogReader interface {
	ListLowStock(ctx context.Context) ([]catalog.Product, error)
	ListExpiring(ctx context.Context) ([]catalog.Product, error)
}

// NewExpiryScanTask constructs the expiry scan task.
func NewExpiryScanTask() *asynq.Task {
	return asynq.NewTask(TaskExpiryScan, nil)
}

// NewLowStockScanTask constructs the low stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// HandleExpiryScan logs every product already expired or inside the warning
// window so the morning shift can pull it from the shelf.
func HandleExpiryScan(reader CatalogReader, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		products, err := reader.ListExpiring(ctx)
		if err != nil {
			return err
		}
		now := time.Now()
		expired, soon := 0, 0
		for _, p := range products {
			switch catalog.ClassifyExpiry(p.ExpiresOn, now) {
			case catalog.ExpiryExpired:
				expired++
				logger.Warn("product expired", slog.Int64("product_id", p.ID), slog.String("name", p.Name))
			case catalog.ExpirySoon:
				soon++
				logger.Info("product expiring soon", slog.Int64("product_id", p.ID), slog.String("name", p.Name), slog.Time("expires_on", *p.ExpiresOn))
			}
		}
		logger.Info("expiry scan done", slog.Int("expired", expired), slog.Int("expiring_soon", soon))
		return nil
	}
}

// HandleLowStockScan logs tracked products at or under their minimum.
func HandleLowStockScan(reader CatalogReader, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		products, err := reader.ListLowStock(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			logger.Warn("low stock",
				slog.Int64("product_id", p.ID),
				slog.String("name", p.Name),
				slog.Float64("stock_qty", p.StockQty),
				slog.Float64("min_stock", p.MinStock))
		}
		logger.Info("low stock scan done", slog.Int("alerts", len(products)))
		return nil
	}
}

// HandleIdempotencyCleanup prunes keys older than the retention window.
func HandleIdempotencyCleanup(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := store.Cleanup(ctx, idempotencyRetention); err != nil {
			return err
		}
		logger.Info("idempotency cleanup done")
		return nil
	}
}
