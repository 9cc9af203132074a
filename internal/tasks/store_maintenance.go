package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/grocery-share/internal/database"
)

// StatementExecutor runs maintenance statements against the store.
type StatementExecutor interface {
	Execute(ctx context.Context, stmt string, args ...any) (database.Result, error)
}

// OrphanProductsCleaner deletes products no line item references.
type OrphanProductsCleaner interface {
	DeleteOrphans(ctx context.Context) (int64, error)
}

// StoreMaintenanceTask refreshes the query planner statistics and optionally
// prunes the product catalog.
type StoreMaintenanceTask struct {
	PruneOrphanProducts bool `json:"prune_orphan_products"`
}

// Config returns the queue configuration for maintenance tasks.
func (t StoreMaintenanceTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "store_maintenance",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// StoreMaintenanceProcessor creates a processor function for StoreMaintenanceTask.
func StoreMaintenanceProcessor(store StatementExecutor, cleaner OrphanProductsCleaner) backlite.QueueProcessor[StoreMaintenanceTask] {
	return func(ctx context.Context, task StoreMaintenanceTask) error {
		if store == nil {
			return fmt.Errorf("store not configured")
		}

		if _, err := store.Execute(ctx, "PRAGMA optimize"); err != nil {
			return fmt.Errorf("optimize store: %w", err)
		}

		if !task.PruneOrphanProducts {
			slog.Info("store maintenance finished")
			return nil
		}
		if cleaner == nil {
			return fmt.Errorf("orphan products cleaner not configured")
		}

		deleted, err := cleaner.DeleteOrphans(ctx)
		if err != nil {
			return fmt.Errorf("prune orphan products: %w", err)
		}

		slog.Info("store maintenance finished", "orphan_products_deleted", deleted)
		return nil
	}
}

// NewStoreMaintenanceQueue creates a backlite queue for maintenance tasks.
func NewStoreMaintenanceQueue(store StatementExecutor, cleaner OrphanProductsCleaner) backlite.Queue {
	return backlite.NewQueue(StoreMaintenanceProcessor(store, cleaner))
}
