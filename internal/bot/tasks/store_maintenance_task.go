package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// newStoreMaintenanceTask creates the scheduled task function for compacting
// and repairing the record store. Record sets are normalized through their
// owners so the rewrite holds the same lock as every other writer.
func newStoreMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "store_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled store maintenance task...")
		startTime := time.Now()

		err := errors.Join(
			deps.Audience.Normalize(ctx),
			deps.Gate.Normalize(ctx),
			deps.Store.Maintain(ctx),
		)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Store maintenance task failed", "error", err, "duration", duration)
			return fmt.Errorf("store maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled store maintenance task completed successfully", "duration", duration)
		return nil
	}
}
