package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/promobot/internal/metrics"
)

// newAudienceGaugeTask refreshes the known users and admins gauges.
func newAudienceGaugeTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "audience_gauge")

	return func(ctx context.Context) error {
		users, err := deps.Audience.Count(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		admins, err := deps.Gate.List(ctx)
		if err != nil {
			return fmt.Errorf("list admins: %w", err)
		}

		metrics.SetAudience(users, len(admins))
		log.DebugContext(ctx, "Audience gauges updated", "users", users, "admins", len(admins))
		return nil
	}
}
