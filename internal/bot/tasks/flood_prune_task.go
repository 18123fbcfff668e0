package tasks

import (
	"context"
	"time"
)

const defaultFloodIdleTTL = 30 * time.Minute

// newFloodPruneTask drops per-user limiters that have been idle for the
// configured TTL.
func newFloodPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "flood_prune")

	idle := deps.Config.Bot.Flood.IdleTTL
	if idle <= 0 {
		idle = defaultFloodIdleTTL
	}

	return func(ctx context.Context) error {
		removed := deps.Flood.Prune(idle)
		log.DebugContext(ctx, "Pruned idle flood limiters", "removed", removed, "remaining", deps.Flood.Len())
		return nil
	}
}
