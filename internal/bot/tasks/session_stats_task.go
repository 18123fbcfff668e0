package tasks

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// newSessionStatsTask logs how many users chose each language.
func newSessionStatsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_stats")

	return func(ctx context.Context) error {
		counts, err := deps.Sessions.CountByLanguage(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to count sessions", "error", err)
			return fmt.Errorf("failed to count sessions: %w", err)
		}

		total := 0
		attrs := make([]any, 0, 2*len(counts)+2)
		for _, code := range slices.Sorted(maps.Keys(counts)) {
			attrs = append(attrs, "lang_"+code, counts[code])
			total += counts[code]
		}
		attrs = append(attrs, "total", total)

		log.InfoContext(ctx, "Session statistics", attrs...)
		return nil
	}
}
