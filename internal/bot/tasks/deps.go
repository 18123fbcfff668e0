// Package tasks implements scheduled tasks for lingobot.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/edgard/lingobot/internal/config"
	"github.com/edgard/lingobot/internal/database"
	"github.com/edgard/lingobot/internal/flood"
	"github.com/edgard/lingobot/internal/session"
)

// TaskDeps contains all dependencies required by scheduled tasks.
// DB is nil when sessions are kept in memory.
type TaskDeps struct {
	Logger   *slog.Logger
	Sessions session.Store
	DB       database.Store
	Flood    *flood.Guard
	Config   *config.Config
}
