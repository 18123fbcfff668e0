package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/lingobot/internal/session"
)

// Store is the persistent session store plus database housekeeping.
type Store interface {
	session.Store

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*sqlxStore)(nil)

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get returns the stored session of userID or session.ErrNotFound.
func (s *sqlxStore) Get(ctx context.Context, userID int64) (*session.Session, error) {
	var rec sessionRecord
	err := s.db.GetContext(ctx, &rec,
		`SELECT user_id, language, created_at, updated_at FROM user_sessions WHERE user_id = ?`, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, session.ErrNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to get session", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get session for user %d: %w", userID, err)
	default:
		return rec.toSession(), nil
	}
}

// SetLanguage upserts the language of userID.
func (s *sqlxStore) SetLanguage(ctx context.Context, userID int64, language string) error {
	if userID == 0 {
		return fmt.Errorf("user_id cannot be zero")
	}
	if language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	now := s.now()
	rec := sessionRecord{UserID: userID, Language: language, CreatedAt: now, UpdatedAt: now}

	query := `
        INSERT INTO user_sessions (user_id, language, created_at, updated_at)
        VALUES (:user_id, :language, :created_at, :updated_at)
        ON CONFLICT (user_id) DO UPDATE SET
            language = excluded.language,
            updated_at = excluded.updated_at;`

	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save session", "user_id", userID, "language", language, "error", err)
		return fmt.Errorf("failed to save session for user %d: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Saved session", "user_id", userID, "language", language)
	return nil
}

// CountByLanguage aggregates stored sessions per language.
func (s *sqlxStore) CountByLanguage(ctx context.Context) (map[string]int, error) {
	var rows []languageCount
	err := s.db.SelectContext(ctx, &rows,
		`SELECT language, COUNT(*) AS count FROM user_sessions GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Language] = r.Count
	}
	return counts, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		s.logger.WarnContext(ctx, "Failed to set busy timeout", "error", err)
	}

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
