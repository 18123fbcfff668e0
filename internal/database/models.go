package database

import (
	"time"

	"github.com/edgard/lingobot/internal/session"
)

// sessionRecord is a row of the user_sessions table.
type sessionRecord struct {
	UserID    int64     `db:"user_id"`
	Language  string    `db:"language"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r sessionRecord) toSession() *session.Session {
	return &session.Session{
		UserID:    r.UserID,
		Language:  r.Language,
		UpdatedAt: r.UpdatedAt,
	}
}

// languageCount is one row of the per-language aggregate.
type languageCount struct {
	Language string `db:"language"`
	Count    int    `db:"count"`
}
