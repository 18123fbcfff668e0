// Package session keeps the per-user language preference.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a user has no stored session.
var ErrNotFound = errors.New("session not found")

// Session is the per-user state: the language replies are written in.
type Session struct {
	UserID    int64
	Language  string
	UpdatedAt time.Time
}

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the session of userID or ErrNotFound.
	Get(ctx context.Context, userID int64) (*Session, error)
	// SetLanguage creates or replaces the language of userID.
	SetLanguage(ctx context.Context, userID int64, language string) error
	// CountByLanguage returns the number of sessions per language code.
	CountByLanguage(ctx context.Context) (map[string]int, error)
}

// MemoryStore is a Store held in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, userID int64) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) SetLanguage(ctx context.Context, userID int64, language string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[userID] = Session{UserID: userID, Language: language, UpdatedAt: m.now()}
	return nil
}

func (m *MemoryStore) CountByLanguage(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, s := range m.sessions {
		counts[s.Language]++
	}
	return counts, nil
}

// LanguageOf returns the stored language of userID, or def when the user has
// no session yet. Other store errors are returned with def.
func LanguageOf(ctx context.Context, store Store, userID int64, def string) (string, error) {
	s, err := store.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		return def, nil
	case err != nil:
		return def, err
	case s.Language == "":
		return def, nil
	default:
		return s.Language, nil
	}
}
