// Package flood keeps one token bucket per user so a single chat cannot
// monopolise the completion provider.
package flood

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/edgard/lingobot/internal/config"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Guard is a per-user rate limiter. The zero rate disables it.
type Guard struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[int64]*entry
	now     func() time.Time
}

// NewGuard creates a guard allowing cfg.Rate events per second per user with
// bursts of cfg.Burst.
func NewGuard(cfg config.FloodConfig) *Guard {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Guard{
		limit:   rate.Limit(cfg.Rate),
		burst:   burst,
		entries: make(map[int64]*entry),
		now:     time.Now,
	}
}

// Enabled reports whether the guard limits anything.
func (g *Guard) Enabled() bool {
	return g != nil && g.limit > 0
}

// Allow reports whether userID may trigger another completion now.
func (g *Guard) Allow(userID int64) bool {
	if !g.Enabled() {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	e, ok := g.entries[userID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(g.limit, g.burst)}
		g.entries[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Prune drops limiters not used for idle and returns how many were removed.
func (g *Guard) Prune(idle time.Duration) int {
	if !g.Enabled() {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-idle)
	removed := 0
	for id, e := range g.entries {
		if e.lastSeen.Before(cutoff) {
			delete(g.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked users.
func (g *Guard) Len() int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
