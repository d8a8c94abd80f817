package auth

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/metrics"
)

// Denylist holds revoked token IDs.
type Denylist interface {
	Add(jti string, expiresAt time.Time)
	Contains(jti string) bool
	Len() int
}

// MemoryDenylist keeps revoked token IDs until the token would have expired
// anyway. Nothing is persisted; a restart forgets every entry.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Add(jti string, expiresAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = expiresAt
}

func (d *MemoryDenylist) Contains(jti string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.entries[jti]
	return ok
}

func (d *MemoryDenylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Sweep drops entries whose token has expired and returns how many were removed.
func (d *MemoryDenylist) Sweep() int {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for jti, exp := range d.entries {
		if !now.Before(exp) {
			delete(d.entries, jti)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (d *MemoryDenylist) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Sweep()
			metrics.RevokedTokens.Set(float64(d.Len()))
		}
	}
}
