package data

import (
	"context"
	"os"
	"sync"
	"time"

	"grant-simulation/internal/simulation"
	"grant-simulation/internal/valuation"

	"github.com/google/uuid"
)

// DefaultRunTTL is how long a finished run stays retrievable.
const DefaultRunTTL = 1 * time.Hour

// Run is a finished simulation kept for later download.
type Run struct {
	ID        string
	CreatedAt time.Time
	Table     *simulation.Table
	// Report is nil when grants were not inferred.
	Report *valuation.Report
}

type cacheEntry struct {
	run       *Run
	expiresAt time.Time
}

// RunCache keeps finished runs in memory for a fixed TTL.
type RunCache struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewRunCache(ttl time.Duration) *RunCache {
	if ttl <= 0 {
		ttl = DefaultRunTTL
	}
	return &RunCache{
		store: make(map[string]*cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// NewRunCacheFromEnv reads the TTL from RUN_CACHE_TTL (a time.Duration
// string), falling back to DefaultRunTTL.
func NewRunCacheFromEnv() *RunCache {
	ttl := DefaultRunTTL
	if s := os.Getenv("RUN_CACHE_TTL"); s != "" {
		if parsed, err := time.ParseDuration(s); err == nil {
			ttl = parsed
		}
	}
	return NewRunCache(ttl)
}

// Put stores a table under a fresh id and returns the run.
func (c *RunCache) Put(tbl *simulation.Table, rep *valuation.Report) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: c.now(),
		Table:     tbl,
		Report:    rep,
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[run.ID] = &cacheEntry{run: run, expiresAt: run.CreatedAt.Add(c.ttl)}
	return run
}

// Get returns a run if present and not expired.
func (c *RunCache) Get(id string) (*Run, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[id]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.run, true
}

func (c *RunCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Evict removes expired entries and returns how many were removed.
func (c *RunCache) Evict() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for id, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, id)
			n++
		}
	}
	return n
}

// Cleanup evicts expired entries every interval until ctx is done.
func (c *RunCache) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Evict()
		}
	}
}
