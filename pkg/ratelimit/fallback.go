package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Fallback is a token bucket per key, used while Redis is unavailable. It
// only limits within one process.
type Fallback struct {
	mu      sync.Mutex
	entries map[string]*fallbackEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type fallbackEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewFallback(rps float64, burst int) *Fallback {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 20
	}
	return &Fallback{
		entries: make(map[string]*fallbackEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
	}
}

// Check spends one token for key at now
func (f *Fallback) Check(key string, now time.Time, window time.Duration) *Result {
	lim := f.limiter(key, now)
	allowed := lim.AllowN(now, 1)
	return &Result{
		Allowed:   allowed,
		Limit:     f.burst,
		Remaining: max(int(lim.TokensAt(now)), 0),
		ResetTime: now.Add(window).Unix(),
	}
}

func (f *Fallback) limiter(key string, now time.Time) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ent, ok := f.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(f.rps, f.burst)
	f.entries[key] = &fallbackEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup drops buckets not used since before now minus the idle TTL
func (f *Fallback) Cleanup(now time.Time) int {
	cutoff := now.Add(-f.idleTTL)

	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for k, ent := range f.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(f.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor runs Cleanup every interval until ctx is cancelled
func (f *Fallback) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				f.Cleanup(now)
			}
		}
	}()
}
