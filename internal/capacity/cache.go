package capacity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"venuecap/internal/shared/constants"
	"venuecap/pkg/cache"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
)

// StatsCache is the read-through cache in front of the ledger read path.
// It never fails a caller: errors are logged and treated as misses.
type StatsCache struct {
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

func NewStatsCache(c cache.Service, ttl time.Duration, log *logger.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = constants.TTL_CAPACITY_STATS
	}
	return &StatsCache{cache: c, ttl: ttl, log: log}
}

func (c *StatsCache) enabled() bool {
	return c != nil && c.cache != nil
}

func (c *StatsCache) Get(ctx context.Context, resourceID uuid.UUID) (*CapacityStats, bool) {
	if !c.enabled() {
		return nil, false
	}
	var stats CapacityStats
	err := c.cache.Get(ctx, constants.BuildCapacityStatsKey(resourceID.String()), &stats)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.WarnContext(ctx, "capacity cache read failed", slog.String("resource_id", resourceID.String()), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, stats *CapacityStats) {
	if !c.enabled() {
		return
	}
	if err := c.cache.Set(ctx, constants.BuildCapacityStatsKey(stats.ResourceID.String()), stats, c.ttl); err != nil {
		c.log.WarnContext(ctx, "capacity cache write failed", slog.String("resource_id", stats.ResourceID.String()), slog.String("error", err.Error()))
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, resourceID uuid.UUID) {
	if !c.enabled() {
		return
	}
	if err := c.cache.Delete(ctx, constants.BuildCapacityStatsKey(resourceID.String())); err != nil {
		c.log.WarnContext(ctx, "capacity cache invalidation failed", slog.String("resource_id", resourceID.String()), slog.String("error", err.Error()))
	}
}
