package constants

import (
	"fmt"
	"time"
)

// Redis keys and TTLs used across the service.
// Pattern: venuecap:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // single resource detail
	TTL_REALTIME_SHORT    = 30 * time.Second // resource listings, counters included
	TTL_REALTIME_MICRO    = 5 * time.Second  // capacity stats
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "venuecap"
)

// ================== CAPACITY MODULE ==================

const (
	CACHE_KEY_CAPACITY_STATS = CACHE_PREFIX + ":capacity:stats:uuid:" // + resource-id
)

// Default only; the live value comes from CAPACITY_CACHE_TTL
const (
	TTL_CAPACITY_STATS = TTL_REALTIME_MICRO
)

// ================== RESOURCES MODULE ==================

const (
	CACHE_KEY_RESOURCE_DETAIL = CACHE_PREFIX + ":resources:detail:uuid:" // + resource-id
	CACHE_KEY_RESOURCES_LIST  = CACHE_PREFIX + ":resources:list"         // + :page:X:limit:Y
)

const (
	TTL_RESOURCE_DETAIL = TTL_SEMI_STATIC_QUICK
	TTL_RESOURCES_LIST  = TTL_REALTIME_SHORT
)

// ================== HOLDS MODULE ==================

// Guard keys only short-circuit duplicate requests; Postgres stays authoritative
const (
	REDIS_KEY_HOLD_GUARD = CACHE_PREFIX + ":holds:guard:" // + owner-id:resource-id
)

// ================== RATE LIMIT ==================

const (
	REDIS_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_RESOURCES_LIST = CACHE_PREFIX + ":resources:list*"
)

// ================== KEY BUILDERS ==================

func BuildCapacityStatsKey(resourceID string) string {
	return CACHE_KEY_CAPACITY_STATS + resourceID
}

func BuildResourceDetailKey(resourceID string) string {
	return CACHE_KEY_RESOURCE_DETAIL + resourceID
}

func BuildResourceListKey(page, limit int, filters string) string {
	key := CACHE_KEY_RESOURCES_LIST + ":page:" + fmt.Sprintf("%d", page) + ":limit:" + fmt.Sprintf("%d", limit)
	if filters != "" {
		key += ":" + filters
	}
	return key
}

func BuildHoldGuardKey(ownerID, resourceID string) string {
	return REDIS_KEY_HOLD_GUARD + ownerID + ":" + resourceID
}

func BuildRateLimitKey(ip, limitType string) string {
	return REDIS_KEY_RATE_LIMIT + ip + ":" + limitType
}
