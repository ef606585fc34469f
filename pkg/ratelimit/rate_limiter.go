package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"venuecap/internal/shared/config"
	"venuecap/internal/shared/constants"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault  RateLimitType = "default"
	RateLimitTypePublic   RateLimitType = "public"
	RateLimitTypeAuth     RateLimitType = "auth"
	RateLimitTypeHold     RateLimitType = "hold"
	RateLimitTypeWaitlist RateLimitType = "waitlist"
	RateLimitTypeAdmin    RateLimitType = "admin"
	RateLimitTypeHealth   RateLimitType = "health"
)

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// slidingWindowScript trims the window, then admits the request only while
// the count is under the limit. Returns {allowed, count}.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)
	if count >= limit then
		redis.call('PEXPIRE', key, window_ms)
		return {0, count}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)
	return {1, count + 1}
`)

// RateLimiter handles rate limiting using Redis. When Redis is absent or
// failing it degrades to a per-process token bucket.
type RateLimiter struct {
	client   *redis.Client
	config   config.RateLimitConfig
	fallback *Fallback
	now      func() time.Time
	log      *logger.Logger
}

func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig, log *logger.Logger) *RateLimiter {
	if log == nil {
		log = logger.GetDefault()
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = time.Minute
	}
	return &RateLimiter{
		client:   client,
		config:   cfg,
		fallback: NewFallback(cfg.FallbackRPS, cfg.FallbackBurst),
		now:      time.Now,
		log:      log.WithComponent("ratelimit"),
	}
}

// Fallback exposes the in-process limiter, e.g. to start its janitor
func (r *RateLimiter) Fallback() *Fallback {
	return r.fallback
}

// IsAllowed checks if request is allowed
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	now := r.now()

	if !r.config.Enabled || r.isWhitelisted(clientIP) {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: now.Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := constants.BuildRateLimitKey(clientIP, string(limitType))
	if r.client == nil {
		return r.fallback.Check(key, now, r.config.WindowDuration), nil
	}

	result, err := r.checkLimit(ctx, key, limit, now)
	if err != nil {
		r.log.WarnContext(ctx, "redis rate limit check failed, using in-process limiter",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return r.fallback.Check(key, now, r.config.WindowDuration), nil
	}
	return result, nil
}

// checkLimit performs the sliding window check in Redis
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, now time.Time) (*Result, error) {
	windowStart := now.Add(-r.config.WindowDuration)

	values, err := slidingWindowScript.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response: %v", values)
	}

	return &Result{
		Allowed:   values[0] == 1,
		Limit:     limit,
		Remaining: max(limit-int(values[1]), 0),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeAuth:
		return r.config.AuthRequests
	case RateLimitTypeHold:
		return r.config.HoldRequests
	case RateLimitTypeWaitlist:
		return r.config.WaitlistRequest
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	return slices.Contains(r.config.WhitelistedIPs, ip)
}
