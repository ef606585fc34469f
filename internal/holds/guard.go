package holds

import (
	"context"
	"fmt"
	"time"

	"venuecap/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// guardTTL bounds how long a crashed request can keep the pair locked
const guardTTL = 10 * time.Second

// Only the request that set the key may delete it
var releaseGuardScript = redis.NewScript(`
-- KEYS[1] = guard key
-- ARGV[1] = token
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard rejects a second in-flight hold request for the same owner and
// resource before it reaches Postgres. The capacity_holds unique index stays
// authoritative; the guard only turns a burst of double-clicks into one
// ledger mutation.
type Guard struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewGuard(client *redis.Client) *Guard {
	return &Guard{redis: client, ttl: guardTTL}
}

// PreloadScripts loads the release script so the first release skips the
// EVAL fallback.
func (g *Guard) PreloadScripts(ctx context.Context) error {
	if g == nil || g.redis == nil {
		return nil
	}
	if err := releaseGuardScript.Load(ctx, g.redis).Err(); err != nil {
		return fmt.Errorf("failed to load hold guard script: %w", err)
	}
	return nil
}

// Acquire takes the guard for (owner, resource). It returns false when
// another request holds it. The returned func releases the guard and is safe
// to call when acquisition failed.
func (g *Guard) Acquire(ctx context.Context, ownerID, resourceID uuid.UUID) (bool, func(), error) {
	noop := func() {}
	if g == nil || g.redis == nil {
		return true, noop, nil
	}

	key := constants.BuildHoldGuardKey(ownerID.String(), resourceID.String())
	token := uuid.NewString()

	ok, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return false, noop, fmt.Errorf("failed to acquire hold guard: %w", err)
	}
	if !ok {
		return false, noop, nil
	}

	release := func() {
		// Detached so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = releaseGuardScript.Run(releaseCtx, g.redis, []string{key}, token).Err()
	}
	return true, release, nil
}
