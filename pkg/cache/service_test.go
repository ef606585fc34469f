package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"venuecap/internal/shared/testutil"
	"venuecap/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestServiceRoundTripAndMiss(t *testing.T) {
	svc := NewService(testutil.NewTestRedis(t), logger.Discard())
	ctx := context.Background()

	var got entry
	err := svc.Get(ctx, "missing", &got)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	require.NoError(t, svc.Set(ctx, "k", entry{Name: "a", Count: 3}, time.Minute))
	require.NoError(t, svc.Get(ctx, "k", &got))
	assert.Equal(t, entry{Name: "a", Count: 3}, got)
	assert.True(t, svc.Exists(ctx, "k"))

	require.NoError(t, svc.Delete(ctx, "k"))
	assert.False(t, svc.Exists(ctx, "k"))
}

func TestGetOrSetCallsFetcherOnce(t *testing.T) {
	svc := NewService(testutil.NewTestRedis(t), logger.Discard())
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return entry{Name: "fresh", Count: calls}, nil
	}

	var first, second entry
	require.NoError(t, svc.GetOrSet(ctx, "gos", time.Minute, fetch, &first))
	require.NoError(t, svc.GetOrSet(ctx, "gos", time.Minute, fetch, &second))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestDeletePattern(t *testing.T) {
	svc := NewService(testutil.NewTestRedis(t), logger.Discard())
	ctx := context.Background()

	for _, k := range []string{"p:1", "p:2", "q:1"} {
		require.NoError(t, svc.Set(ctx, k, entry{Name: k}, time.Minute))
	}

	require.NoError(t, svc.DeletePattern(ctx, "p:*"))

	assert.False(t, svc.Exists(ctx, "p:1"))
	assert.False(t, svc.Exists(ctx, "p:2"))
	assert.True(t, svc.Exists(ctx, "q:1"))
}
