package holds

import (
	"context"
	"testing"

	"venuecap/internal/shared/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardAcquireIsExclusive(t *testing.T) {
	ctx := context.Background()
	guard := NewGuard(testutil.NewTestRedis(t))
	require.NoError(t, guard.PreloadScripts(ctx))

	owner, resource := uuid.New(), uuid.New()

	ok, release, err := guard.Acquire(ctx, owner, resource)
	require.NoError(t, err)
	require.True(t, ok)

	ok, releaseSecond, err := guard.Acquire(ctx, owner, resource)
	require.NoError(t, err)
	assert.False(t, ok)
	releaseSecond()

	// A different resource is independent
	ok, releaseOther, err := guard.Acquire(ctx, owner, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
	releaseOther()

	release()
	ok, release, err = guard.Acquire(ctx, owner, resource)
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}

func TestNilGuardAlwaysAcquires(t *testing.T) {
	var guard *Guard
	ok, release, err := guard.Acquire(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
	release()
	assert.NoError(t, guard.PreloadScripts(context.Background()))
}
