package holds_test

import (
	"context"
	"testing"
	"time"

	"venuecap/internal/holds"
	"venuecap/internal/shared/config"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperReleasesExpiredHolds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	_, err := f.svc.CreateHold(ctx, resourceID, uuid.New(), 4)
	require.NoError(t, err)
	f.clock.Advance(testHoldTTL)

	sweeper := holds.NewSweeper(f.svc, config.CapacityConfig{SweepInterval: 10 * time.Millisecond, SweepBatchSize: 10}, logger.Discard())
	sweeper.Start(ctx)
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.Stats().Released == 1
	}, 2*time.Second, 10*time.Millisecond)

	rec := f.ledger.Snapshot(resourceID)
	assert.Equal(t, 10, rec.Available)
	assert.Zero(t, rec.Held)
	assert.Equal(t, 4, sweeper.Stats().Units)
}

func TestSweeperRunOnceWithNothingDue(t *testing.T) {
	f := newFixture(t)
	sweeper := holds.NewSweeper(f.svc, config.CapacityConfig{}, logger.Discard())

	result := sweeper.RunOnce(context.Background())
	assert.Zero(t, result.Scanned)
	assert.Equal(t, 1, sweeper.Stats().Runs)
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	f := newFixture(t)
	sweeper := holds.NewSweeper(f.svc, config.CapacityConfig{SweepInterval: time.Hour}, logger.Discard())
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop()
}
