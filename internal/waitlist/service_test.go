package waitlist_test

import (
	"context"
	"testing"
	"time"

	"venuecap/internal/capacity"
	"venuecap/internal/capacity/capacitytest"
	"venuecap/internal/notifications"
	"venuecap/internal/shared/config"
	"venuecap/internal/shared/failure"
	"venuecap/internal/waitlist"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWindow = 15 * time.Minute

type fixture struct {
	svc    waitlist.Service
	repo   *memoryRepository
	ledger *capacitytest.Repository
	clock  *clock.Manual
	events *notifications.Recorder
}

func newFixture(t *testing.T, mutate ...func(*config.WaitlistConfig)) *fixture {
	t.Helper()
	cfg := &config.Config{
		Capacity: config.CapacityConfig{CacheTTL: 5 * time.Second},
		Waitlist: config.WaitlistConfig{
			NotificationWindow: testWindow,
			CleanupBatchSize:   50,
			RequeuePolicy:      waitlist.RequeuePreserve,
			MaxNotifyAttempts:  3,
		},
	}
	for _, m := range mutate {
		m(&cfg.Waitlist)
	}

	clk := clock.NewManual(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	ledger := capacitytest.NewRepository()
	repo := newMemoryRepository()
	events := &notifications.Recorder{}

	svc := waitlist.NewService(repo, capacity.NewService(ledger, cfg, logger.Discard()), clk, cfg, logger.Discard())
	svc.SetPublisher(events)
	return &fixture{svc: svc, repo: repo, ledger: ledger, clock: clk, events: events}
}

// join enqueues a user and moves the clock so queue order is strict
func (f *fixture) join(t *testing.T, resourceID uuid.UUID, partySize int, accessible bool) *waitlist.WaitlistEntry {
	t.Helper()
	res, err := f.svc.AddToWaitlist(context.Background(), resourceID, uuid.New(), partySize, accessible)
	require.NoError(t, err)
	require.False(t, res.AlreadyInQueue)
	f.clock.Advance(time.Second)
	return res.Entry
}

func TestAddToWaitlistIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)
	user := uuid.New()

	first, err := f.svc.AddToWaitlist(ctx, resourceID, user, 2, false)
	require.NoError(t, err)
	assert.False(t, first.AlreadyInQueue)
	assert.Equal(t, 1, first.Position)

	again, err := f.svc.AddToWaitlist(ctx, resourceID, user, 4, true)
	require.NoError(t, err)
	assert.True(t, again.AlreadyInQueue)
	assert.Equal(t, first.Entry.ID, again.Entry.ID)
	assert.Equal(t, 2, again.Entry.PartySize)

	assert.Equal(t, []notifications.EventType{notifications.EventWaitlistJoined}, f.events.Types())
}

func TestAddToWaitlistValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	limited := f.ledger.Add(10, 4, true)

	tests := []struct {
		name     string
		resource uuid.UUID
		party    int
		want     failure.Reason
	}{
		{"zero party", limited, 0, failure.InvalidPartySize},
		{"above group limit", limited, 5, failure.PartyTooLarge},
		{"unknown resource", uuid.New(), 2, failure.ResourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddToWaitlist(ctx, tt.resource, uuid.New(), tt.party, false)
			assert.Equal(t, tt.want, failure.ReasonOf(err))
		})
	}
}

func TestWaitlistFIFO(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	a := f.join(t, resourceID, 2, false)
	b := f.join(t, resourceID, 2, false)
	f.join(t, resourceID, 2, false)

	next, err := f.svc.GetNextInQueue(ctx, resourceID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, a.ID, next.ID)

	_, err = f.svc.NotifyUser(ctx, a.ID)
	require.NoError(t, err)
	converted, err := f.svc.ConvertToReservation(ctx, a.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusConverted, converted.Status)
	assert.NotNil(t, converted.ReservationID)

	next, err = f.svc.GetNextInQueue(ctx, resourceID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, b.ID, next.ID)
}

func TestGetNextInQueueFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(20, 0, true)

	f.join(t, resourceID, 6, false)
	small := f.join(t, resourceID, 2, false)
	accessible := f.join(t, resourceID, 3, true)

	maxParty := 3
	next, err := f.svc.GetNextInQueue(ctx, resourceID, &maxParty, false)
	require.NoError(t, err)
	assert.Equal(t, small.ID, next.ID)

	next, err = f.svc.GetNextInQueue(ctx, resourceID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, accessible.ID, next.ID)

	tiny := 1
	next, err = f.svc.GetNextInQueue(ctx, resourceID, &tiny, false)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestGetPositionIsInclusive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	a := f.join(t, resourceID, 1, false)
	b := f.join(t, resourceID, 1, false)
	c := f.join(t, resourceID, 1, false)

	pos, err := f.svc.GetPosition(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos.Position)
	assert.Equal(t, 2, pos.PeopleAhead)

	_, err = f.svc.RemoveFromWaitlist(ctx, b.ID)
	require.NoError(t, err)
	pos, err = f.svc.GetPosition(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos.Position)

	_, err = f.svc.NotifyUser(ctx, a.ID)
	require.NoError(t, err)
	pos, err = f.svc.GetPosition(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusNotified, pos.Status)
	assert.Zero(t, pos.Position)
}

func TestNotifyFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	notified := f.join(t, resourceID, 1, false)
	_, err := f.svc.NotifyUser(ctx, notified.ID)
	require.NoError(t, err)

	removed := f.join(t, resourceID, 1, false)
	_, err = f.svc.RemoveFromWaitlist(ctx, removed.ID)
	require.NoError(t, err)

	_, err = f.svc.NotifyUser(ctx, notified.ID)
	assert.ErrorIs(t, err, failure.ErrWaitlistAlreadyNotified)

	_, err = f.svc.NotifyUser(ctx, removed.ID)
	assert.ErrorIs(t, err, failure.ErrCannotNotifyNonWaiting)

	_, err = f.svc.NotifyUser(ctx, uuid.New())
	assert.ErrorIs(t, err, failure.ErrWaitlistEntryNotFound)
}

func TestNotifyUserManuallyUsesWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)
	entry := f.join(t, resourceID, 2, false)

	now := f.clock.Now()
	notified, err := f.svc.NotifyUserManually(ctx, entry.ID, 5*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, notified.NotificationExpiresAt)
	assert.Equal(t, now.Add(5*time.Minute), *notified.NotificationExpiresAt)
	assert.Equal(t, 1, notified.NotifyCount)

	evs := f.events.Events()
	last := evs[len(evs)-1]
	assert.Equal(t, notifications.EventWaitlistSpotAvailable, last.Type)
	require.NotNil(t, last.ExpiresAt)
	assert.Equal(t, now.Add(5*time.Minute), *last.ExpiresAt)
}

func TestConvertRequiresLiveNotification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	waiting := f.join(t, resourceID, 1, false)
	_, err := f.svc.ConvertToReservation(ctx, waiting.ID, uuid.New())
	assert.Equal(t, failure.InvalidTransition, failure.ReasonOf(err))

	_, err = f.svc.NotifyUser(ctx, waiting.ID)
	require.NoError(t, err)
	f.clock.Advance(testWindow)
	_, err = f.svc.ConvertToReservation(ctx, waiting.ID, uuid.New())
	assert.Equal(t, failure.InvalidTransition, failure.ReasonOf(err))
}

func TestExpireNotification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)
	entry := f.join(t, resourceID, 1, false)

	_, err := f.svc.ExpireNotification(ctx, entry.ID)
	assert.Equal(t, failure.InvalidTransition, failure.ReasonOf(err))

	_, err = f.svc.NotifyUser(ctx, entry.ID)
	require.NoError(t, err)
	expired, err := f.svc.ExpireNotification(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusExpired, expired.Status)

	_, err = f.svc.RemoveFromWaitlist(ctx, entry.ID)
	assert.Equal(t, failure.InvalidTransition, failure.ReasonOf(err))
}

func TestCleanupPreservesPriority(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	a := f.join(t, resourceID, 1, false)
	f.join(t, resourceID, 1, false)

	_, err := f.svc.NotifyUser(ctx, a.ID)
	require.NoError(t, err)
	f.clock.Advance(testWindow + time.Second)

	result, err := f.svc.CleanupExpiredNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, &waitlist.CleanupResult{Scanned: 1, Requeued: 1}, result)

	next, err := f.svc.GetNextInQueue(ctx, resourceID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, a.ID, next.ID)
	assert.Nil(t, next.NotificationExpiresAt)
}

func TestCleanupSendsToBackWhenConfigured(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(c *config.WaitlistConfig) { c.RequeuePolicy = waitlist.RequeueBack })
	resourceID := f.ledger.Add(10, 0, true)

	a := f.join(t, resourceID, 1, false)
	b := f.join(t, resourceID, 1, false)

	_, err := f.svc.NotifyUser(ctx, a.ID)
	require.NoError(t, err)
	f.clock.Advance(testWindow)

	_, err = f.svc.CleanupExpiredNotifications(ctx)
	require.NoError(t, err)

	queue, err := f.svc.GetWaitlistForVenueMatch(ctx, resourceID)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, b.ID, queue[0].ID)
	assert.Equal(t, 1, queue[0].Position)
	assert.Equal(t, a.ID, queue[1].ID)
	assert.Equal(t, 2, queue[1].Position)
}

func TestPositionMatchesQueueWhenRequeuedTogether(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(c *config.WaitlistConfig) { c.RequeuePolicy = waitlist.RequeueBack })
	resourceID := f.ledger.Add(10, 0, true)

	a := f.join(t, resourceID, 1, false)
	b := f.join(t, resourceID, 1, false)
	c := f.join(t, resourceID, 1, false)

	for _, e := range []*waitlist.WaitlistEntry{a, b} {
		_, err := f.svc.NotifyUser(ctx, e.ID)
		require.NoError(t, err)
	}
	f.clock.Advance(testWindow)

	// Both lapse in one pass and share the same queued_at
	result, err := f.svc.CleanupExpiredNotifications(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, result.Requeued)

	queue, err := f.svc.GetWaitlistForVenueMatch(ctx, resourceID)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, []uuid.UUID{queue[0].ID, queue[1].ID, queue[2].ID})
	require.True(t, queue[1].QueuedAt.Equal(queue[2].QueuedAt))

	for _, e := range queue {
		pos, err := f.svc.GetPosition(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.Position, pos.Position, "entry %s", e.ID)
		assert.Equal(t, e.Position-1, pos.PeopleAhead)
	}
}

func TestCleanupExpiresAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(c *config.WaitlistConfig) { c.MaxNotifyAttempts = 2 })
	resourceID := f.ledger.Add(10, 0, true)
	entry := f.join(t, resourceID, 1, false)

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := f.svc.NotifyUser(ctx, entry.ID)
		require.NoError(t, err)
		f.clock.Advance(testWindow)
		_, err = f.svc.CleanupExpiredNotifications(ctx)
		require.NoError(t, err)
	}

	got, err := f.svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusExpired, got.Status)
	assert.Contains(t, f.events.Types(), notifications.EventWaitlistNotificationExpired)
}

func TestWaitlistStatsAndPartySize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)

	a := f.join(t, resourceID, 2, false)
	b := f.join(t, resourceID, 3, false)
	f.join(t, resourceID, 4, false)

	_, err := f.svc.NotifyUser(ctx, a.ID)
	require.NoError(t, err)
	_, err = f.svc.ConvertToReservation(ctx, a.ID, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.NotifyUser(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.svc.ExpireNotification(ctx, b.ID)
	require.NoError(t, err)

	total, err := f.svc.GetTotalWaitingPartySize(ctx, resourceID)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	stats, err := f.svc.GetWaitlistStats(ctx, resourceID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Waiting)
	assert.Equal(t, 1, stats.Converted)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 4, stats.WaitingPartySize)
	assert.InDelta(t, 50.0, stats.ConversionRatePct, 0.001)
}

func TestRejoinAfterRemoval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	resourceID := f.ledger.Add(10, 0, true)
	user := uuid.New()

	first, err := f.svc.AddToWaitlist(ctx, resourceID, user, 1, false)
	require.NoError(t, err)
	_, err = f.svc.RemoveFromWaitlist(ctx, first.Entry.ID)
	require.NoError(t, err)

	second, err := f.svc.AddToWaitlist(ctx, resourceID, user, 1, false)
	require.NoError(t, err)
	assert.False(t, second.AlreadyInQueue)
	assert.NotEqual(t, first.Entry.ID, second.Entry.ID)
}
