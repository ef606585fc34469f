package waitlist

import (
	"context"
	"testing"
	"time"

	"venuecap/internal/shared/failure"
	"venuecap/internal/shared/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWaitlistDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Exec("DROP TABLE IF EXISTS waitlist_entries CASCADE").Error)
	require.NoError(t, db.AutoMigrate(&WaitlistEntry{}))
	require.NoError(t, db.Exec(ActivePairIndexSQL).Error)
	return db
}

func newEntry(resourceID uuid.UUID, partySize int, queuedAt time.Time) *WaitlistEntry {
	return &WaitlistEntry{
		ID:         uuid.New(),
		ResourceID: resourceID,
		UserID:     uuid.New(),
		PartySize:  partySize,
		Status:     StatusWaiting,
		QueuedAt:   queuedAt,
		CreatedAt:  queuedAt,
		UpdatedAt:  queuedAt,
	}
}

func TestRepositoryOneActiveEntryPerPair(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newWaitlistDB(t))
	now := time.Now().UTC()

	first := newEntry(uuid.New(), 2, now)
	require.NoError(t, repo.Create(ctx, first))

	dup := newEntry(first.ResourceID, 3, now)
	dup.UserID = first.UserID
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrAlreadyQueued)

	ok, err := repo.Apply(ctx, first.ID, Transition{From: []Status{StatusWaiting}, To: StatusRemoved, At: now})
	require.NoError(t, err)
	require.True(t, ok)

	// A removed entry no longer blocks a new one
	require.NoError(t, repo.Create(ctx, dup))
}

func TestRepositoryApplyIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newWaitlistDB(t))
	now := time.Now().UTC().Truncate(time.Microsecond)

	e := newEntry(uuid.New(), 2, now)
	require.NoError(t, repo.Create(ctx, e))

	deadline := now.Add(15 * time.Minute)
	notify := Transition{From: []Status{StatusWaiting}, To: StatusNotified, At: now, NotificationExpiresAt: &deadline}

	ok, err := repo.Apply(ctx, e.ID, notify)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Apply(ctx, e.ID, notify)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotified, got.Status)
	assert.Equal(t, 1, got.NotifyCount)
	require.NotNil(t, got.NotificationExpiresAt)
	assert.True(t, deadline.Equal(*got.NotificationExpiresAt))

	later := now.Add(time.Hour)
	ok, err = repo.Apply(ctx, e.ID, Transition{From: []Status{StatusNotified}, To: StatusWaiting, At: later, ClearNotification: true, Requeue: true})
	require.NoError(t, err)
	require.True(t, ok)

	got, err = repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NotificationExpiresAt)
	assert.True(t, later.Equal(got.QueuedAt))
}

func TestRepositoryQueueOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newWaitlistDB(t))
	now := time.Now().UTC().Truncate(time.Microsecond)
	resourceID := uuid.New()

	big := newEntry(resourceID, 6, now)
	small := newEntry(resourceID, 2, now.Add(time.Second))
	accessible := newEntry(resourceID, 3, now.Add(2*time.Second))
	accessible.RequiresAccessibility = true
	for _, e := range []*WaitlistEntry{accessible, small, big} {
		require.NoError(t, repo.Create(ctx, e))
	}

	next, err := repo.NextWaiting(ctx, resourceID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, big.ID, next.ID)

	maxParty := 3
	next, err = repo.NextWaiting(ctx, resourceID, &maxParty, false)
	require.NoError(t, err)
	assert.Equal(t, small.ID, next.ID)

	next, err = repo.NextWaiting(ctx, resourceID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, accessible.ID, next.ID)

	pos, err := repo.CountWaitingUpTo(ctx, small)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	total, err := repo.SumWaitingPartySize(ctx, resourceID)
	require.NoError(t, err)
	assert.Equal(t, 11, total)

	counts, err := repo.CountByStatus(ctx, resourceID)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[StatusWaiting])
}

func TestRepositoryLapsedNotifications(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newWaitlistDB(t))
	now := time.Now().UTC()

	e := newEntry(uuid.New(), 1, now)
	require.NoError(t, repo.Create(ctx, e))
	deadline := now.Add(time.Minute)
	_, err := repo.Apply(ctx, e.ID, Transition{From: []Status{StatusWaiting}, To: StatusNotified, At: now, NotificationExpiresAt: &deadline})
	require.NoError(t, err)

	lapsed, err := repo.ListLapsedNotifications(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, lapsed)

	lapsed, err = repo.ListLapsedNotifications(ctx, deadline, 10)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, e.ID, lapsed[0].ID)
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo := NewRepository(newWaitlistDB(t))
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, failure.ErrWaitlistEntryNotFound)
}

func TestRepositoryCountWaitingBreaksTiesLikeQueue(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newWaitlistDB(t))
	now := time.Now().UTC().Truncate(time.Microsecond)
	resourceID := uuid.New()

	first := newEntry(resourceID, 1, now)
	second := newEntry(resourceID, 1, now)
	second.CreatedAt = now.Add(time.Second)
	for _, e := range []*WaitlistEntry{second, first} {
		require.NoError(t, repo.Create(ctx, e))
	}

	listed, err := repo.ListWaiting(ctx, resourceID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)

	for i := range listed {
		pos, err := repo.CountWaitingUpTo(ctx, &listed[i])
		require.NoError(t, err)
		assert.Equal(t, i+1, pos)
	}
}
