package resources

import (
	"context"
	"sync"
	"testing"
	"time"

	"venuecap/internal/capacity"
	"venuecap/internal/shared/failure"
	"venuecap/pkg/cache/cachetest"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu        sync.Mutex
	resources map[uuid.UUID]*Resource
	lists     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{resources: make(map[uuid.UUID]*Resource)}
}

func (f *fakeRepo) Create(_ context.Context, r *Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = r.BeforeCreate(nil)
	cp := *r
	f.resources[r.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[id]
	if !ok {
		return nil, failure.New(failure.ResourceNotFound, "resource %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) GetAll(_ context.Context, q ResourceListQuery) ([]Resource, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []Resource
	for _, r := range f.resources {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

type fakeCapacity struct {
	stats *capacity.CapacityStats
}

func (f *fakeCapacity) GetCapacityStats(_ context.Context, id uuid.UUID, _ bool) (*capacity.CapacityStats, error) {
	s := *f.stats
	s.ResourceID = id
	return &s, nil
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestResources(capReader CapacityReader) (Service, *fakeRepo, *cachetest.Memory) {
	repo := newFakeRepo()
	mem := cachetest.NewMemory()
	svc := NewService(repo, capReader, clock.NewManual(testNow), logger.Discard())
	svc.SetCacheService(mem)
	return svc, repo, mem
}

func TestCreateResourceInitializesCapacity(t *testing.T) {
	svc, repo, _ := newTestResources(nil)

	resp, err := svc.CreateResource(context.Background(), uuid.New(), CreateResourceRequest{
		Name:           "Final",
		Venue:          "Bar Centrale",
		StartsAt:       testNow.Add(48 * time.Hour),
		TotalCapacity:  80,
		MaxGroupSize:   6,
		InitialBlocked: 5,
	})
	require.NoError(t, err)

	stored := repo.resources[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, 75, stored.Available)
	assert.Equal(t, 5, stored.Blocked)
	assert.Equal(t, 0, stored.Reserved+stored.Held)
	assert.True(t, stored.AllowsReservations)
	assert.Equal(t, ResourceStatusScheduled, stored.Status)
	assert.Equal(t, 75, resp.Capacity.Available)
}

func TestCreateResourceValidation(t *testing.T) {
	svc, _, _ := newTestResources(nil)
	ctx := context.Background()

	_, err := svc.CreateResource(ctx, uuid.New(), CreateResourceRequest{
		Name: "Past", Venue: "Pub", StartsAt: testNow.Add(-time.Hour), TotalCapacity: 10,
	})
	assert.Equal(t, failure.InvalidSchedule, failure.ReasonOf(err))

	_, err = svc.CreateResource(ctx, uuid.New(), CreateResourceRequest{
		Name: "Over", Venue: "Pub", StartsAt: testNow.Add(time.Hour), TotalCapacity: 10, InitialBlocked: 11,
	})
	assert.ErrorIs(t, err, failure.ErrWouldGoNegative)

	closed := false
	resp, err := svc.CreateResource(ctx, uuid.New(), CreateResourceRequest{
		Name: "Closed", Venue: "Pub", StartsAt: testNow.Add(time.Hour), TotalCapacity: 10, AllowsReservations: &closed,
	})
	require.NoError(t, err)
	assert.False(t, resp.Capacity.AllowsReservations)
}

func TestGetResourceOverlaysLiveCapacity(t *testing.T) {
	live := &fakeCapacity{stats: &capacity.CapacityStats{Total: 80, Available: 12, Reserved: 60, Held: 8}}
	svc, _, _ := newTestResources(live)
	ctx := context.Background()

	created, err := svc.CreateResource(ctx, uuid.New(), CreateResourceRequest{
		Name: "Derby", Venue: "Pub", StartsAt: testNow.Add(time.Hour), TotalCapacity: 80,
	})
	require.NoError(t, err)

	got, err := svc.GetResource(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Capacity.Available)

	// Second read comes from the detail cache but still gets live counters
	live.stats.Available = 3
	got, err = svc.GetResource(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Derby", got.Name)
	assert.Equal(t, 3, got.Capacity.Available)
}

func TestGetResourceNotFound(t *testing.T) {
	svc, _, _ := newTestResources(nil)
	_, err := svc.GetResource(context.Background(), uuid.New())
	assert.ErrorIs(t, err, failure.ErrResourceNotFound)
}

func TestListResourcesCachesAndInvalidatesOnCreate(t *testing.T) {
	svc, repo, _ := newTestResources(nil)
	ctx := context.Background()

	page, err := svc.ListResources(ctx, ResourceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Empty(t, page.Resources)

	_, err = svc.ListResources(ctx, ResourceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists)

	_, err = svc.CreateResource(ctx, uuid.New(), CreateResourceRequest{
		Name: "Cup", Venue: "Pub", StartsAt: testNow.Add(time.Hour), TotalCapacity: 10,
	})
	require.NoError(t, err)

	page, err = svc.ListResources(ctx, ResourceListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)
	assert.Len(t, page.Resources, 1)
	assert.Equal(t, 1, page.TotalPages)
}
