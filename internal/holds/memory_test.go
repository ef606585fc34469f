package holds_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"venuecap/internal/holds"
	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
)

// memoryRepository mirrors the capacity_holds table, unique index included
type memoryRepository struct {
	mu    sync.Mutex
	holds map[uuid.UUID]holds.Hold
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{holds: make(map[uuid.UUID]holds.Hold)}
}

func (r *memoryRepository) Create(_ context.Context, hold *holds.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.holds {
		if h.OwnerID == hold.OwnerID && h.ResourceID == hold.ResourceID {
			return failure.New(failure.DuplicateHold, "an active hold already exists for this resource")
		}
	}
	r.holds[hold.ID] = *hold
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*holds.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *memoryRepository) FindForOwner(_ context.Context, ownerID, resourceID uuid.UUID) (*holds.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.holds {
		if h.OwnerID == ownerID && h.ResourceID == resourceID {
			return &h, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) (*holds.Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[id]
	if !ok {
		return nil, nil
	}
	delete(r.holds, id)
	return &h, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID uuid.UUID, now time.Time) ([]holds.Hold, error) {
	return r.list(func(h holds.Hold) bool { return h.OwnerID == ownerID && h.ExpiresAt.After(now) }, 0, false), nil
}

func (r *memoryRepository) ListExpired(_ context.Context, now time.Time, limit int) ([]holds.Hold, error) {
	return r.list(func(h holds.Hold) bool { return !h.ExpiresAt.After(now) }, limit, true), nil
}

func (r *memoryRepository) list(match func(holds.Hold) bool, limit int, byExpiry bool) []holds.Hold {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []holds.Hold
	for _, h := range r.holds {
		if match(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if byExpiry {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holds)
}
